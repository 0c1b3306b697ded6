// Package testutil provides shared infrastructure for integration scenarios:
// a scripted oracle that exercises the loop without a live model, and helpers
// for building a fully wired loop.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rvalens/reagent"
	"github.com/rvalens/reagent/models"
	"github.com/rvalens/reagent/tools"
)

// NewRegistry builds the demonstration registry with the simulated tools.
func NewRegistry() *reagent.Registry {
	return reagent.NewRegistry(
		tools.NewSearch(),
		tools.NewCalculator(),
		tools.NewLookup(),
	)
}

// NewScriptedOracle returns an oracle that runs a plausible two-phase script
// against the simulated tools: first search for the question, then finish
// with an answer derived from the observation embedded in the transcript.
//
// The script keys off the transcript prompt alone, so it is deterministic
// and needs no credentials.
func NewScriptedOracle() reagent.Oracle {
	return reagent.OracleFunc(func(
		_ context.Context,
		_, prompt string,
		_ ...reagent.GenerateOption,
	) (string, error) {
		question := extractQuestion(prompt)

		// Synthesis prompt: answer directly.
		if strings.Contains(prompt, "incomplete reasoning transcript") {
			return fmt.Sprintf("Best-effort answer to %q based on the gathered observations.", question), nil
		}

		// No prior observation yet: search first.
		if !strings.Contains(prompt, "Observation:") {
			return fmt.Sprintf(
				"Thought: I should gather information before answering.\nAction: search\nAction Input: %s",
				question,
			), nil
		}

		// An observation exists: wrap up with it.
		observation := lastObservation(prompt)
		return fmt.Sprintf(
			"Thought: The observation gives me enough to answer.\nAction: finish\nAction Input: %s",
			observation,
		), nil
	})
}

// extractQuestion pulls the question line out of a transcript prompt.
func extractQuestion(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(line, "Question: "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(prompt)
}

// lastObservation pulls the most recent observation line out of a transcript
// prompt.
func lastObservation(prompt string) string {
	observation := ""
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(line, "Observation: "); ok {
			observation = strings.TrimSpace(rest)
		}
	}
	return observation
}

// NewLiveOracle builds a LangChainGo OpenAI-backed oracle from the
// OPENAI_API_KEY environment variable, loading .env first if present.
func NewLiveOracle() (reagent.Oracle, error) {
	_ = godotenv.Load()

	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("testutil: OPENAI_API_KEY is not set")
	}

	llm, err := openai.New()
	if err != nil {
		return nil, fmt.Errorf("testutil: create openai client: %w", err)
	}
	return models.NewLangChainOracle(llm), nil
}
