package reagent

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TaskProfile holds the advisory prompting preferences for one task type.
// Profiles only shape the prompt; the loop never enforces them.
type TaskProfile struct {
	// PreferredTools are emphasized in the system prompt, in order.
	PreferredTools []string

	// TypicalThoughts is the number of reasoning steps the oracle is told a
	// task of this type usually needs.
	TypicalThoughts int

	// Guidance is a one-line hint about how to approach this task type.
	Guidance string
}

// DefaultTaskProfiles returns the shipped task-type preferences.
func DefaultTaskProfiles() map[TaskType]TaskProfile {
	return map[TaskType]TaskProfile{
		TaskKnowledge: {
			PreferredTools:  []string{"search", "lookup"},
			TypicalThoughts: 3,
			Guidance:        "Gather facts with the available tools before answering; do not rely on memory alone.",
		},
		TaskDecision: {
			PreferredTools:  []string{"search", "lookup"},
			TypicalThoughts: 4,
			Guidance:        "Compare the options explicitly, weighing trade-offs in your thoughts before deciding.",
		},
		TaskReasoning: {
			PreferredTools:  []string{"calculator"},
			TypicalThoughts: 4,
			Guidance:        "Break the problem into small verifiable steps and use the calculator for arithmetic.",
		},
		TaskGeneral: {
			PreferredTools:  nil,
			TypicalThoughts: 3,
			Guidance:        "Use whichever tools help; finish as soon as you can answer confidently.",
		},
	}
}

// systemTemplateText explains the think→act→observe cycle, the available
// tools, and the exact labeled output format the parser expects.
const systemTemplateText = `You are an AI assistant that solves problems by interleaving reasoning and actions.

You work in a cycle:
1. Think: analyze what you know and decide what to do next.
2. Act: invoke exactly one of the available actions.
3. Observe: the result of your action is returned to you.

Repeat the cycle until you can answer, then use the {{.Sentinel}} action with your
final answer as its input.
{{if .Guidance}}
Task guidance: {{.Guidance}}
Tasks like this one typically need about {{.TypicalThoughts}} thoughts.
{{end}}
Available actions:
{{range .Tools}}
- {{.UsageSyntax}}: {{.Description}}{{range .Examples}}
  Example: {{.}}{{end}}
{{end}}
{{if .PreferredTools}}Prefer these actions for this task: {{.PreferredTools}}.
{{end}}
Respond with exactly three labeled lines, in this order:

Thought: <your reasoning for this step>
Action: <one action name>
Action Input: <the input to pass to the action>

Rules:
- Output exactly one action per response.
- The Action line must contain only the action name.
- If an observation reports an error, adjust your approach in the next thought.
- Today is {{.Time.Today}}.`

// transcriptTemplateText replays the question and every prior step verbatim,
// which is what gives the oracle memory of its own reasoning.
const transcriptTemplateText = `Question: {{.Question}}
{{range .Steps}}
Thought: {{.Thought}}
Action: {{.Action}}
Action Input: {{.ActionInput}}
Observation: {{.Observation}}
{{end}}
Thought:`

// synthesisTemplateText asks for a best-effort answer from an unfinished
// transcript. Used only by the fallback synthesizer.
const synthesisTemplateText = `The following is an incomplete reasoning transcript for a question. The step
budget ran out before a final answer was produced.

Question: {{.Question}}
{{range .Steps}}
Thought: {{.Thought}}
Action: {{.Action}}
Action Input: {{.ActionInput}}
Observation: {{.Observation}}
{{end}}
Based only on the transcript above, give the best possible direct answer to
the question. Answer with the final answer text only.`

var (
	// DefaultSystemTemplate renders the loop's system prompt. Replace via
	// [Loop.WithSystemTemplate] for full control.
	DefaultSystemTemplate = template.Must(
		template.New("system").Parse(systemTemplateText),
	)

	// DefaultTranscriptTemplate renders the per-iteration prompt containing
	// the question and the transcript of prior steps.
	DefaultTranscriptTemplate = template.Must(
		template.New("transcript").Parse(transcriptTemplateText),
	)

	// DefaultSynthesisTemplate renders the fallback synthesizer's prompt.
	DefaultSynthesisTemplate = template.Must(
		template.New("synthesis").Parse(synthesisTemplateText),
	)
)

// systemPromptData is the data passed to the system template.
type systemPromptData struct {
	Sentinel        string
	Guidance        string
	TypicalThoughts int
	Tools           []Tool
	PreferredTools  string
	Time            TimeProvider
}

// transcriptPromptData is the data passed to the transcript and synthesis
// templates.
type transcriptPromptData struct {
	Question string
	Steps    []*Step
}

// buildSystemPrompt renders the system prompt for a run. The tool catalog
// comes from the run-restricted registry view, so the oracle only sees the
// tools this run offers.
func buildSystemPrompt(
	tmpl *template.Template,
	view *Registry,
	profile TaskProfile,
	tp TimeProvider,
) (string, error) {
	// Only advertise preferred tools that this run actually offers.
	preferred := make([]string, 0, len(profile.PreferredTools))
	for _, name := range profile.PreferredTools {
		if view.Has(name) {
			preferred = append(preferred, name)
		}
	}

	data := systemPromptData{
		Sentinel:        SentinelAction,
		Guidance:        profile.Guidance,
		TypicalThoughts: profile.TypicalThoughts,
		Tools:           view.Tools(),
		PreferredTools:  strings.Join(preferred, ", "),
		Time:            tp,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("system template: %w", err)
	}
	return buf.String(), nil
}

// buildTranscriptPrompt renders the per-iteration prompt. On iteration k the
// steps slice contains exactly the first k−1 completed steps, in order.
func buildTranscriptPrompt(
	tmpl *template.Template,
	question string,
	steps []*Step,
) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, transcriptPromptData{Question: question, Steps: steps})
	if err != nil {
		return "", fmt.Errorf("transcript template: %w", err)
	}
	return buf.String(), nil
}
