// Package models provides oracle adapters backed by LangChainGo.
package models

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/rvalens/reagent"
)

// LangChainOracle wraps an llms.Model and implements reagent's Oracle
// interface. Any provider LangChainGo supports (OpenAI, Anthropic, Ollama,
// etc.) can back the agent loop through it.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	oracle := models.NewLangChainOracle(llm)
//	loop := reagent.NewLoop(oracle, registry)
type LangChainOracle struct {
	model llms.Model
}

// NewLangChainOracle creates a LangChainOracle wrapping the given llms.Model.
func NewLangChainOracle(model llms.Model) *LangChainOracle {
	return &LangChainOracle{model: model}
}

// Generate sends the system prompt and prompt to the model and returns the
// text of the first choice.
func (o *LangChainOracle) Generate(
	ctx context.Context,
	systemPrompt, prompt string,
	opts ...reagent.GenerateOption,
) (string, error) {
	options := reagent.ApplyGenerateOptions(opts...)

	var messages []llms.MessageContent
	if systemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: systemPrompt}},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
	})

	var callOpts []llms.CallOption
	if options.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*options.Temperature))
	}

	response, err := o.model.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("models: model returned no choices")
	}
	return response.Choices[0].Content, nil
}

// Compile-time check that LangChainOracle implements reagent.Oracle.
var _ reagent.Oracle = (*LangChainOracle)(nil)
