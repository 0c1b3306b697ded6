package reagent

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
)

// DefaultSynthesisTemperature is the reduced sampling temperature used for
// fallback synthesis. A colder call keeps the best-effort answer close to
// the transcript.
const DefaultSynthesisTemperature = 0.2

// Synthesizer produces a best-effort final answer when the step budget is
// exhausted without an explicit termination action. It formats the full
// transcript into a single prompt and asks the oracle once.
//
// A failed synthesis is not recovered here: there is no further fallback, so
// the error propagates as a run-level failure.
type Synthesizer struct {
	oracle      Oracle
	template    *template.Template
	temperature float64
}

// NewSynthesizer creates a Synthesizer over the given oracle with the default
// synthesis template and temperature.
func NewSynthesizer(oracle Oracle) *Synthesizer {
	return &Synthesizer{
		oracle:      oracle,
		template:    DefaultSynthesisTemplate,
		temperature: DefaultSynthesisTemperature,
	}
}

// WithTemperature sets the sampling temperature. Returns the synthesizer for
// chaining.
func (s *Synthesizer) WithTemperature(t float64) *Synthesizer {
	s.temperature = t
	return s
}

// WithTemplate sets a custom synthesis prompt template. The template receives
// the question and the full list of steps.
func (s *Synthesizer) WithTemplate(tmpl *template.Template) *Synthesizer {
	s.template = tmpl
	return s
}

// Synthesize builds the synthesis prompt from the transcript and asks the
// oracle for a final answer.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	question string,
	steps []*Step,
) (string, error) {
	var buf bytes.Buffer
	err := s.template.Execute(&buf, transcriptPromptData{Question: question, Steps: steps})
	if err != nil {
		return "", fmt.Errorf("synthesis template: %w", err)
	}

	answer, err := s.oracle.Generate(ctx, "", buf.String(), WithTemperature(s.temperature))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
