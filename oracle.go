package reagent

import "context"

// Oracle is the external text-generation service: prompt in, text out.
// Implementations live outside the core loop; see the models package for a
// LangChainGo-backed adapter.
//
// No retry policy is applied in-core. A transient failure surfaces as a
// run-level error.
type Oracle interface {
	// Generate produces text for the given system prompt and prompt.
	Generate(ctx context.Context, systemPrompt, prompt string, opts ...GenerateOption) (string, error)
}

// GenerateOptions holds per-call generation settings.
type GenerateOptions struct {
	// Temperature overrides sampling temperature when non-nil.
	Temperature *float64
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the sampling temperature for this call.
// The fallback synthesizer uses a reduced temperature.
func WithTemperature(t float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &t
	}
}

// ApplyGenerateOptions folds opts into a GenerateOptions struct.
// Oracle implementations call this to read the settings.
func ApplyGenerateOptions(opts ...GenerateOption) GenerateOptions {
	var options GenerateOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// OracleFunc adapts a function to the Oracle interface. Tests use it to
// script responses without a live model.
type OracleFunc func(ctx context.Context, systemPrompt, prompt string, opts ...GenerateOption) (string, error)

// Generate calls the function.
func (f OracleFunc) Generate(
	ctx context.Context,
	systemPrompt, prompt string,
	opts ...GenerateOption,
) (string, error) {
	return f(ctx, systemPrompt, prompt, opts...)
}

// Compile-time check that OracleFunc implements Oracle.
var _ Oracle = (OracleFunc)(nil)
