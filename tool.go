package reagent

import (
	"context"
)

// Tool is a single named capability the oracle can invoke via an action.
//
// Responsibility design:
//   - Tool: accept free-text input, execute logic, return free-text output
//   - Registry: catalog tools and answer lookups by action name
//   - Dispatcher: route actions to tools, measure duration, isolate failures
//
// Tools should focus on business logic only. Failure handling (converting an
// error into a failed observation) is the Dispatcher's job, so a tool is free
// to return errors for anything it cannot handle.
type Tool interface {
	// Name returns the tool's identifier used in action names.
	Name() string

	// Description returns a human-readable description for the oracle.
	Description() string

	// UsageSyntax returns the invocation syntax shown in the prompt,
	// e.g. "search[query]".
	UsageSyntax() string

	// Examples returns example invocations shown in the prompt.
	Examples() []string

	// Invoke executes the tool with the given free-text input.
	// A bounded execution time is the tool's own responsibility.
	Invoke(ctx context.Context, input string) (string, error)
}

// ToolFunc is a convenience type for creating tools from functions.
type ToolFunc struct {
	name        string
	description string
	usageSyntax string
	examples    []string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewToolFunc creates a new ToolFunc.
func NewToolFunc(
	name, description, usageSyntax string,
	examples []string,
	fn func(ctx context.Context, input string) (string, error),
) *ToolFunc {
	return &ToolFunc{
		name:        name,
		description: description,
		usageSyntax: usageSyntax,
		examples:    examples,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc) Name() string {
	return t.name
}

// Description returns a human-readable description for the oracle.
func (t *ToolFunc) Description() string {
	return t.description
}

// UsageSyntax returns the invocation syntax shown in the prompt.
func (t *ToolFunc) UsageSyntax() string {
	return t.usageSyntax
}

// Examples returns example invocations shown in the prompt.
func (t *ToolFunc) Examples() []string {
	return t.examples
}

// Invoke executes the tool function with the given input.
func (t *ToolFunc) Invoke(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

// Compile-time check that ToolFunc implements Tool.
var _ Tool = (*ToolFunc)(nil)
