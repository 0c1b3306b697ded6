package reagent

import (
	"context"
	"fmt"
	"strings"
)

// Dispatcher routes parsed actions to tools, measuring duration and isolating
// failures. This is the central failure-containment layer: no single tool
// failure terminates the run. An unknown action, a tool error, and a tool
// panic all become a ToolCall with Success=false whose Output feeds the next
// iteration as an observation, letting the oracle course-correct.
type Dispatcher struct {
	registry     *Registry
	timeProvider TimeProvider
}

// NewDispatcher creates a Dispatcher over the given registry. Pass a
// run-restricted view (see [Registry.Restrict]) to limit which actions
// resolve for a particular run.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		timeProvider: NewDefaultTimeProvider(),
	}
}

// WithTimeProvider sets the clock used for duration measurement.
// Returns the dispatcher for chaining.
func (d *Dispatcher) WithTimeProvider(tp TimeProvider) *Dispatcher {
	d.timeProvider = tp
	return d
}

// Dispatch looks up action and invokes it with input. It always returns a
// ToolCall; it never returns an error and never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, action, input string) (call *ToolCall) {
	start := d.timeProvider.Now()

	call = &ToolCall{
		ToolName: action,
		Input:    input,
	}

	tool, ok := d.registry.Lookup(action)
	if !ok || action == SentinelAction {
		call.Output = fmt.Sprintf(
			"Unknown action %q. Available actions: %s.",
			action, formatNames(d.registry.Names()),
		)
		call.Duration = d.timeProvider.Now().Sub(start)
		return call
	}

	// A panicking tool must not take the run down with it.
	defer func() {
		if r := recover(); r != nil {
			call.Success = false
			call.Output = fmt.Sprintf("Tool %q panicked: %v", action, r)
			call.Duration = d.timeProvider.Now().Sub(start)
		}
	}()

	output, err := tool.Invoke(ctx, input)
	call.Duration = d.timeProvider.Now().Sub(start)
	if err != nil {
		call.Output = fmt.Sprintf("Tool %q failed: %v", action, err)
		return call
	}

	call.Success = true
	call.Output = output
	return call
}

// formatNames joins tool names for the unknown-action observation.
func formatNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
