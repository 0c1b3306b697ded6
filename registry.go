package reagent

import (
	"context"
	"fmt"
)

// SentinelAction is the reserved action name that terminates the loop.
// Its registry entry exists so the oracle sees it in the tool catalog, but
// its Invoke is never called: the loop controller handles it directly.
const SentinelAction = "finish"

// TaskCompleteMarker is the observation recorded on the terminating step.
const TaskCompleteMarker = "Task complete."

// Registry is a static catalog of named tools. It is populated once at
// process start and never mutated afterwards, so it is safe to share across
// concurrent runs without synchronization.
type Registry struct {
	order  []string
	byName map[string]Tool
}

// NewRegistry creates a Registry holding the given tools plus the sentinel
// "finish" entry.
//
// Panics if:
//   - a tool is nil
//   - two tools share a name
//   - a tool uses the reserved name "finish"
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		order:  make([]string, 0, len(tools)),
		byName: make(map[string]Tool, len(tools)+1),
	}
	for _, tool := range tools {
		if tool == nil {
			panic("reagent: NewRegistry called with nil tool")
		}
		name := tool.Name()
		if name == SentinelAction {
			panic(fmt.Sprintf("reagent: tool name %q is reserved for termination", SentinelAction))
		}
		if _, exists := r.byName[name]; exists {
			panic(fmt.Sprintf("reagent: duplicate tool name %q", name))
		}
		r.order = append(r.order, name)
		r.byName[name] = tool
	}
	r.byName[SentinelAction] = sentinelTool{}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Has reports whether name is a known non-sentinel tool.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok && name != SentinelAction
}

// Names returns the registered tool names in registration order, excluding
// the sentinel entry.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Tools returns the registered tools in registration order, excluding the
// sentinel entry.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.byName[name])
	}
	return tools
}

// Restrict returns a run-scoped view containing only the named tools (plus
// the sentinel entry). An empty names slice keeps every tool. A name absent
// from the registry is an error; the caller validated the request, so this
// only fires on programming mistakes.
func (r *Registry) Restrict(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	view := &Registry{
		order:  make([]string, 0, len(names)),
		byName: make(map[string]Tool, len(names)+1),
	}
	for _, name := range names {
		tool, ok := r.byName[name]
		if !ok || name == SentinelAction {
			return nil, fmt.Errorf("reagent: cannot restrict to unknown tool %q", name)
		}
		if _, exists := view.byName[name]; exists {
			continue
		}
		view.order = append(view.order, name)
		view.byName[name] = tool
	}
	view.byName[SentinelAction] = sentinelTool{}
	return view, nil
}

// sentinelTool is the registry entry for the termination action. The loop
// controller intercepts the sentinel before dispatch, so Invoke is
// unreachable in normal operation.
type sentinelTool struct{}

func (sentinelTool) Name() string        { return SentinelAction }
func (sentinelTool) Description() string { return "End the task and return the final answer." }
func (sentinelTool) UsageSyntax() string { return SentinelAction + "[final answer]" }
func (sentinelTool) Examples() []string {
	return []string{SentinelAction + "[The capital of France is Paris.]"}
}

func (sentinelTool) Invoke(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("reagent: the %s action is handled by the loop controller, not invoked", SentinelAction)
}
