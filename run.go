package reagent

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest is returned when a RunRequest fails validation.
var ErrInvalidRequest = errors.New("reagent: invalid run request")

// TaskType is an advisory classification of the question. It selects which
// tools are emphasized in the prompt and how many thoughts the oracle is told
// a task typically needs. It is never enforced.
type TaskType string

const (
	TaskKnowledge TaskType = "knowledge"
	TaskDecision  TaskType = "decision"
	TaskReasoning TaskType = "reasoning"
	TaskGeneral   TaskType = "general"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskKnowledge, TaskDecision, TaskReasoning, TaskGeneral:
		return true
	}
	return false
}

// RunRequest describes one agent invocation.
type RunRequest struct {
	// Question is the immutable input the agent reasons about.
	Question string `json:"question"`

	// TaskType selects advisory prompting preferences. See [TaskType].
	TaskType TaskType `json:"taskType"`

	// MaxSteps bounds loop iterations. Must be positive.
	MaxSteps int `json:"maxSteps"`

	// AvailableTools is the ordered set of tool names offered to the oracle
	// this run. Must be a subset of the registry's known names.
	AvailableTools []string `json:"availableTools"`
}

// Validate checks the request against the registry. It does not mutate the
// request; callers that want defaults should set them before validating.
func (req *RunRequest) Validate(registry *Registry) error {
	if req.Question == "" {
		return fmt.Errorf("%w: question is empty", ErrInvalidRequest)
	}
	if !req.TaskType.Valid() {
		return fmt.Errorf("%w: unknown task type %q", ErrInvalidRequest, req.TaskType)
	}
	if req.MaxSteps <= 0 {
		return fmt.Errorf("%w: maxSteps must be positive, got %d", ErrInvalidRequest, req.MaxSteps)
	}
	for _, name := range req.AvailableTools {
		if !registry.Has(name) {
			return fmt.Errorf("%w: tool %q is not in the registry", ErrInvalidRequest, name)
		}
	}
	return nil
}

// Step records one loop iteration: the oracle's thought, the action it chose,
// the action's input, and the resulting observation.
type Step struct {
	// StepNumber is 1-based, strictly increasing with no gaps.
	StepNumber int `json:"stepNumber"`

	// Thought is the oracle's free-text reasoning for this iteration.
	Thought string `json:"thought"`

	// Action is a tool name, or [SentinelAction] on the final step.
	Action string `json:"action"`

	// ActionInput is the free-text argument passed to the action.
	ActionInput string `json:"actionInput"`

	// Observation is the tool's output, the termination acknowledgment, or an
	// error description.
	Observation string `json:"observation"`

	// Timestamp is the wall-clock time the step completed.
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall records one dispatched action. Every ToolCall corresponds 1:1 with
// a non-terminating Step, appended in the same order.
type ToolCall struct {
	ToolName string        `json:"toolName"`
	Input    string        `json:"input"`
	Output   string        `json:"output"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
}

// RunState is the loop controller's state machine.
type RunState string

const (
	// RunRunning means the loop is still iterating.
	RunRunning RunState = "running"

	// RunFinished means the oracle emitted the termination sentinel.
	RunFinished RunState = "finished"

	// RunExhausted means the step budget ran out without termination.
	// The final answer, if any, came from the fallback synthesizer.
	RunExhausted RunState = "exhausted"
)

// AgentRun is one invocation's complete state. It is created fresh per
// invocation and never shared between runs; the only cross-run state is the
// read-only [Registry].
type AgentRun struct {
	Question       string   `json:"question"`
	TaskType       TaskType `json:"taskType"`
	MaxSteps       int      `json:"maxSteps"`
	AvailableTools []string `json:"availableTools"`

	// Steps is the append-only transcript, ordered by StepNumber.
	Steps []*Step `json:"steps"`

	// ToolCalls is append-only, one per non-terminating step that reached
	// dispatch, in step order.
	ToolCalls []*ToolCall `json:"toolCalls"`

	// FinalAnswer is set exactly once, by the termination action or by the
	// fallback synthesizer. It is set if and only if Finished is true.
	FinalAnswer string `json:"finalAnswer"`

	// Finished is true once FinalAnswer is set.
	Finished bool `json:"finished"`

	// State is the terminal loop state once the run completes.
	State RunState `json:"state"`

	startTime time.Time
	endTime   time.Time
}

// newAgentRun creates the run state for one invocation.
func newAgentRun(req RunRequest, start time.Time) *AgentRun {
	return &AgentRun{
		Question:       req.Question,
		TaskType:       req.TaskType,
		MaxSteps:       req.MaxSteps,
		AvailableTools: append([]string(nil), req.AvailableTools...),
		Steps:          make([]*Step, 0, req.MaxSteps),
		ToolCalls:      make([]*ToolCall, 0, req.MaxSteps),
		State:          RunRunning,
		startTime:      start,
	}
}

// appendStep appends a step, assigning the next step number.
func (r *AgentRun) appendStep(step *Step) *Step {
	step.StepNumber = len(r.Steps) + 1
	r.Steps = append(r.Steps, step)
	return step
}

// appendToolCall appends a dispatch record.
func (r *AgentRun) appendToolCall(call *ToolCall) {
	r.ToolCalls = append(r.ToolCalls, call)
}

// UsedTools returns the distinct tool names across ToolCalls, in first-use
// order. The set is duplicate-free; order is not part of the contract.
func (r *AgentRun) UsedTools() []string {
	seen := make(map[string]bool, len(r.ToolCalls))
	used := make([]string, 0, len(r.ToolCalls))
	for _, call := range r.ToolCalls {
		if seen[call.ToolName] {
			continue
		}
		seen[call.ToolName] = true
		used = append(used, call.ToolName)
	}
	return used
}

// Elapsed returns the wall-clock duration of the run so far, or the total
// duration once the run has completed.
func (r *AgentRun) Elapsed() time.Duration {
	if r.endTime.IsZero() {
		return time.Since(r.startTime)
	}
	return r.endTime.Sub(r.startTime)
}

// Summary builds the final-result payload delivered to the transport.
func (r *AgentRun) Summary() *RunSummary {
	return &RunSummary{
		Steps:       r.Steps,
		ToolCalls:   r.ToolCalls,
		FinalAnswer: r.FinalAnswer,
		UsedTools:   r.UsedTools(),
		Elapsed:     r.Elapsed(),
	}
}

// RunSummary is the `final_result` event payload.
type RunSummary struct {
	Steps       []*Step       `json:"steps"`
	ToolCalls   []*ToolCall   `json:"toolCalls"`
	FinalAnswer string        `json:"finalAnswer"`
	UsedTools   []string      `json:"usedTools"`
	Elapsed     time.Duration `json:"elapsed"`
}
