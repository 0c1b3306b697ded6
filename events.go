package reagent

// Event names, as delivered to the transport layer.
const (
	EventNameStart        = "start"
	EventNameStepComplete = "step_complete"
	EventNameToolCall     = "tool_call"
	EventNameFinalResult  = "final_result"
	EventNameDone         = "done"
	EventNameError        = "error"
)

// Event is one entry in the ordered progress stream of a run.
//
// Ordering guarantees:
//   - Events are emitted in the exact order the loop transitions occur.
//   - For each completed step, its StepCompleteEvent precedes any subsequent
//     ToolCallEvent or step event.
//   - Exactly one terminal sequence is emitted per run: FinalResultEvent then
//     DoneEvent on success, or a single ErrorEvent on run-level failure.
//     No events follow the terminal sequence.
type Event interface {
	// EventName returns the wire name of the event type.
	EventName() string
}

// StartEvent is emitted once when the run begins.
type StartEvent struct {
	Question string   `json:"question"`
	TaskType TaskType `json:"taskType"`
	MaxSteps int      `json:"maxSteps"`
}

func (StartEvent) EventName() string { return EventNameStart }

// StepCompleteEvent is emitted after every appended step, terminating or not.
type StepCompleteEvent struct {
	Step *Step `json:"step"`
}

func (StepCompleteEvent) EventName() string { return EventNameStepComplete }

// ToolCallEvent is emitted after every dispatched (non-terminating) step,
// immediately after that step's StepCompleteEvent.
type ToolCallEvent struct {
	Call *ToolCall `json:"toolCall"`
}

func (ToolCallEvent) EventName() string { return EventNameToolCall }

// FinalResultEvent carries the run summary, emitted once after the run
// finished or was exhausted and synthesized.
type FinalResultEvent struct {
	Summary *RunSummary `json:"summary"`
}

func (FinalResultEvent) EventName() string { return EventNameFinalResult }

// DoneEvent is the terminal event on success, always last.
type DoneEvent struct{}

func (DoneEvent) EventName() string { return EventNameDone }

// ErrorEvent is the terminal event on run-level failure. It replaces
// FinalResultEvent and DoneEvent; no partial result is delivered.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) EventName() string { return EventNameError }
