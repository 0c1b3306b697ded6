package reagent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder is a Reporter that records events in order. The loop reports
// synchronously from a single goroutine, so no locking is needed.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Report(e Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) names() []string {
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.EventName()
	}
	return names
}

// scriptedOracle returns the given responses in order, erroring once the
// script runs out.
func scriptedOracle(responses ...string) Oracle {
	i := 0
	return OracleFunc(func(_ context.Context, _, _ string, _ ...GenerateOption) (string, error) {
		if i >= len(responses) {
			return "", errors.New("script exhausted")
		}
		response := responses[i]
		i++
		return response, nil
	})
}

func stepResponse(thought, action, input string) string {
	return fmt.Sprintf("Thought: %s\nAction: %s\nAction Input: %s", thought, action, input)
}

func TestLoop_Run_ExplicitTermination(t *testing.T) {
	recorder := &eventRecorder{}
	oracle := scriptedOracle(
		stepResponse("I need the population figure.", "search", "population of Tokyo"),
		stepResponse("I have enough to answer.", SentinelAction, "42"),
	)
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "What is the answer?",
		TaskType: TaskKnowledge,
		MaxSteps: 10,
	})
	require.NoError(t, err)

	assert.True(t, run.Finished)
	assert.Equal(t, RunFinished, run.State)
	assert.Equal(t, "42", run.FinalAnswer)
	require.Len(t, run.Steps, 2)
	assert.Len(t, run.ToolCalls, 1)

	// The terminating step carries the completion marker as its observation
	// and produces no tool call.
	final := run.Steps[1]
	assert.Equal(t, SentinelAction, final.Action)
	assert.Equal(t, TaskCompleteMarker, final.Observation)

	assert.Equal(t, []string{
		EventNameStart,
		EventNameStepComplete, EventNameToolCall,
		EventNameStepComplete,
		EventNameFinalResult,
		EventNameDone,
	}, recorder.names())
}

func TestLoop_Run_StepNumbersAreGapless(t *testing.T) {
	oracle := scriptedOracle(
		stepResponse("a", "search", "one"),
		stepResponse("b", "search", "two"),
		stepResponse("c", SentinelAction, "done"),
	)
	loop := NewLoop(oracle, NewRegistry(stubTool("search")))

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "count",
		TaskType: TaskGeneral,
		MaxSteps: 5,
	})
	require.NoError(t, err)

	require.Len(t, run.Steps, 3)
	for i, step := range run.Steps {
		assert.Equal(t, i+1, step.StepNumber)
	}
}

func TestLoop_Run_BudgetExhaustionSynthesizesOnce(t *testing.T) {
	synthesisCalls := 0
	oracle := OracleFunc(func(_ context.Context, _, prompt string, _ ...GenerateOption) (string, error) {
		if strings.Contains(prompt, "incomplete reasoning transcript") {
			synthesisCalls++
			return "Best effort: probably Paris.", nil
		}
		// Never terminates on its own.
		return stepResponse("still digging", "search", "more facts"), nil
	})
	recorder := &eventRecorder{}
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "capital of France",
		TaskType: TaskKnowledge,
		MaxSteps: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, synthesisCalls)
	assert.Equal(t, RunExhausted, run.State)
	assert.True(t, run.Finished)
	assert.Equal(t, "Best effort: probably Paris.", run.FinalAnswer)
	assert.Len(t, run.Steps, 3)
	assert.Len(t, run.ToolCalls, 3)

	assert.Equal(t, []string{
		EventNameStart,
		EventNameStepComplete, EventNameToolCall,
		EventNameStepComplete, EventNameToolCall,
		EventNameStepComplete, EventNameToolCall,
		EventNameFinalResult,
		EventNameDone,
	}, recorder.names())
}

func TestLoop_Run_SynthesisUsesReducedTemperature(t *testing.T) {
	var synthesisTemp *float64
	oracle := OracleFunc(func(_ context.Context, _, prompt string, opts ...GenerateOption) (string, error) {
		if strings.Contains(prompt, "incomplete reasoning transcript") {
			options := ApplyGenerateOptions(opts...)
			synthesisTemp = options.Temperature
			return "answer", nil
		}
		return stepResponse("loop forever", "search", "x"), nil
	})
	loop := NewLoop(oracle, NewRegistry(stubTool("search")))

	_, err := loop.Run(context.Background(), RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 1,
	})
	require.NoError(t, err)

	require.NotNil(t, synthesisTemp)
	assert.Equal(t, DefaultSynthesisTemperature, *synthesisTemp)
}

func TestLoop_Run_ToolFailureFeedsNextPrompt(t *testing.T) {
	failing := NewToolFunc("lookup", "fails once", "lookup[term]", nil,
		func(_ context.Context, _ string) (string, error) {
			return "", errors.New("no entry found")
		},
	)

	var prompts []string
	oracle := OracleFunc(func(_ context.Context, _, prompt string, _ ...GenerateOption) (string, error) {
		prompts = append(prompts, prompt)
		if len(prompts) == 1 {
			return stepResponse("try the lookup", "lookup", "quasar"), nil
		}
		return stepResponse("lookup failed, answering anyway", SentinelAction, "a quasar is a luminous galactic nucleus"), nil
	})
	loop := NewLoop(oracle, NewRegistry(failing))

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "what is a quasar",
		TaskType: TaskKnowledge,
		MaxSteps: 5,
	})
	require.NoError(t, err)

	// The failure did not end the run; it was recorded and replayed to the
	// oracle verbatim as an observation.
	assert.True(t, run.Finished)
	require.Len(t, run.ToolCalls, 1)
	assert.False(t, run.ToolCalls[0].Success)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], `Observation: Tool "lookup" failed: no entry found`)
}

func TestLoop_Run_UnknownActionContinues(t *testing.T) {
	oracle := scriptedOracle(
		stepResponse("I will use a tool that does not exist.", "telescope", "m31"),
		stepResponse("telescope is unavailable, finishing", SentinelAction, "unknown"),
	)
	loop := NewLoop(oracle, NewRegistry(stubTool("search")))

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "observe m31",
		TaskType: TaskGeneral,
		MaxSteps: 5,
	})
	require.NoError(t, err)

	assert.True(t, run.Finished)
	require.Len(t, run.ToolCalls, 1)
	assert.False(t, run.ToolCalls[0].Success)
	assert.Contains(t, run.Steps[0].Observation, `Unknown action "telescope"`)
	assert.Contains(t, run.Steps[0].Observation, "Available actions: search")
}

func TestLoop_Run_RestrictedToolsetHidesOtherTools(t *testing.T) {
	oracle := scriptedOracle(
		stepResponse("calculator should work", "calculator", "1 + 1"),
		stepResponse("it did not; giving up", SentinelAction, "n/a"),
	)
	registry := NewRegistry(stubTool("search"), stubTool("calculator"))
	loop := NewLoop(oracle, registry)

	run, err := loop.Run(context.Background(), RunRequest{
		Question:       "add",
		TaskType:       TaskReasoning,
		MaxSteps:       5,
		AvailableTools: []string{"search"},
	})
	require.NoError(t, err)

	// calculator exists in the registry but not in this run's toolset.
	assert.Contains(t, run.Steps[0].Observation, `Unknown action "calculator"`)
	assert.Contains(t, run.Steps[0].Observation, "Available actions: search.")
}

func TestLoop_Run_OracleFailureAborts(t *testing.T) {
	recorder := &eventRecorder{}
	oracle := OracleFunc(func(_ context.Context, _, _ string, _ ...GenerateOption) (string, error) {
		return "", errors.New("connection refused")
	})
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracleFailure)

	// No final result, no done event. A single error event ends the stream.
	assert.False(t, run.Finished)
	assert.Empty(t, run.FinalAnswer)
	assert.Equal(t, []string{EventNameStart, EventNameError}, recorder.names())
}

func TestLoop_Run_SynthesisFailureAborts(t *testing.T) {
	recorder := &eventRecorder{}
	oracle := OracleFunc(func(_ context.Context, _, prompt string, _ ...GenerateOption) (string, error) {
		if strings.Contains(prompt, "incomplete reasoning transcript") {
			return "", errors.New("connection refused")
		}
		return stepResponse("never finishing", "search", "x"), nil
	})
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSynthesisFailure)

	assert.Equal(t, RunExhausted, run.State)
	assert.False(t, run.Finished)
	assert.Equal(t, EventNameError, recorder.events[len(recorder.events)-1].EventName())
}

func TestLoop_Run_CancellationBetweenIterations(t *testing.T) {
	recorder := &eventRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	oracle := OracleFunc(func(_ context.Context, _, _ string, _ ...GenerateOption) (string, error) {
		// Cancel mid-run; the current iteration still completes.
		cancel()
		return stepResponse("one more step", "search", "x"), nil
	})
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	run, err := loop.Run(ctx, RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 10,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The in-flight step finished before the cancellation was observed.
	assert.Len(t, run.Steps, 1)
	assert.Equal(t, EventNameError, recorder.events[len(recorder.events)-1].EventName())
}

func TestLoop_Run_InvalidRequest(t *testing.T) {
	recorder := &eventRecorder{}
	loop := NewLoop(scriptedOracle(), NewRegistry(stubTool("search"))).
		WithReporter(recorder)

	tests := []struct {
		name string
		req  RunRequest
	}{
		{
			name: "empty question",
			req:  RunRequest{TaskType: TaskGeneral, MaxSteps: 5},
		},
		{
			name: "unknown task type",
			req:  RunRequest{Question: "q", TaskType: "galactic", MaxSteps: 5},
		},
		{
			name: "non-positive max steps",
			req:  RunRequest{Question: "q", TaskType: TaskGeneral, MaxSteps: 0},
		},
		{
			name: "tool not in registry",
			req: RunRequest{
				Question: "q", TaskType: TaskGeneral, MaxSteps: 5,
				AvailableTools: []string{"telescope"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := loop.Run(context.Background(), tt.req)
			assert.Nil(t, run)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	// Validation failures happen before the run starts: no events at all.
	assert.Empty(t, recorder.events)
}

func TestLoop_Run_UsedToolsDeduplicated(t *testing.T) {
	oracle := scriptedOracle(
		stepResponse("a", "search", "one"),
		stepResponse("b", "calculator", "1 + 1"),
		stepResponse("c", "search", "two"),
		stepResponse("d", SentinelAction, "done"),
	)
	registry := NewRegistry(stubTool("search"), stubTool("calculator"))
	loop := NewLoop(oracle, registry)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"search", "calculator"}, run.UsedTools())
	assert.Equal(t, []string{"search", "calculator"}, run.Summary().UsedTools)
}

func TestLoop_Run_SystemPromptListsRunToolsOnly(t *testing.T) {
	var systemPrompt string
	oracle := OracleFunc(func(_ context.Context, system, _ string, _ ...GenerateOption) (string, error) {
		systemPrompt = system
		return stepResponse("done immediately", SentinelAction, "ok"), nil
	})
	registry := NewRegistry(stubTool("search"), stubTool("calculator"), stubTool("lookup"))
	loop := NewLoop(oracle, registry)

	_, err := loop.Run(context.Background(), RunRequest{
		Question:       "q",
		TaskType:       TaskKnowledge,
		MaxSteps:       3,
		AvailableTools: []string{"search"},
	})
	require.NoError(t, err)

	assert.Contains(t, systemPrompt, "search[input]")
	assert.NotContains(t, systemPrompt, "calculator[input]")
	assert.NotContains(t, systemPrompt, "lookup[input]")
	// Preferred tools are filtered to the run's toolset.
	assert.Contains(t, systemPrompt, "Prefer these actions for this task: search.")
}

func TestLoop_Run_ElapsedUsesInjectedClock(t *testing.T) {
	clock := NewMockTimeProvider(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	oracle := OracleFunc(func(_ context.Context, _, _ string, _ ...GenerateOption) (string, error) {
		clock.Advance(2 * time.Second)
		return stepResponse("done", SentinelAction, "ok"), nil
	})
	loop := NewLoop(oracle, NewRegistry(stubTool("search"))).
		WithTimeProvider(clock)

	run, err := loop.Run(context.Background(), RunRequest{
		Question: "q",
		TaskType: TaskGeneral,
		MaxSteps: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, run.Elapsed())
	assert.Equal(t, clock.Now(), run.Steps[0].Timestamp)
}
