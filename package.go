// Package reagent implements an iterative reasoning/acting agent loop for LLMs.
//
// The loop interleaves model-generated thought → action → observation steps:
// on each iteration the oracle (the hosted text-generation service) is shown
// the question and the transcript of every prior step, its response is parsed
// into a structured step, and the step's action is dispatched against a
// read-only tool registry. The reserved action name "finish" terminates the
// loop and supplies the final answer; if the step budget runs out first, a
// fallback synthesizer produces a best-effort answer from the transcript.
//
// # Quick Start
//
//	registry := reagent.NewRegistry(
//	    tools.NewSearch(),
//	    tools.NewCalculator(),
//	    tools.NewLookup(),
//	)
//
//	oracle := models.NewLangChainOracle(llm)
//
//	hub := reagent.NewEventHub()
//	defer hub.Close()
//
//	loop := reagent.NewLoop(oracle, registry).
//	    WithReporter(hub)
//
//	run, err := loop.Run(ctx, reagent.RunRequest{
//	    Question:       "What is the population of Tokyo times two?",
//	    TaskType:       reagent.TaskKnowledge,
//	    MaxSteps:       5,
//	    AvailableTools: []string{"search", "calculator"},
//	})
//
// Progress events can be consumed from the hub while the run executes:
//
//	events, unsub := hub.Subscribe()
//	defer unsub()
//	for event := range events {
//	    switch e := event.(type) {
//	    case reagent.StepCompleteEvent:
//	        fmt.Println(e.Step.Thought)
//	    }
//	}
//
// # Failure Containment
//
// The loop is deliberately robust over correct: malformed oracle output is
// repaired with configurable defaults (see [Parser]), and a failing or
// unknown tool becomes a failed [ToolCall] whose output is fed back to the
// oracle as the next observation. Only an oracle failure (including a failed
// fallback synthesis) aborts the run.
//
// # Concurrency
//
// Execution is single-threaded per run. Concurrent runs are independent and
// share only the read-only [Registry], so they need no synchronization.
// Cancellation is cooperative: the context is checked between iterations,
// and an in-flight oracle or tool call runs to completion.
package reagent
