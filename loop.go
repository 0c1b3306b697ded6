package reagent

import (
	"context"
	"errors"
	"fmt"
	"text/template"
)

// ErrOracleFailure wraps an oracle call failure during the loop. The run is
// aborted: a single error event is emitted and no final result is delivered.
var ErrOracleFailure = errors.New("reagent: oracle call failed")

// ErrSynthesisFailure wraps a fallback-synthesis failure after budget
// exhaustion. Handled like ErrOracleFailure; there is no further fallback.
var ErrSynthesisFailure = errors.New("reagent: fallback synthesis failed")

// Loop drives the think→act→observe cycle for one run at a time.
//
// Each iteration asks the oracle for the next step (given the question and
// the verbatim transcript of all prior steps), parses it, and either
// terminates on the sentinel action or dispatches the action and appends the
// observation. When the step budget runs out, the fallback synthesizer is
// invoked exactly once.
//
// A Loop is safe for concurrent Run calls: all per-run state lives in the
// AgentRun, and the configured collaborators are read-only during execution.
type Loop struct {
	oracle             Oracle
	registry           *Registry
	parser             *Parser
	synthesizer        *Synthesizer
	reporter           Reporter
	timeProvider       TimeProvider
	profiles           map[TaskType]TaskProfile
	systemTemplate     *template.Template
	transcriptTemplate *template.Template
}

// NewLoop creates a Loop with the given oracle and registry and default
// settings:
//   - Parser: NewParser()
//   - Synthesizer: NewSynthesizer(oracle)
//   - Reporter: DiscardReporter()
//   - TimeProvider: NewDefaultTimeProvider()
//   - Task profiles: DefaultTaskProfiles()
//   - Templates: DefaultSystemTemplate, DefaultTranscriptTemplate
func NewLoop(oracle Oracle, registry *Registry) *Loop {
	return &Loop{
		oracle:             oracle,
		registry:           registry,
		parser:             NewParser(),
		synthesizer:        NewSynthesizer(oracle),
		reporter:           DiscardReporter(),
		timeProvider:       NewDefaultTimeProvider(),
		profiles:           DefaultTaskProfiles(),
		systemTemplate:     DefaultSystemTemplate,
		transcriptTemplate: DefaultTranscriptTemplate,
	}
}

// WithParser sets the step parser. Returns the loop for chaining.
func (l *Loop) WithParser(p *Parser) *Loop {
	l.parser = p
	return l
}

// WithSynthesizer sets the fallback synthesizer.
func (l *Loop) WithSynthesizer(s *Synthesizer) *Loop {
	l.synthesizer = s
	return l
}

// WithReporter sets the progress reporter. Use [MultiReporter] to combine
// several, or an [EventHub] to stream to a transport.
func (l *Loop) WithReporter(r Reporter) *Loop {
	l.reporter = r
	return l
}

// WithTimeProvider sets the clock used for step timestamps and durations.
// Use this to inject a mock time provider for testing.
func (l *Loop) WithTimeProvider(tp TimeProvider) *Loop {
	l.timeProvider = tp
	return l
}

// WithTaskProfiles replaces the task-type prompting preferences.
func (l *Loop) WithTaskProfiles(profiles map[TaskType]TaskProfile) *Loop {
	l.profiles = profiles
	return l
}

// WithSystemTemplate sets a custom system prompt template.
func (l *Loop) WithSystemTemplate(tmpl *template.Template) *Loop {
	l.systemTemplate = tmpl
	return l
}

// WithTranscriptTemplate sets a custom transcript prompt template.
func (l *Loop) WithTranscriptTemplate(tmpl *template.Template) *Loop {
	l.transcriptTemplate = tmpl
	return l
}

// Run executes one agent invocation.
//
// The run ends in one of three ways:
//   - the oracle emits the sentinel action: the run is Finished, the final
//     answer is the sentinel's action input;
//   - the step budget is exhausted: the run is Exhausted and the fallback
//     synthesizer supplies the final answer;
//   - the oracle (or the synthesis call) fails, or ctx is canceled between
//     iterations: the run aborts with an error and a single error event.
//
// Tool failures and unknown actions never end the run; they become failed
// tool calls whose output is the next observation.
//
// Cancellation is cooperative and coarse-grained: ctx is checked at the top
// of each iteration, and an already-dispatched oracle or tool call runs to
// completion.
func (l *Loop) Run(ctx context.Context, req RunRequest) (*AgentRun, error) {
	if err := req.Validate(l.registry); err != nil {
		return nil, err
	}

	view, err := l.registry.Restrict(req.AvailableTools)
	if err != nil {
		return nil, err
	}
	dispatcher := NewDispatcher(view).WithTimeProvider(l.timeProvider)

	profile := l.profiles[req.TaskType]
	systemPrompt, err := buildSystemPrompt(l.systemTemplate, view, profile, l.timeProvider)
	if err != nil {
		return nil, err
	}

	run := newAgentRun(req, l.timeProvider.Now())
	l.reporter.Report(StartEvent{
		Question: run.Question,
		TaskType: run.TaskType,
		MaxSteps: run.MaxSteps,
	})

	for len(run.Steps) < run.MaxSteps {
		// Cooperative cancellation: observed between steps only.
		if err := ctx.Err(); err != nil {
			return l.abort(run, err)
		}

		prompt, err := buildTranscriptPrompt(l.transcriptTemplate, run.Question, run.Steps)
		if err != nil {
			return l.abort(run, err)
		}

		response, err := l.oracle.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			return l.abort(run, fmt.Errorf("%w: %v", ErrOracleFailure, err))
		}

		parsed := l.parser.Parse(response)

		if parsed.Action == SentinelAction {
			run.FinalAnswer = parsed.ActionInput
			run.Finished = true
			run.State = RunFinished
			step := run.appendStep(&Step{
				Thought:     parsed.Thought,
				Action:      parsed.Action,
				ActionInput: parsed.ActionInput,
				Observation: TaskCompleteMarker,
				Timestamp:   l.timeProvider.Now(),
			})
			l.reporter.Report(StepCompleteEvent{Step: step})
			break
		}

		call := dispatcher.Dispatch(ctx, parsed.Action, parsed.ActionInput)
		step := run.appendStep(&Step{
			Thought:     parsed.Thought,
			Action:      parsed.Action,
			ActionInput: parsed.ActionInput,
			Observation: call.Output,
			Timestamp:   l.timeProvider.Now(),
		})
		run.appendToolCall(call)

		// Step completion is reported before the step's tool call, and both
		// before any later step's events.
		l.reporter.Report(StepCompleteEvent{Step: step})
		l.reporter.Report(ToolCallEvent{Call: call})
	}

	if !run.Finished {
		run.State = RunExhausted
		answer, err := l.synthesizer.Synthesize(ctx, run.Question, run.Steps)
		if err != nil {
			return l.abort(run, fmt.Errorf("%w: %v", ErrSynthesisFailure, err))
		}
		run.FinalAnswer = answer
		run.Finished = true
	}

	run.endTime = l.timeProvider.Now()
	l.reporter.Report(FinalResultEvent{Summary: run.Summary()})
	l.reporter.Report(DoneEvent{})
	return run, nil
}

// abort ends the run with a run-level failure: a single error event, no
// final result.
func (l *Loop) abort(run *AgentRun, err error) (*AgentRun, error) {
	run.endTime = l.timeProvider.Now()
	l.reporter.Report(ErrorEvent{Message: err.Error()})
	return run, err
}
