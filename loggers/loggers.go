// Package loggers provides reusable logging reporters for agent runs.
//
// Both loggers are plain [reagent.Reporter] implementations, so they attach
// to a loop via reagent.MultiReporter alongside an EventHub without touching
// the control logic.
package loggers

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rvalens/reagent"
)

// YAMLLogger logs every run event as YAML with a timestamped header line.
// Nothing is truncated - full content is always logged. Intended for
// development and integration-test transcripts.
type YAMLLogger struct {
	out io.Writer
}

// NewYAMLLogger creates a YAMLLogger that writes to stdout.
func NewYAMLLogger() *YAMLLogger {
	return &YAMLLogger{out: os.Stdout}
}

// NewYAMLLoggerWithWriter creates a YAMLLogger that writes to the given writer.
func NewYAMLLoggerWithWriter(w io.Writer) *YAMLLogger {
	return &YAMLLogger{out: w}
}

// Report writes the event header and its YAML body.
func (l *YAMLLogger) Report(event reagent.Event) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.out, "\n>>> [%s]: %s\n", event.EventName(), timestamp)

	data, err := yaml.Marshal(event)
	if err != nil {
		fmt.Fprintf(l.out, "(failed to marshal: %v)\n", err)
		return
	}
	fmt.Fprint(l.out, string(data))
}

// Compile-time check that YAMLLogger implements reagent.Reporter.
var _ reagent.Reporter = (*YAMLLogger)(nil)

// ZapLogger logs run events as structured entries on a zap logger, one entry
// per event with typed fields. Use it when runs execute inside a service
// whose logs are aggregated.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a ZapLogger writing to the given zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// Report logs one structured entry for the event.
func (l *ZapLogger) Report(event reagent.Event) {
	switch e := event.(type) {
	case reagent.StartEvent:
		l.logger.Info("run started",
			zap.String("event", e.EventName()),
			zap.String("question", e.Question),
			zap.String("task_type", string(e.TaskType)),
			zap.Int("max_steps", e.MaxSteps),
		)
	case reagent.StepCompleteEvent:
		l.logger.Info("step complete",
			zap.String("event", e.EventName()),
			zap.Int("step", e.Step.StepNumber),
			zap.String("action", e.Step.Action),
			zap.String("thought", e.Step.Thought),
		)
	case reagent.ToolCallEvent:
		l.logger.Info("tool call",
			zap.String("event", e.EventName()),
			zap.String("tool", e.Call.ToolName),
			zap.Bool("success", e.Call.Success),
			zap.Duration("duration", e.Call.Duration),
		)
	case reagent.FinalResultEvent:
		l.logger.Info("final result",
			zap.String("event", e.EventName()),
			zap.Int("steps", len(e.Summary.Steps)),
			zap.Strings("used_tools", e.Summary.UsedTools),
			zap.Duration("elapsed", e.Summary.Elapsed),
		)
	case reagent.DoneEvent:
		l.logger.Info("run done", zap.String("event", e.EventName()))
	case reagent.ErrorEvent:
		l.logger.Error("run failed",
			zap.String("event", e.EventName()),
			zap.String("message", e.Message),
		)
	default:
		l.logger.Info("event", zap.String("event", event.EventName()))
	}
}

// Compile-time check that ZapLogger implements reagent.Reporter.
var _ reagent.Reporter = (*ZapLogger)(nil)
