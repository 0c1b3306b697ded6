// Package main provides an interactive CLI for exercising the agent loop
// with real-time streaming output.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvalens/reagent"
	"github.com/rvalens/reagent/integrationtest/testutil"
	"github.com/rvalens/reagent/loggers"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

var (
	flagTaskType string
	flagMaxSteps int
	flagTools    []string
	flagLive     bool
	flagYAMLLog  bool
	flagZapLog   bool
)

func main() {
	root := &cobra.Command{
		Use:   "agentcli",
		Short: "Interactive driver for the reagent reasoning/acting loop",
	}

	root.PersistentFlags().StringVar(&flagTaskType, "task-type", "general",
		"task type: knowledge, decision, reasoning, general")
	root.PersistentFlags().IntVar(&flagMaxSteps, "max-steps", 5,
		"maximum loop iterations per question")
	root.PersistentFlags().StringSliceVar(&flagTools, "tools", nil,
		"tools to offer (default: all registered)")
	root.PersistentFlags().BoolVar(&flagLive, "live", false,
		"use a live OpenAI-backed oracle (requires OPENAI_API_KEY)")
	root.PersistentFlags().BoolVar(&flagYAMLLog, "yaml-log", false,
		"dump every event as YAML to stderr")
	root.PersistentFlags().BoolVar(&flagZapLog, "zap-log", false,
		"log structured run entries to stderr")

	runCmd := &cobra.Command{
		Use:   "run [question]",
		Short: "Run a single question through the loop",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), strings.Join(args, " "))
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session: one run per entered question",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chat(cmd.Context())
		},
	}

	root.AddCommand(runCmd, chatCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

// buildLoop wires the loop from the flags, returning the loop and its hub.
func buildLoop() (*reagent.Loop, *reagent.EventHub, error) {
	oracle := testutil.NewScriptedOracle()
	if flagLive {
		live, err := testutil.NewLiveOracle()
		if err != nil {
			return nil, nil, err
		}
		oracle = live
	}

	hub := reagent.NewEventHub()
	reporters := []reagent.Reporter{hub}

	if flagYAMLLog {
		reporters = append(reporters, loggers.NewYAMLLoggerWithWriter(os.Stderr))
	}
	if flagZapLog {
		zapLogger, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("create zap logger: %w", err)
		}
		reporters = append(reporters, loggers.NewZapLogger(zapLogger))
	}

	loop := reagent.NewLoop(oracle, testutil.NewRegistry()).
		WithReporter(reagent.MultiReporter(reporters...))
	return loop, hub, nil
}

// runOnce executes a single question and renders its event stream.
func runOnce(ctx context.Context, question string) error {
	loop, hub, err := buildLoop()
	if err != nil {
		return err
	}
	defer hub.Close()

	events, unsub := hub.Subscribe()
	defer unsub()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderEvents(os.Stdout, events)
	}()

	_, runErr := loop.Run(ctx, reagent.RunRequest{
		Question:       question,
		TaskType:       reagent.TaskType(flagTaskType),
		MaxSteps:       flagMaxSteps,
		AvailableTools: flagTools,
	})

	hub.Close()
	wg.Wait()
	return runErr
}

// chat reads questions on a readline prompt and runs each one.
func chat(ctx context.Context) error {
	rl, err := readline.New(colorCyan + "question> " + colorReset)
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Enter a question per line. Ctrl-D or \"exit\" to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		if err := runOnce(ctx, question); err != nil {
			fmt.Fprintf(os.Stderr, "%srun failed: %v%s\n", colorRed, err, colorReset)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// renderEvents prints the event stream until the channel closes.
func renderEvents(w io.Writer, events <-chan reagent.Event) {
	for event := range events {
		switch e := event.(type) {
		case reagent.StartEvent:
			fmt.Fprintf(w, "%s── run: %s (%s, max %d steps)%s\n",
				colorDim, e.Question, e.TaskType, e.MaxSteps, colorReset)
		case reagent.StepCompleteEvent:
			fmt.Fprintf(w, "%s[step %d]%s %s\n", colorYellow, e.Step.StepNumber, colorReset, e.Step.Thought)
			fmt.Fprintf(w, "  %s%s(%s)%s\n", colorCyan, e.Step.Action, e.Step.ActionInput, colorReset)
			fmt.Fprintf(w, "  %s→ %s%s\n", colorDim, e.Step.Observation, colorReset)
		case reagent.ToolCallEvent:
			status := colorGreen + "ok" + colorReset
			if !e.Call.Success {
				status = colorRed + "failed" + colorReset
			}
			fmt.Fprintf(w, "  %stool %s: %s (%s)%s\n",
				colorDim, e.Call.ToolName, status, e.Call.Duration, colorReset)
		case reagent.FinalResultEvent:
			fmt.Fprintf(w, "%sAnswer:%s %s\n", colorGreen, colorReset, e.Summary.FinalAnswer)
			fmt.Fprintf(w, "%s(%d steps, %d tool calls, %s)%s\n",
				colorDim, len(e.Summary.Steps), len(e.Summary.ToolCalls), e.Summary.Elapsed, colorReset)
		case reagent.ErrorEvent:
			fmt.Fprintf(w, "%serror: %s%s\n", colorRed, e.Message, colorReset)
		case reagent.DoneEvent:
			// Terminal marker; channel closes right after.
		}
	}
}
