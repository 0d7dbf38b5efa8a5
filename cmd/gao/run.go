package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gao-dev/gao/internal/agentrunner"
	"github.com/gao-dev/gao/internal/classifier"
	"github.com/gao-dev/gao/internal/config"
	"github.com/gao-dev/gao/internal/docstore"
	"github.com/gao-dev/gao/internal/executor"
	"github.com/gao-dev/gao/internal/selector"
	"github.com/gao-dev/gao/internal/variables"
	"github.com/gao-dev/gao/internal/workflow"
)

var (
	runMaxStories int
	runTimeout    time.Duration
	runDryRun     bool
	runVerbose    bool
)

var runCmd = &cobra.Command{
	Use:   "run <request>",
	Short: "Classify a request and execute its workflow sequence",
	Long: `Run a free-text request through the full delivery pipeline:
classify its complexity, select a workflow sequence, and execute it
step by step in the current directory.

Setup workflows (requirements, architecture, tech specs) run once in
order, then stories run through the create/implement/close loop. Every
file a step creates or modifies is registered as a document in the
project catalog (.gao-dev/documents.db).

Use --dry-run to see the plan without executing anything.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRequest,
}

func init() {
	runCmd.Flags().IntVar(&runMaxStories, "max-stories", 0, "Cap the story loop below the built-in limit of 100")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-step execution budget (default from config, 15m)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Classify and show the plan without executing")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Stream agent output to the terminal")
}

func runRequest(cmd *cobra.Command, args []string) error {
	request := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine project root: %w", err)
	}

	client, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := classifier.New(agentrunner.NewAnthropicAnalysis(client), cfg.Anthropic.AnalysisModel)
	analysis := c.Classify(ctx, request)
	printAnalysis(analysis)

	registry := workflow.NewRegistry()
	if err := registry.LoadOverrides(projectRoot); err != nil {
		return fmt.Errorf("load workflow overrides: %w", err)
	}

	seq, err := selector.New(registry).Select(analysis)
	if err != nil {
		return err
	}
	printPlan(seq)

	if seq.NeedsClarification() {
		return nil
	}
	if runDryRun {
		fmt.Printf("\n%s\n", color.New(color.Faint).Sprint("dry run: nothing executed"))
		return nil
	}

	store, err := docstore.Open(projectRoot)
	if err != nil {
		return fmt.Errorf("open document catalog: %w", err)
	}
	defer store.Close()

	stepTimeout := cfg.Run.StepTimeout
	if runTimeout > 0 {
		stepTimeout = runTimeout
	}
	maxStories := cfg.Run.MaxStories
	if runMaxStories > 0 {
		maxStories = runMaxStories
	}

	exec := executor.New(store, &agentrunner.APIRunnerFactory{Client: client},
		variables.New(projectRoot, cfg.Variables),
		executor.Options{
			StepTimeout: stepTimeout,
			MaxStories:  maxStories,
			Author:      cfg.Run.Author,
			Usage:       client.Tracker(),
		})

	done := make(chan struct{})
	go func() {
		defer close(done)
		streamEvents(exec.Events())
	}()

	fmt.Println()
	result, execErr := exec.Execute(ctx, executor.Request{
		ProjectRoot: projectRoot,
		Prompt:      request,
		Sequence:    seq,
	})
	<-done

	if execErr != nil {
		fmt.Printf("\n%s %v\n", color.RedString("✗"), execErr)
		if result != nil && result.FailingStep != nil {
			fmt.Printf("  failed at %s", result.FailingStep.Workflow)
			if result.FailingStep.Story > 0 {
				fmt.Printf(" (epic %d, story %d)", result.FailingStep.Epic, result.FailingStep.Story)
			}
			fmt.Println()
		}
		return execErr
	}

	fmt.Printf("\n%s run completed in %s\n", color.GreenString("✓"), result.Duration.Round(time.Second))
	fmt.Printf("  stories:   %d\n", result.StoriesRun)
	fmt.Printf("  artifacts: %d\n", len(result.Artifacts))
	if result.TokensUsed > 0 {
		fmt.Printf("  tokens:    %d ($%.4f)\n", result.TokensUsed, result.Cost)
	}
	return nil
}

// streamEvents renders executor events until the channel closes.
func streamEvents(events <-chan executor.Event) {
	for ev := range events {
		switch ev.Type {
		case executor.EventRunStarted:
			fmt.Printf("%s %s\n", color.CyanString("▸"), ev.Message)
		case executor.EventEpicStarted:
			fmt.Printf("%s epic %d\n", color.CyanString("▸"), ev.Epic)
		case executor.EventStepStarted:
			if ev.Story > 0 {
				fmt.Printf("  %s %s (story %d)\n", color.New(color.Faint).Sprint("→"), ev.Workflow, ev.Story)
			} else {
				fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("→"), ev.Workflow)
			}
		case executor.EventStepCompleted:
			for _, doc := range ev.Artifacts {
				fmt.Printf("    %s %s (%s)\n", color.GreenString("+"), doc.Path, doc.Type)
			}
		case executor.EventStoryCompleted:
			fmt.Printf("  %s story %d done\n", color.GreenString("✓"), ev.Story)
		case executor.EventAgentOutput:
			if runVerbose && ev.Message != "" {
				fmt.Println(indent(ev.Message, "    "))
			}
		case executor.EventRunFailed:
			// The error is reported by the caller with full context.
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
