package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gao-dev/gao/internal/agentrunner"
	"github.com/gao-dev/gao/internal/classifier"
	"github.com/gao-dev/gao/internal/config"
	"github.com/gao-dev/gao/internal/selector"
	"github.com/gao-dev/gao/internal/workflow"
	"github.com/gao-dev/gao/pkg/models"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <request>",
	Short: "Classify a request and preview the workflow plan",
	Long: `Classify a free-text request into a scale level, project type, and
story/epic estimates, then show the workflow sequence it would route to.
Nothing is executed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		client, err := newAPIClient(cfg)
		if err != nil {
			return err
		}

		c := classifier.New(agentrunner.NewAnthropicAnalysis(client), cfg.Anthropic.AnalysisModel)
		analysis := c.Classify(cmd.Context(), request)
		printAnalysis(analysis)

		projectRoot, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine project root: %w", err)
		}
		registry := workflow.NewRegistry()
		if err := registry.LoadOverrides(projectRoot); err != nil {
			return fmt.Errorf("load workflow overrides: %w", err)
		}

		seq, err := selector.New(registry).Select(analysis)
		if err != nil {
			return err
		}
		printPlan(seq)
		return nil
	},
}

func printAnalysis(analysis models.PromptAnalysis) {
	fmt.Printf("%s\n", color.CyanString("Classification"))
	fmt.Printf("  scale:      %s (%d)\n", analysis.ScaleLevel, int(analysis.ScaleLevel))
	fmt.Printf("  type:       %s\n", analysis.ProjectType)
	fmt.Printf("  stories:    %d\n", analysis.EstimatedStories)
	fmt.Printf("  epics:      %d\n", analysis.EstimatedEpics)
	fmt.Printf("  confidence: %.2f\n", analysis.Confidence)
	if analysis.Reasoning != "" {
		fmt.Printf("  reasoning:  %s\n", analysis.Reasoning)
	}
}

func printPlan(seq models.WorkflowSequence) {
	if seq.NeedsClarification() {
		fmt.Printf("\n%s\n", color.YellowString("Clarification needed before routing:"))
		for _, q := range seq.ClarifyingQuestions {
			fmt.Printf("  - %s\n", q)
		}
		return
	}

	fmt.Printf("\n%s (%s)\n", color.CyanString("Workflow plan"), seq.Rationale)
	for i, def := range seq.Workflows {
		suffix := ""
		if def.IsStoryStep() {
			suffix = color.New(color.Faint).Sprintf("  (per story, up to %d)", seq.EstimatedStories)
		} else if seq.PerEpicTechSpec && def.Name == models.WorkflowTechSpec {
			suffix = color.New(color.Faint).Sprintf("  (per epic, %d epics)", seq.EstimatedEpics)
		}
		fmt.Printf("  %d. %s%s\n", i+1, def.Name, suffix)
	}
}
