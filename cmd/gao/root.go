package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gao",
	Short: "AI-driven software delivery workflow engine",
	Long: `gao turns a free-text request into an executed delivery workflow:
it classifies the request's complexity, selects an ordered workflow
sequence, and runs it step by step with an AI agent, registering every
produced artifact into a per-project document catalog.

Core capabilities:
- Classifies requests into scale levels 0-4 with story/epic estimates
- Routes to a deterministic workflow sequence per scale and project type
- Runs setup workflows once, then an iterative story loop
- Detects created files by content-hash diffing and tracks their lifecycle
- Archives and restores documents atomically`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
