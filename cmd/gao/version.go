package main

import (
	"fmt"

	"github.com/gao-dev/gao/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gao version %s\n", version.Get())
	},
}
