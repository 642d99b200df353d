package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizkit/quizkit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quizkit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quizkit version %s\n", strings.TrimSpace(quizkit.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
