package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizkit",
	Short: "Quizkit is a branching quiz/funnel engine",
	Long:  `Quizkit builds, publishes and runs branching quiz funnels: directed graphs of questions, forms, content and result steps connected by conditional edges.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the quizkit config file")
}
