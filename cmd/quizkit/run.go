package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizkit/quizkit/internal/cli"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <funnel-file>",
	Short: "Walk a funnel interactively in the terminal",
	Long:  `Loads a funnel file and walks it step by step: questions prompt for a choice, forms prompt for contact details, results end the session.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := funnel.ParseFile(args[0])
		if err != nil {
			fmt.Printf("Error reading funnel: %v\n", err)
			os.Exit(1)
		}
		model, err := graph.Build(f)
		if err != nil {
			fmt.Printf("Error building graph: %v\n", err)
			os.Exit(1)
		}

		walker := cli.NewWalker(model, os.Stdin, os.Stdout)
		if _, err := walker.Run(context.Background()); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
