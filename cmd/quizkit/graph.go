package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizkit/quizkit/internal/presentation/graph"
	"github.com/quizkit/quizkit/pkg/funnel"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <funnel-file>",
	Short: "Export the funnel graph visualization",
	Long:  `Reads a funnel file and outputs a Mermaid diagram (graph TD) representing the branching logic.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := funnel.ParseFile(args[0])
		if err != nil {
			fmt.Printf("Error reading funnel: %v\n", err)
			os.Exit(1)
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(f)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
