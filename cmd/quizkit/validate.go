package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
)

var validateCmd = &cobra.Command{
	Use:   "validate <funnel-file>",
	Short: "Check a funnel definition for consistency",
	Long:  `Validates the structural shape of a funnel file (JSON or YAML) and builds its graph, reporting shape violations, duplicate ids and dangling edge references.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			out := termenv.NewOutput(os.Stderr)
			fmt.Fprintln(os.Stderr, out.String("Validation failed").Foreground(out.Color("1")))
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		out := termenv.NewOutput(os.Stdout)
		fmt.Println(out.String("Funnel is valid").Foreground(out.Color("2")))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	f, err := funnel.ParseFile(path)
	if err != nil {
		return err
	}

	model, err := graph.Build(f)
	if err != nil {
		return err
	}

	if _, ok := model.Entry(); !ok {
		return fmt.Errorf("funnel has no nodes")
	}
	return nil
}
