package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/ability-api/internal/fuzzy"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Validate a fuzzy model file and print its inputs and output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveModelPath(cmd)
		if err != nil {
			return err
		}
		predictor, err := fuzzy.LoadPredictor(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "model:  %s\noutput: %s\n\n", predictor.Name(), predictor.Output())

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tVARIABLE\tMIN\tMAX")
		for _, in := range predictor.Inputs() {
			fmt.Fprintf(tw, "%s\t%s\t%g\t%g\n", in.Field, in.Name, in.Min, in.Max)
		}
		return tw.Flush()
	},
}

func init() {
	modelCmd.Flags().String("model", "", "Path to the fuzzy model file (default: model.path from config)")
}
