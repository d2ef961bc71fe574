package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/ability-api/internal/fuzzy"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run the fuzzy model once and print the prediction",
	Example: "  ability-api predict --model fuzzy_model.json \\\n" +
		"    --input counting_input=3,4,5 --input color_input=2,2,2",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveModelPath(cmd)
		if err != nil {
			return err
		}
		predictor, err := fuzzy.LoadPredictor(path)
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetStringArray("input")
		samples, err := parseInputs(raw)
		if err != nil {
			return err
		}

		value, err := predictor.Predict(samples)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(value, 'f', -1, 64))
		return nil
	},
}

func init() {
	predictCmd.Flags().String("model", "", "Path to the fuzzy model file (default: model.path from config)")
	predictCmd.Flags().StringArray("input", nil, "Samples of one input as field=v1,v2,... (repeatable)")
}

// parseInputs turns ["counting_input=3,4,5"] into {"counting_input": [3 4 5]}.
// A field given twice keeps the later value.
func parseInputs(raw []string) (map[string][]float64, error) {
	samples := make(map[string][]float64, len(raw))
	for _, item := range raw {
		field, list, ok := strings.Cut(item, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("input %q: want field=v1,v2,...", item)
		}

		values := []float64{}
		if list = strings.TrimSpace(list); list != "" {
			for _, s := range strings.Split(list, ",") {
				v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, fmt.Errorf("input %s: %q is not a number", field, s)
				}
				values = append(values, v)
			}
		}
		samples[field] = values
	}
	return samples, nil
}
