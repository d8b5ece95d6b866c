package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/shipment-cli/internal/evaluate"
)

var (
	evaluateOutputs string
	evaluateTruth   string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score extracted records against ground truth",
	Long:  "Compares a shipment records file against a ground-truth file field by field and prints per-field and overall accuracy.",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputs, err := evaluate.LoadRecords(evaluateOutputs)
		if err != nil {
			return eris.Wrap(err, "load outputs")
		}
		truth, err := evaluate.LoadRecords(evaluateTruth)
		if err != nil {
			return eris.Wrap(err, "load ground truth")
		}

		report := evaluate.Evaluate(outputs, truth)
		fmt.Print(report.Render())
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateOutputs, "outputs", "", "path to extracted shipment records JSON")
	evaluateCmd.Flags().StringVar(&evaluateTruth, "truth", "", "path to ground-truth records JSON")
	evaluateCmd.MarkFlagRequired("outputs") //nolint:errcheck
	evaluateCmd.MarkFlagRequired("truth")   //nolint:errcheck
	rootCmd.AddCommand(evaluateCmd)
}
