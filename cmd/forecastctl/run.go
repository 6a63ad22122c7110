package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

const modelAll = "all"

// modelsFor expands "all" into every model kind.
func modelsFor(name string) ([]models.ModelType, error) {
	if name == modelAll {
		return models.AllModelTypes(), nil
	}
	t := models.ModelType(name)
	if !t.IsValid() {
		return nil, fmt.Errorf("unknown model %q, expected one of %v or %q", name, models.AllModelTypes(), modelAll)
	}
	return []models.ModelType{t}, nil
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		model   string
		horizon int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Train and evaluate models on FILE.",
		Long: `Run ingests FILE, trains the selected model (or every model with --model all)
and reports MAE, RMSE, MAPE and R² against the held-out test split.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := modelsFor(model)
			if err != nil {
				return err
			}

			ds, err := opts.loadDataset(args[0])
			if err != nil {
				return err
			}

			results := make([]*models.ModelResult, 0, len(kinds))
			for _, t := range kinds {
				result, err := pipeline.BuildResult(ds, t, horizon, opts.forecastOptions())
				if err != nil {
					return fmt.Errorf("%s: %w", t, err)
				}
				results = append(results, result)
			}

			w := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "csv":
				return writeMetricsCSV(w, results)
			case "table":
				return writeMetricsTable(w, results)
			}
			return fmt.Errorf("unknown output format %q", output)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", modelAll, "model kind or \"all\"")
	cmd.Flags().IntVar(&horizon, "horizon", 1, "forecast horizon in days (1 or 7)")
	cmd.Flags().StringVarP(&output, "format", "f", "table", "output format: table, json or csv")
	return cmd
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print the dataset summary of FILE.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.loadDataset(args[0])
			if err != nil {
				return err
			}
			return writeInfoTable(cmd.OutOrStdout(), ds.Info)
		},
	}
}
