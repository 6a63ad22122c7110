package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OldStager01/energy-forecaster/internal/export"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		model    string
		horizon  int
		out      string
		features bool
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a forecast or the feature frame of FILE to disk.",
		Long: `Export writes the forecast of one model, or with --features the engineered
feature frame, to --out. The file extension picks the format: .csv or .parquet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if _, err := export.FormatFromPath(out); err != nil {
				return err
			}

			ds, err := opts.loadDataset(args[0])
			if err != nil {
				return err
			}

			if features {
				err = export.WriteFile(out, func(w io.Writer, f export.Format) error {
					return export.WriteFeatures(w, f, ds.Features)
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d feature rows to %s\n", len(ds.Features), out)
				return nil
			}

			t := models.ModelType(model)
			if !t.IsValid() {
				return fmt.Errorf("unknown model %q", model)
			}

			result, err := pipeline.BuildResult(ds, t, horizon, opts.forecastOptions())
			if err != nil {
				return err
			}

			err = export.WriteFile(out, func(w io.Writer, f export.Format) error {
				return export.WriteForecast(w, f, result)
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s forecast rows to %s\n", len(result.Forecast), t, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", string(models.ModelHybrid), "model kind")
	cmd.Flags().IntVar(&horizon, "horizon", 1, "forecast horizon in days (1 or 7)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path ending in .csv or .parquet")
	cmd.Flags().BoolVar(&features, "features", false, "write the feature frame instead of a forecast")
	return cmd
}
