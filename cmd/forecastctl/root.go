package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/internal/pipeline"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// options holds the resolved persistent flags shared by every subcommand.
type options struct {
	timezone       string
	minTrainPoints int
	logLevel       string
	color          bool
}

func (o *options) location() (*time.Location, error) {
	if o.timezone == "" || o.timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(o.timezone)
}

func (o *options) forecastOptions() forecast.Options {
	return forecast.Options{MinTrainPoints: o.minTrainPoints}
}

// loadDataset reads path through the same ingestion path the service uses.
func (o *options) loadDataset(path string) (*models.Dataset, error) {
	format, err := ingest.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}

	loc, err := o.location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.timezone, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return pipeline.BuildDataset(f, path, format, loc)
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	opts := &options{}

	root := &cobra.Command{
		Use:           "forecastctl",
		Short:         "Forecast energy load from local CSV or Excel files.",
		Long:          `forecastctl ingests a load time series, trains the forecasting models on it and prints or exports the results.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts.timezone = v.GetString("timezone")
			opts.minTrainPoints = v.GetInt("min-train")
			opts.logLevel = v.GetString("log-level")
			opts.color = v.GetBool("color")

			logger.Setup(opts.logLevel, "development")
			logger.SetOutput(cmd.ErrOrStderr())
			color.NoColor = !opts.color
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("timezone", "Local", "IANA zone used to read naive timestamps")
	flags.Int("min-train", forecast.DefaultMinTrainPoints, "minimum training points required to forecast")
	flags.String("log-level", "warn", "log level")
	flags.Bool("color", true, "colorize table output")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix("FORECASTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newRunCmd(opts), newInfoCmd(opts), newExportCmd(opts))
	return root
}
