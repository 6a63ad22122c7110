package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	ForecastCSVHeader = []string{"timestamp", "predicted_load", "actual_load", "lower_bound", "upper_bound"}
	FeatureCSVHeader  = []string{
		"timestamp", "load", "temperature", "humidity",
		"hour", "day_of_week", "month", "is_weekend",
		"lag_1", "lag_24", "lag_168", "rolling_3h", "rolling_24h", "rolling_168h",
	}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func writeForecastCSV(w io.Writer, result *models.ModelResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ForecastCSVHeader); err != nil {
		return err
	}
	for _, p := range result.Forecast {
		if err := cw.Write([]string{
			p.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(p.PredictedLoad),
			formatOptional(p.ActualLoad),
			formatOptional(p.LowerBound),
			formatOptional(p.UpperBound),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFeaturesCSV(w io.Writer, features []models.FeaturePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureCSVHeader); err != nil {
		return err
	}
	for _, f := range features {
		if err := cw.Write([]string{
			f.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(f.Load),
			formatOptional(f.Temperature),
			formatOptional(f.Humidity),
			strconv.Itoa(f.Hour),
			strconv.Itoa(f.DayOfWeek),
			strconv.Itoa(f.Month),
			strconv.FormatBool(f.IsWeekend),
			formatOptional(f.Lag1),
			formatOptional(f.Lag24),
			formatOptional(f.Lag168),
			formatOptional(f.Rolling3h),
			formatOptional(f.Rolling24h),
			formatOptional(f.Rolling168h),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
