// Package export writes forecasts and feature frames as Parquet or CSV
// using github.com/parquet-go/parquet-go for the columnar format.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from the output file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (f Format) ContentType() string {
	if f == FormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv"
}

// ForecastRow is one forecast step of a model result.
type ForecastRow struct {
	DatasetID     string    `parquet:"dataset_id,snappy,dict"`
	Model         string    `parquet:"model,snappy,dict"`
	Timestamp     time.Time `parquet:"timestamp,snappy"`
	PredictedLoad float64   `parquet:"predicted_load,snappy"`
	ActualLoad    *float64  `parquet:"actual_load,optional,snappy"`
	LowerBound    *float64  `parquet:"lower_bound,optional,snappy"`
	UpperBound    *float64  `parquet:"upper_bound,optional,snappy"`
}

// FeatureRow is one engineered feature point.
type FeatureRow struct {
	Timestamp   time.Time `parquet:"timestamp,snappy"`
	Load        float64   `parquet:"load,snappy"`
	Temperature *float64  `parquet:"temperature,optional,snappy"`
	Humidity    *float64  `parquet:"humidity,optional,snappy"`
	Hour        int32     `parquet:"hour,snappy"`
	DayOfWeek   int32     `parquet:"day_of_week,snappy"`
	Month       int32     `parquet:"month,snappy"`
	IsWeekend   bool      `parquet:"is_weekend,snappy"`
	HourSin     float64   `parquet:"hour_sin,snappy"`
	HourCos     float64   `parquet:"hour_cos,snappy"`
	DaySin      float64   `parquet:"day_sin,snappy"`
	DayCos      float64   `parquet:"day_cos,snappy"`
	MonthSin    float64   `parquet:"month_sin,snappy"`
	MonthCos    float64   `parquet:"month_cos,snappy"`
	Lag1        *float64  `parquet:"lag_1,optional,snappy"`
	Lag24       *float64  `parquet:"lag_24,optional,snappy"`
	Lag168      *float64  `parquet:"lag_168,optional,snappy"`
	Rolling3h   *float64  `parquet:"rolling_3h,optional,snappy"`
	Rolling24h  *float64  `parquet:"rolling_24h,optional,snappy"`
	Rolling168h *float64  `parquet:"rolling_168h,optional,snappy"`
}

func ForecastRows(result *models.ModelResult) []ForecastRow {
	rows := make([]ForecastRow, len(result.Forecast))
	for i, p := range result.Forecast {
		rows[i] = ForecastRow{
			DatasetID:     result.Metadata.DatasetID,
			Model:         string(result.Metadata.Type),
			Timestamp:     p.Timestamp.UTC(),
			PredictedLoad: p.PredictedLoad,
			ActualLoad:    p.ActualLoad,
			LowerBound:    p.LowerBound,
			UpperBound:    p.UpperBound,
		}
	}
	return rows
}

func FeatureRows(features []models.FeaturePoint) []FeatureRow {
	rows := make([]FeatureRow, len(features))
	for i, f := range features {
		rows[i] = FeatureRow{
			Timestamp:   f.Timestamp.UTC(),
			Load:        f.Load,
			Temperature: f.Temperature,
			Humidity:    f.Humidity,
			Hour:        int32(f.Hour),
			DayOfWeek:   int32(f.DayOfWeek),
			Month:       int32(f.Month),
			IsWeekend:   f.IsWeekend,
			HourSin:     f.HourSin,
			HourCos:     f.HourCos,
			DaySin:      f.DaySin,
			DayCos:      f.DayCos,
			MonthSin:    f.MonthSin,
			MonthCos:    f.MonthCos,
			Lag1:        f.Lag1,
			Lag24:       f.Lag24,
			Lag168:      f.Lag168,
			Rolling3h:   f.Rolling3h,
			Rolling24h:  f.Rolling24h,
			Rolling168h: f.Rolling168h,
		}
	}
	return rows
}

func writeParquet[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet: %w", err)
	}
	return nil
}

func WriteForecast(w io.Writer, format Format, result *models.ModelResult) error {
	switch format {
	case FormatParquet:
		return writeParquet(w, ForecastRows(result))
	case FormatCSV:
		return writeForecastCSV(w, result)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func WriteFeatures(w io.Writer, format Format, features []models.FeaturePoint) error {
	switch format {
	case FormatParquet:
		return writeParquet(w, FeatureRows(features))
	case FormatCSV:
		return writeFeaturesCSV(w, features)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// WriteFile creates path and hands it to write with the format implied by
// its extension.
func WriteFile(path string, write func(io.Writer, Format) error) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := write(file, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
