// Package loadgen produces synthetic hourly load profiles for demos and tests.
package loadgen

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var ErrInvalidRange = errors.New("days and step must be positive")

type Config struct {
	Pattern Pattern
	Start   time.Time
	Days    int
	Step    time.Duration
	Base    float64
}

// Generate evaluates the pattern on a regular grid starting at cfg.Start.
// Temperature and humidity follow fixed daily curves.
func Generate(cfg Config) ([]models.TimeSeriesPoint, error) {
	if cfg.Days <= 0 || cfg.Step <= 0 {
		return nil, ErrInvalidRange
	}
	if cfg.Pattern == nil {
		cfg.Pattern = &SteadyPattern{}
	}
	if cfg.Base <= 0 {
		cfg.Base = 1000
	}

	end := cfg.Start.Add(time.Duration(cfg.Days) * 24 * time.Hour)
	points := make([]models.TimeSeriesPoint, 0, int(end.Sub(cfg.Start)/cfg.Step))

	for at := cfg.Start; at.Before(end); at = at.Add(cfg.Step) {
		hourAngle := float64(at.Hour()) / 24 * 2 * math.Pi
		temperature := round2(15 - 6*math.Cos(hourAngle))
		humidity := round2(60 + 15*math.Cos(hourAngle))

		points = append(points, models.TimeSeriesPoint{
			Timestamp:   at,
			Load:        round2(math.Max(0, cfg.Pattern.Apply(cfg.Base, at))),
			Temperature: models.Float(temperature),
			Humidity:    models.Float(humidity),
		})
	}
	return points, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CSVHeader is the column set written by WriteCSV.
var CSVHeader = []string{"timestamp", "load_mw", "temperature_c", "humidity"}

func WriteCSV(w io.Writer, points []models.TimeSeriesPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, p := range points {
		record := []string{
			p.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.Load, 'f', -1, 64),
			optional(p.Temperature),
			optional(p.Humidity),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
