package ingest

import (
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

const (
	FrequencyMinute = "1min"
	FrequencyHour   = "1hour"
	FrequencyDaily  = "daily"
)

// Summarize derives the display summary of a point sequence.
func Summarize(points []models.TimeSeriesPoint, filename string) models.DatasetInfo {
	info := models.DatasetInfo{
		Filename:      filename,
		RowCount:      len(points),
		Frequency:     InferFrequency(points),
		Columns:       []string{"timestamp", "load"},
		MissingValues: CountMissing(points),
		HasLoad:       true,
	}

	if len(points) > 0 {
		info.StartDate = points[0].Timestamp.UTC().Format(time.RFC3339Nano)
		info.EndDate = points[len(points)-1].Timestamp.UTC().Format(time.RFC3339Nano)
	}

	var hasSolar, hasWind bool
	for _, p := range points {
		info.HasTemperature = info.HasTemperature || p.Temperature != nil
		info.HasHumidity = info.HasHumidity || p.Humidity != nil
		hasSolar = hasSolar || p.SolarPower != nil
		hasWind = hasWind || p.WindPower != nil
	}

	if info.HasTemperature {
		info.Columns = append(info.Columns, "temperature")
	}
	if info.HasHumidity {
		info.Columns = append(info.Columns, "humidity")
	}
	if hasSolar {
		info.Columns = append(info.Columns, "solar_power")
	}
	if hasWind {
		info.Columns = append(info.Columns, "wind_power")
	}

	return info
}

// InferFrequency labels the mean spacing between consecutive points. Spacing
// up to and including one hour counts as hourly.
func InferFrequency(points []models.TimeSeriesPoint) string {
	if len(points) < 2 {
		return FrequencyDaily
	}

	first := points[0].Timestamp
	last := points[len(points)-1].Timestamp
	avgMillis := float64(last.Sub(first).Milliseconds()) / float64(len(points)-1)

	switch {
	case avgMillis < 120_000:
		return FrequencyMinute
	case avgMillis <= 3_600_000:
		return FrequencyHour
	default:
		return FrequencyDaily
	}
}
