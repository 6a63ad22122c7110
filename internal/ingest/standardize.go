package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// Zoned layouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	time.RFC1123Z,
	time.RFC1123,
}

// Local layouts are interpreted in the configured location.
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"01-02-06 15:04",
	"01-02-06",
}

// ParseTimestamp interprets a cell as a point in time. Numbers are epoch
// milliseconds, ISO date-only strings are UTC midnight and zone-less
// date-times are read in loc.
func ParseTimestamp(value interface{}, loc *time.Location) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	case string:
		return parseTimeString(strings.TrimSpace(v), loc)
	}
	return time.Time{}, false
}

func parseTimeString(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// toNumber converts a cell the way a numeric cast would: booleans become 1
// or 0 and unparseable strings become NaN.
func toNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func optionalNumber(value interface{}) *float64 {
	if value == nil {
		return nil
	}
	f := toNumber(value)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Standardize maps rows to points using the detected columns and sorts them
// by time. Rows without a timestamp or load cell, or whose timestamp does not
// parse, are dropped. A load cell that is present but not numeric yields a
// NaN load for Fill to repair.
func Standardize(rows []RawRow, cols Columns, loc *time.Location) []models.TimeSeriesPoint {
	if !cols.Valid() {
		return nil
	}

	points := make([]models.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		rawTS, rawLoad := row[cols.Timestamp], row[cols.Load]
		if rawTS == nil || rawLoad == nil {
			continue
		}

		ts, ok := ParseTimestamp(rawTS, loc)
		if !ok {
			continue
		}

		point := models.TimeSeriesPoint{
			Timestamp: ts.Truncate(time.Millisecond),
			Load:      toNumber(rawLoad),
		}
		if cols.Temperature != "" {
			point.Temperature = optionalNumber(row[cols.Temperature])
		}
		if cols.Humidity != "" {
			point.Humidity = optionalNumber(row[cols.Humidity])
		}

		points = append(points, point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points
}
