package ingest_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func TestParseCSV_TypesCells(t *testing.T) {
	csv := "timestamp,load,flag,note\n2024-01-01T00:00:00Z,1.5e2,true,x\n\n2024-01-01T01:00:00Z,,false,\n"

	table, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"timestamp", "load", "flag", "note"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 150.0, table.Rows[0]["load"])
	assert.Equal(t, true, table.Rows[0]["flag"])
	assert.Equal(t, "x", table.Rows[0]["note"])
	assert.Nil(t, table.Rows[1]["load"])
	assert.Equal(t, false, table.Rows[1]["flag"])
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	table, err := ingest.ParseCSV(strings.NewReader("timestamp,load\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		expected ingest.Columns
		valid    bool
	}{
		{
			name:    "typical headers",
			headers: []string{"Timestamp", "Load_MW", "Temp_C"},
			expected: ingest.Columns{
				Timestamp:   "Timestamp",
				Load:        "Load_MW",
				Temperature: "Temp_C",
			},
			valid: true,
		},
		{
			name:    "first match wins in header order",
			headers: []string{"Date", "Time", "Demand", "Power", "Humidity"},
			expected: ingest.Columns{
				Timestamp: "Date",
				Load:      "Demand",
				Humidity:  "Humidity",
			},
			valid: true,
		},
		{
			name:     "missing load",
			headers:  []string{"datetime", "temperature"},
			expected: ingest.Columns{Timestamp: "datetime", Temperature: "temperature"},
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := ingest.DetectColumns(tt.headers)
			assert.Equal(t, tt.expected, cols)
			assert.Equal(t, tt.valid, cols.Valid())
		})
	}
}

func TestStandardize_SortsAndDrops(t *testing.T) {
	rows := []ingest.RawRow{
		{"ts": "2024-01-01T02:00:00Z", "load": 3.0, "temp": 10.0},
		{"ts": "not a date", "load": 9.0},
		{"ts": "2024-01-01T00:00:00Z", "load": 1.0, "temp": nil},
		{"ts": nil, "load": 5.0},
		{"ts": "2024-01-01T01:00:00Z", "load": nil},
		{"ts": "2024-01-01T01:30:00Z", "load": "n/a"},
	}
	cols := ingest.Columns{Timestamp: "ts", Load: "load", Temperature: "temp"}

	points := ingest.Standardize(rows, cols, time.UTC)

	require.Len(t, points, 3)
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].Timestamp.Before(points[i-1].Timestamp))
	}
	assert.Equal(t, 1.0, points[0].Load)
	assert.Nil(t, points[0].Temperature)
	assert.True(t, math.IsNaN(points[1].Load))
	require.NotNil(t, points[2].Temperature)
	assert.Equal(t, 10.0, *points[2].Temperature)
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	tests := []struct {
		name     string
		value    interface{}
		expected time.Time
		ok       bool
	}{
		{"rfc3339", "2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"offset", "2024-03-01T10:00:00+02:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), true},
		{"date only is utc", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"zoneless uses location", "2024-03-01 10:00:00", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), true},
		{"epoch millis", 1709287200000.0, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), true},
		{"garbage", "yesterday", time.Time{}, false},
		{"zero number", 0.0, time.Time{}, false},
		{"bool", true, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ingest.ParseTimestamp(tt.value, loc)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.expected.Equal(ts), "got %s", ts)
			}
		})
	}
}

func series(loads ...float64) []models.TimeSeriesPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.TimeSeriesPoint, len(loads))
	for i, l := range loads {
		points[i] = models.TimeSeriesPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Load: l}
	}
	return points
}

func loadsOf(points []models.TimeSeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Load
	}
	return out
}

func TestFill(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name     string
		input    []float64
		expected []float64
	}{
		{"interior gap averages neighbours", []float64{10, nan, 20}, []float64{10, 15, 20}},
		{"leading gap copies next", []float64{nan, nan, 7}, []float64{7, 7, 7}},
		{"trailing gap copies previous", []float64{4, nan}, []float64{4, 4}},
		{"repaired point feeds later gaps", []float64{5, nan, nan, 15}, []float64{5, 10, 12.5, 15}},
		{"no gaps unchanged", []float64{1, 2, 3}, []float64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := series(tt.input...)
			filled := ingest.Fill(input)
			assert.Equal(t, tt.expected, loadsOf(filled))
		})
	}
}

func TestFill_AllMissingStaysMissing(t *testing.T) {
	filled := ingest.Fill(series(math.NaN(), math.NaN()))
	assert.Equal(t, 2, ingest.CountMissing(filled))
}

func TestFill_DoesNotMutateInput(t *testing.T) {
	input := series(1, math.NaN(), 3)
	temp := 21.0
	input[0].Temperature = &temp

	filled := ingest.Fill(input)
	*filled[0].Temperature = 99

	assert.True(t, math.IsNaN(input[1].Load))
	assert.Equal(t, 21.0, *input[0].Temperature)
}

func TestFill_Idempotent(t *testing.T) {
	nan := math.NaN()
	once := ingest.Fill(series(nan, 3, nan, nan, 9, nan))
	twice := ingest.Fill(once)
	assert.Equal(t, loadsOf(once), loadsOf(twice))
}

func TestInferFrequency(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	spaced := func(step time.Duration, n int) []models.TimeSeriesPoint {
		points := make([]models.TimeSeriesPoint, n)
		for i := range points {
			points[i] = models.TimeSeriesPoint{Timestamp: start.Add(time.Duration(i) * step), Load: 1}
		}
		return points
	}

	tests := []struct {
		name     string
		points   []models.TimeSeriesPoint
		expected string
	}{
		{"one minute", spaced(time.Minute, 10), ingest.FrequencyMinute},
		{"one hour", spaced(time.Hour, 10), ingest.FrequencyHour},
		{"fifteen minutes", spaced(15*time.Minute, 10), ingest.FrequencyHour},
		{"one day", spaced(24*time.Hour, 10), ingest.FrequencyDaily},
		{"single point", spaced(time.Hour, 1), ingest.FrequencyDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ingest.InferFrequency(tt.points))
		})
	}
}

func TestSummarize(t *testing.T) {
	points := series(1, math.NaN(), 3)
	hum := 40.0
	points[2].Humidity = &hum

	info := ingest.Summarize(points, "grid.csv")

	assert.Equal(t, "grid.csv", info.Filename)
	assert.Equal(t, 3, info.RowCount)
	assert.Equal(t, "2024-01-01T00:00:00Z", info.StartDate)
	assert.Equal(t, "2024-01-01T02:00:00Z", info.EndDate)
	assert.Equal(t, 1, info.MissingValues)
	assert.Equal(t, []string{"timestamp", "load", "humidity"}, info.Columns)
	assert.True(t, info.HasLoad)
	assert.True(t, info.HasHumidity)
	assert.False(t, info.HasTemperature)
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		expectErr error
	}{
		{"empty file", "", ingest.ErrEmptyFile},
		{"undetectable columns", "a,b\n1,2\n", ingest.ErrColumnsNotDetected},
		{"no valid rows", "timestamp,load\nbad,1\n", ingest.ErrNoValidRows},
		{"no valid load", "timestamp,load\n2024-01-01,x\n2024-01-02,y\n", ingest.ErrNoValidLoad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ingest.ParseCSV(strings.NewReader(tt.csv))
			require.NoError(t, err)

			_, err = ingest.Prepare(table, "f.csv", time.UTC)
			assert.ErrorIs(t, err, tt.expectErr)
		})
	}
}

func TestPrepare_FillsAndSummarises(t *testing.T) {
	csv := "Timestamp,Load_MW,Temp_C\n" +
		"2024-01-01T02:00:00Z,30,5\n" +
		"2024-01-01T00:00:00Z,10,4\n" +
		"2024-01-01T01:00:00Z,n/a,4.5\n" +
		"2024-01-01T03:00:00Z,,4.5\n"

	table, err := ingest.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	prepared, err := ingest.Prepare(table, "grid.csv", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 30}, loadsOf(prepared.Points))
	assert.Equal(t, "Temp_C", prepared.Columns.Temperature)
	assert.Equal(t, 3, prepared.Info.RowCount)
	assert.Equal(t, 1, prepared.Info.MissingValues)
	assert.Equal(t, ingest.FrequencyHour, prepared.Info.Frequency)
	assert.True(t, prepared.Info.HasTemperature)
}

func TestFormatFromFilename(t *testing.T) {
	f, err := ingest.FormatFromFilename("Load.XLSX")
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatXLSX, f)

	f, err = ingest.FormatFromFilename("load.csv")
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatCSV, f)

	_, err = ingest.FormatFromFilename("load.pdf")
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
}
