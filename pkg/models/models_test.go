package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func TestModelType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		input    models.ModelType
		expected bool
	}{
		{"naive", models.ModelNaive, true},
		{"arima", models.ModelARIMA, true},
		{"prophet", models.ModelProphet, true},
		{"lstm", models.ModelLSTM, true},
		{"hybrid", models.ModelHybrid, true},
		{"empty", "", false},
		{"unknown", "xgboost", false},
		{"case sensitive", "ARIMA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.IsValid())
		})
	}
}

func TestAllModelTypes_Order(t *testing.T) {
	assert.Equal(t, []models.ModelType{
		models.ModelNaive, models.ModelARIMA, models.ModelProphet, models.ModelLSTM, models.ModelHybrid,
	}, models.AllModelTypes())
}

func TestTimeSeriesPoint_HasLoad(t *testing.T) {
	tests := []struct {
		name     string
		load     float64
		expected bool
	}{
		{"positive", 812.5, true},
		{"zero", 0, true},
		{"negative", -3, true},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, models.TimeSeriesPoint{Load: tt.load}.HasLoad())
		})
	}
}

func TestTimeSeriesPoint_Clone(t *testing.T) {
	holiday := true
	p := models.TimeSeriesPoint{
		Timestamp:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Load:        100,
		Temperature: models.Float(12.5),
		IsHoliday:   &holiday,
	}

	c := p.Clone()
	*c.Temperature = 99
	*c.IsHoliday = false

	assert.Equal(t, 12.5, *p.Temperature)
	assert.True(t, *p.IsHoliday)
	assert.Nil(t, c.Humidity)
}

func TestEvent_Builders(t *testing.T) {
	event := models.NewEvent(models.EventTypeForecastCompleted, "ds-1", "done").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]int{"steps": 24}).
		WithTraceID("trace-1")

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeForecastCompleted, event.Type)
	assert.Equal(t, "ds-1", event.DatasetID)
	assert.Equal(t, models.SeverityWarning, event.Severity)
	assert.Equal(t, "trace-1", event.TraceID)
	assert.NotNil(t, event.Data)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Second)
}

func TestDataset_Summary(t *testing.T) {
	ds := &models.Dataset{
		ID:       "ds-1",
		Filename: "grid.csv",
		Info:     models.DatasetInfo{RowCount: 48},
		Points:   make([]models.TimeSeriesPoint, 48),
	}

	s := ds.Summary()
	assert.Equal(t, "ds-1", s.ID)
	assert.Equal(t, "grid.csv", s.Filename)
	assert.Equal(t, 48, s.Info.RowCount)
}
