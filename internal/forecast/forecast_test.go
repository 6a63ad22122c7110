package forecast_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/features"
	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func engineered(n int, load func(i int) float64) []models.FeaturePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.TimeSeriesPoint, n)
	for i := range points {
		points[i] = models.TimeSeriesPoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Load:      load(i),
		}
	}
	return features.Engineer(points, time.UTC)
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func daily(i int) float64 {
	return 500 + 80*math.Sin(2*math.Pi*float64(i%24)/24) + float64(i)*0.1
}

func TestNew_CoversEveryModelType(t *testing.T) {
	for _, mt := range models.AllModelTypes() {
		t.Run(string(mt), func(t *testing.T) {
			m, err := forecast.New(mt)
			require.NoError(t, err)
			assert.Equal(t, mt, m.Type())
		})
	}

	_, err := forecast.New("svm")
	assert.ErrorIs(t, err, forecast.ErrUnknownModel)
}

func TestSplitAndSteps(t *testing.T) {
	points := engineered(500, constant(1))
	train, test := forecast.Split(points)

	assert.Len(t, train, 400)
	assert.Len(t, test, 100)
	assert.Equal(t, 24, forecast.Steps(1, len(test)))
	assert.Equal(t, 100, forecast.Steps(7, len(test)))
}

func TestRun_NaiveConstantLoad(t *testing.T) {
	points := engineered(30*24, constant(100))

	out, err := forecast.Run(points, models.ModelNaive, 1, forecast.Options{})
	require.NoError(t, err)

	require.Len(t, out.Forecast, 24)
	for _, p := range out.Forecast {
		assert.Equal(t, 100.0, p.PredictedLoad)
		require.NotNil(t, p.ActualLoad)
		assert.Equal(t, 100.0, *p.ActualLoad)
		assert.Nil(t, p.LowerBound)
		assert.Nil(t, p.UpperBound)
	}
	assert.Zero(t, out.Metrics.MAE)
	assert.Zero(t, out.Metrics.RMSE)
	assert.Zero(t, out.Metrics.MAPE)
}

func TestRun_HorizonCappedByTestSet(t *testing.T) {
	points := engineered(500, daily)

	for _, mt := range models.AllModelTypes() {
		t.Run(string(mt), func(t *testing.T) {
			out, err := forecast.Run(points, mt, 7, forecast.Options{})
			require.NoError(t, err)
			assert.Len(t, out.Forecast, 100)
		})
	}
}

func TestRun_AlignsWithTestSplit(t *testing.T) {
	points := engineered(600, daily)
	_, test := forecast.Split(points)

	for _, mt := range models.AllModelTypes() {
		t.Run(string(mt), func(t *testing.T) {
			out, err := forecast.Run(points, mt, 1, forecast.Options{})
			require.NoError(t, err)

			for i, p := range out.Forecast {
				assert.Equal(t, test[i].Timestamp, p.Timestamp)
				require.NotNil(t, p.ActualLoad)
				assert.Equal(t, test[i].Load, *p.ActualLoad)
			}
		})
	}
}

func TestRun_Bands(t *testing.T) {
	points := engineered(600, daily)

	tests := []struct {
		model models.ModelType
		band  float64
	}{
		{models.ModelARIMA, 0.05},
		{models.ModelProphet, 0.07},
		{models.ModelLSTM, 0.08},
		{models.ModelHybrid, 0.09},
	}

	for _, tt := range tests {
		t.Run(string(tt.model), func(t *testing.T) {
			out, err := forecast.Run(points, tt.model, 1, forecast.Options{})
			require.NoError(t, err)

			for _, p := range out.Forecast {
				require.NotNil(t, p.LowerBound)
				require.NotNil(t, p.UpperBound)
				assert.InDelta(t, p.PredictedLoad*(1-tt.band), *p.LowerBound, 1e-9)
				assert.InDelta(t, p.PredictedLoad*(1+tt.band), *p.UpperBound, 1e-9)
			}
		})
	}
}

func TestRun_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		points    []models.FeaturePoint
		model     models.ModelType
		horizon   int
		opts      forecast.Options
		expectErr error
	}{
		{"unknown model", engineered(200, daily), "xgboost", 1, forecast.Options{}, forecast.ErrUnknownModel},
		{"bad horizon", engineered(200, daily), models.ModelNaive, 3, forecast.Options{}, forecast.ErrInvalidHorizon},
		{"too short", engineered(20, daily), models.ModelARIMA, 1, forecast.Options{}, forecast.ErrInsufficientData},
		{"empty", nil, models.ModelNaive, 1, forecast.Options{}, forecast.ErrInsufficientData},
		{"custom minimum", engineered(200, daily), models.ModelNaive, 1, forecast.Options{MinTrainPoints: 500}, forecast.ErrInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := forecast.Run(tt.points, tt.model, tt.horizon, tt.opts)
			assert.ErrorIs(t, err, tt.expectErr)
		})
	}
}

func TestARIMA_FirstStepAndDecay(t *testing.T) {
	// Train of 30 points: the week-ago window is empty, so the seasonal term is 0.
	points := engineered(38, func(i int) float64 { return float64(10 + i) })
	train, test := forecast.Split(points)
	require.Len(t, train, 30)

	m, err := forecast.New(models.ModelARIMA)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, 3)
	require.NoError(t, err)

	last := 39.0
	trend := (39.0 - 16.0) / 24.0
	first := last + trend + (0-last)*0.3
	assert.InDelta(t, first, out[0].PredictedLoad, 1e-9)

	// Phase (30+1)%168 = 31 does not exist in a 30-point train set.
	assert.InDelta(t, first, out[1].PredictedLoad, 1e-9)
}

func TestARIMA_WeeklyPhase(t *testing.T) {
	points := engineered(400, func(i int) float64 { return float64(i % 168) })
	train, test := forecast.Split(points)

	m, err := forecast.New(models.ModelARIMA)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, 2)
	require.NoError(t, err)

	n := len(train)
	phase := (n + 1) % 168
	expected := out[0].PredictedLoad*0.7 + float64(phase)*0.3
	assert.InDelta(t, expected, out[1].PredictedLoad, 1e-9)
}

func TestProphet_FlatSeriesWithWeekend(t *testing.T) {
	points := engineered(30*24, constant(200))
	train, test := forecast.Split(points)

	m, err := forecast.New(models.ModelProphet)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, len(test))
	require.NoError(t, err)

	for i, p := range out {
		expected := 200.0
		if test[i].IsWeekend {
			expected = 190
		}
		assert.InDelta(t, expected, p.PredictedLoad, 1e-9)
	}
}

func TestLSTM_ConstantSeries(t *testing.T) {
	points := engineered(300, constant(50))
	train, test := forecast.Split(points)

	m, err := forecast.New(models.ModelLSTM)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, 48)
	require.NoError(t, err)

	for _, p := range out {
		assert.InDelta(t, 50, p.PredictedLoad, 1e-9)
	}
}

func ramp(i int) float64 {
	return float64(i)
}

func TestProphet_RampSeries(t *testing.T) {
	// 48 train points with load = index, starting Monday 00:00.
	// mean = 23.5, trend = 47/48, hour 0 seen at 0 and 24, hour 1 at 1 and 25.
	points := engineered(60, ramp)
	train, test := forecast.Split(points)
	require.Len(t, train, 48)
	require.False(t, test[0].IsWeekend)

	m, err := forecast.New(models.ModelProphet)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, 2)
	require.NoError(t, err)

	tests := []struct {
		step     int
		expected float64
	}{
		{0, 23.5 + 47.0/48*48 + (12 - 23.5)},
		{1, 23.5 + 47.0/48*49 + (13 - 23.5)},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, out[tt.step].PredictedLoad, 1e-9, "step %d", tt.step)
		assert.InDelta(t, tt.expected*0.93, *out[tt.step].LowerBound, 1e-9)
		assert.InDelta(t, tt.expected*1.07, *out[tt.step].UpperBound, 1e-9)
	}
	assert.InDelta(t, 59.0, out[0].PredictedLoad, 1e-9)
}

func TestLSTM_RampSeries(t *testing.T) {
	// Weights 1..24 sum to 300 and sum k*(k+1) over k=0..23 is 4600, so the
	// weighted mean of a+0..a+23 is (300a+4600)/300.
	points := engineered(60, ramp)
	train, test := forecast.Split(points)
	require.Len(t, train, 48)

	m, err := forecast.New(models.ModelLSTM)
	require.NoError(t, err)
	out, err := m.Forecast(train, test, 2)
	require.NoError(t, err)

	tests := []struct {
		name       string
		step       int
		window     float64
		lag24      float64
		rolling24h float64
	}{
		// Window is train[24:48].
		{"train tail", 0, (300*24 + 4600) / 300.0, 24, 36.5},
		// Window is train[25:48] plus the first test load.
		{"train tail and test prefix", 1, (300*25 + 4600) / 300.0, 25, 37.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point := test[tt.step]
			require.NotNil(t, point.Lag24)
			require.NotNil(t, point.Rolling24h)
			assert.Equal(t, tt.lag24, *point.Lag24)
			assert.InDelta(t, tt.rolling24h, *point.Rolling24h, 1e-9)

			expected := tt.window*0.6 + tt.lag24*0.4
			expected = expected*0.7 + tt.rolling24h*0.3
			assert.InDelta(t, expected, out[tt.step].PredictedLoad, 1e-9)
		})
	}
	assert.InDelta(t, 34.19, out[0].PredictedLoad, 1e-9)
	assert.InDelta(t, 35.19, out[1].PredictedLoad, 1e-9)
}

func TestHybrid_AveragesComponents(t *testing.T) {
	points := engineered(600, daily)
	train, test := forecast.Split(points)

	run := func(mt models.ModelType) []models.ForecastPoint {
		m, err := forecast.New(mt)
		require.NoError(t, err)
		out, err := m.Forecast(train, test, 24)
		require.NoError(t, err)
		return out
	}

	p, l, h := run(models.ModelProphet), run(models.ModelLSTM), run(models.ModelHybrid)
	for i := range h {
		assert.InDelta(t, 0.5*p[i].PredictedLoad+0.5*l[i].PredictedLoad, h[i].PredictedLoad, 1e-9)
		assert.Equal(t, *p[i].ActualLoad, *h[i].ActualLoad)
	}
}
