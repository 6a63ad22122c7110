// Package forecast implements the point-forecast heuristics. Every model sees
// the same chronological 80/20 train/test split and predicts the first
// min(horizon*24, len(test)) test steps.
package forecast

import (
	"errors"
	"fmt"

	"github.com/OldStager01/energy-forecaster/internal/evaluation"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	ErrUnknownModel     = errors.New("unknown model type")
	ErrInvalidHorizon   = errors.New("horizon must be 1 or 7 days")
	ErrInsufficientData = errors.New("not enough data to forecast")
	ErrMissingActual    = errors.New("forecast point is missing its actual load")
)

const (
	TrainRatio            = 0.8
	HoursPerDay           = 24
	DefaultMinTrainPoints = 24
)

// Model is one forecasting heuristic.
type Model interface {
	Type() models.ModelType
	// Band is the symmetric confidence band as a fraction of the
	// prediction; zero means the model reports no band.
	Band() float64
	Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error)
}

// New returns the model for t. Adding a ModelType without a case here fails
// TestNew_CoversEveryModelType.
func New(t models.ModelType) (Model, error) {
	switch t {
	case models.ModelNaive:
		return naive{}, nil
	case models.ModelARIMA:
		return arima{}, nil
	case models.ModelProphet:
		return prophet{}, nil
	case models.ModelLSTM:
		return lstm{}, nil
	case models.ModelHybrid:
		return hybrid{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, t)
}

// ValidHorizon reports whether days is a supported horizon.
func ValidHorizon(days int) bool {
	return days == 1 || days == 7
}

// Split partitions points at floor(0.8*n). The halves share the backing
// array with points and must be treated as read-only.
func Split(points []models.FeaturePoint) (train, test []models.FeaturePoint) {
	trainSize := int(float64(len(points)) * TrainRatio)
	return points[:trainSize], points[trainSize:]
}

// Steps is the number of test points a horizon covers.
func Steps(horizonDays, testLen int) int {
	return min(horizonDays*HoursPerDay, testLen)
}

type Options struct {
	MinTrainPoints int
}

func (o Options) minTrain() int {
	if o.MinTrainPoints > 0 {
		return o.MinTrainPoints
	}
	return DefaultMinTrainPoints
}

type Output struct {
	Forecast []models.ForecastPoint
	Metrics  models.EvaluationMetrics
}

// Run splits points, forecasts with the requested model and scores the
// result against the test split.
func Run(points []models.FeaturePoint, t models.ModelType, horizonDays int, opts Options) (*Output, error) {
	model, err := New(t)
	if err != nil {
		return nil, err
	}
	if !ValidHorizon(horizonDays) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}

	train, test := Split(points)
	if len(train) < opts.minTrain() || len(test) == 0 {
		return nil, fmt.Errorf("%w: %d training and %d test points, need at least %d and 1",
			ErrInsufficientData, len(train), len(test), opts.minTrain())
	}

	fc, err := model.Forecast(train, test, Steps(horizonDays, len(test)))
	if err != nil {
		return nil, fmt.Errorf("%s forecast: %w", t, err)
	}

	actual := make([]float64, len(fc))
	predicted := make([]float64, len(fc))
	for i, p := range fc {
		if p.ActualLoad == nil {
			return nil, fmt.Errorf("%s forecast step %d: %w", t, i, ErrMissingActual)
		}
		actual[i] = *p.ActualLoad
		predicted[i] = p.PredictedLoad
	}

	return &Output{
		Forecast: fc,
		Metrics:  evaluation.Calculate(actual, predicted),
	}, nil
}

func newPoint(at models.FeaturePoint, prediction, band float64) models.ForecastPoint {
	p := models.ForecastPoint{
		Timestamp:     at.Timestamp,
		PredictedLoad: prediction,
		ActualLoad:    models.Float(at.Load),
	}
	if band > 0 {
		p.LowerBound = models.Float(prediction * (1 - band))
		p.UpperBound = models.Float(prediction * (1 + band))
	}
	return p
}

func loads(points []models.FeaturePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Load
	}
	return out
}
