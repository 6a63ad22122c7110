// Package evaluation scores forecasts against observed loads.
package evaluation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// Calculate returns MAE, RMSE and MAPE. MAPE only averages over points whose
// actual value is non-zero. Empty or mismatched inputs yield zero metrics.
func Calculate(actual, predicted []float64) models.EvaluationMetrics {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return models.EvaluationMetrics{}
	}

	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)

	abs := make([]float64, len(diff))
	for i, d := range diff {
		abs[i] = math.Abs(d)
	}

	var pct []float64
	for i, a := range actual {
		if a != 0 {
			pct = append(pct, math.Abs(diff[i]/a)*100)
		}
	}

	metrics := models.EvaluationMetrics{
		MAE:  stat.Mean(abs, nil),
		RMSE: math.Sqrt(floats.Dot(diff, diff) / float64(len(diff))),
	}
	if len(pct) > 0 {
		metrics.MAPE = stat.Mean(pct, nil)
	}

	return metrics
}

// FromForecast scores the points that carry an actual value.
func FromForecast(points []models.ForecastPoint) models.EvaluationMetrics {
	actual := make([]float64, 0, len(points))
	predicted := make([]float64, 0, len(points))
	for _, p := range points {
		if p.ActualLoad == nil {
			continue
		}
		actual = append(actual, *p.ActualLoad)
		predicted = append(predicted, p.PredictedLoad)
	}
	return Calculate(actual, predicted)
}
