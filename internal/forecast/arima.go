package forecast

import (
	"gonum.org/v1/gonum/floats"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

const (
	weekHours      = 168
	arimaTrendSpan = 24
)

// arima starts from the last training load nudged by the recent trend and
// the same hours one week back, then decays each step towards the mean of
// training points at the same position in the weekly cycle.
type arima struct{}

func (arima) Type() models.ModelType { return models.ModelARIMA }
func (arima) Band() float64          { return 0.05 }

func (m arima) Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error) {
	trainLoads := loads(train)
	n := len(trainLoads)
	last := trainLoads[n-1]

	out := make([]models.ForecastPoint, steps)
	prev := 0.0
	for i := 0; i < steps; i++ {
		var prediction float64
		if i == 0 {
			recent := trainLoads[max(0, n-arimaTrendSpan):]
			trend := (recent[len(recent)-1] - recent[0]) / float64(len(recent))

			// Always divided by a full day even when fewer points exist.
			weekAgo := trainLoads[max(0, n-weekHours):max(0, n-weekHours+arimaTrendSpan)]
			seasonal := floats.Sum(weekAgo) / HoursPerDay

			prediction = last + trend + (seasonal-last)*0.3
		} else {
			seasonal := weeklyPhaseMean(trainLoads, (n+i)%weekHours, prev)
			prediction = prev*0.7 + seasonal*0.3
		}

		out[i] = newPoint(test[i], prediction, m.Band())
		prev = prediction
	}
	return out, nil
}

// weeklyPhaseMean averages loads whose index falls on phase within the
// weekly cycle, or returns fallback when none do.
func weeklyPhaseMean(loads []float64, phase int, fallback float64) float64 {
	sum, count := 0.0, 0
	for idx := phase; idx < len(loads); idx += weekHours {
		sum += loads[idx]
		count++
	}
	if count == 0 {
		return fallback
	}
	return sum / float64(count)
}
