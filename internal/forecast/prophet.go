package forecast

import (
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

const weekendDip = 0.05

// prophet adds a linear trend, an hour-of-day profile and a weekend dip to
// the training mean.
type prophet struct{}

func (prophet) Type() models.ModelType { return models.ModelProphet }
func (prophet) Band() float64          { return 0.07 }

func (m prophet) Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error) {
	trainLoads := loads(train)
	n := len(trainLoads)

	var hourly [HoursPerDay]float64
	var counts [HoursPerDay]int
	for _, p := range train {
		hourly[p.Hour] += p.Load
		counts[p.Hour]++
	}
	for h := range hourly {
		if counts[h] > 0 {
			hourly[h] /= float64(counts[h])
		}
	}

	mean := stat.Mean(trainLoads, nil)
	trend := (trainLoads[n-1] - trainLoads[0]) / float64(n)

	out := make([]models.ForecastPoint, steps)
	for i := 0; i < steps; i++ {
		point := test[i]

		prediction := mean + trend*float64(n+i) + (hourly[point.Hour] - mean)
		if point.IsWeekend {
			prediction -= mean * weekendDip
		}

		out[i] = newPoint(point, prediction, m.Band())
	}
	return out, nil
}
