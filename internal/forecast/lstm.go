package forecast

import "github.com/OldStager01/energy-forecaster/pkg/models"

const lstmSequence = 24

// lstm takes a linearly weighted mean of the trailing day of observed loads,
// then blends in the point's lag_24 and rolling_24h features when present.
type lstm struct{}

func (lstm) Type() models.ModelType { return models.ModelLSTM }
func (lstm) Band() float64          { return 0.08 }

func (m lstm) Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error) {
	trainLoads := loads(train)
	testLoads := loads(test)
	n := len(trainLoads)

	out := make([]models.ForecastPoint, steps)
	for i := 0; i < steps; i++ {
		start := min(n, max(0, n-lstmSequence+i))
		seq := append(append([]float64{}, trainLoads[start:]...), testLoads[:i]...)
		if len(seq) > lstmSequence {
			seq = seq[len(seq)-lstmSequence:]
		}

		prediction := 0.0
		if len(seq) > 0 {
			prediction = linearWeightedMean(seq)

			point := test[i]
			if point.Lag24 != nil {
				prediction = prediction*0.6 + *point.Lag24*0.4
			}
			if point.Rolling24h != nil {
				prediction = prediction*0.7 + *point.Rolling24h*0.3
			}
		}

		out[i] = newPoint(test[i], prediction, m.Band())
	}
	return out, nil
}

// linearWeightedMean weights value k by k+1, so the newest value counts most.
func linearWeightedMean(values []float64) float64 {
	var weighted, weights float64
	for k, v := range values {
		w := float64(k+1) / float64(len(values))
		weighted += v * w
		weights += w
	}
	return weighted / weights
}
