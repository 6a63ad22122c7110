package forecast

import "github.com/OldStager01/energy-forecaster/pkg/models"

// naive repeats the last training load.
type naive struct{}

func (naive) Type() models.ModelType { return models.ModelNaive }
func (naive) Band() float64          { return 0 }

func (m naive) Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error) {
	last := train[len(train)-1].Load

	out := make([]models.ForecastPoint, steps)
	for i := range out {
		out[i] = newPoint(test[i], last, m.Band())
	}
	return out, nil
}
