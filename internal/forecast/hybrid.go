package forecast

import (
	"fmt"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// hybrid averages the prophet and lstm predictions step by step.
type hybrid struct{}

func (hybrid) Type() models.ModelType { return models.ModelHybrid }
func (hybrid) Band() float64          { return 0.09 }

func (m hybrid) Forecast(train, test []models.FeaturePoint, steps int) ([]models.ForecastPoint, error) {
	seasonal, err := prophet{}.Forecast(train, test, steps)
	if err != nil {
		return nil, err
	}
	recurrent, err := lstm{}.Forecast(train, test, steps)
	if err != nil {
		return nil, err
	}

	out := make([]models.ForecastPoint, len(seasonal))
	for i, p := range seasonal {
		if p.ActualLoad == nil {
			return nil, fmt.Errorf("step %d: %w", i, ErrMissingActual)
		}

		prediction := p.PredictedLoad*0.5 + recurrent[i].PredictedLoad*0.5
		out[i] = models.ForecastPoint{
			Timestamp:     p.Timestamp,
			PredictedLoad: prediction,
			ActualLoad:    models.Float(*p.ActualLoad),
			LowerBound:    models.Float(prediction * (1 - m.Band())),
			UpperBound:    models.Float(prediction * (1 + m.Band())),
		}
	}
	return out, nil
}
