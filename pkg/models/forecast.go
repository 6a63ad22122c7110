package models

import "time"

// ModelType is the closed set of forecasting heuristics.
type ModelType string

const (
	ModelNaive   ModelType = "naive"
	ModelARIMA   ModelType = "arima"
	ModelProphet ModelType = "prophet"
	ModelLSTM    ModelType = "lstm"
	ModelHybrid  ModelType = "hybrid"
)

// AllModelTypes lists every model in comparison order.
func AllModelTypes() []ModelType {
	return []ModelType{ModelNaive, ModelARIMA, ModelProphet, ModelLSTM, ModelHybrid}
}

func (t ModelType) IsValid() bool {
	switch t {
	case ModelNaive, ModelARIMA, ModelProphet, ModelLSTM, ModelHybrid:
		return true
	}
	return false
}

// FeatureNames is reported in every result's metadata.
var FeatureNames = []string{"hour", "day_of_week", "month", "lag_1", "lag_24", "lag_168", "rolling_24h"}

type ForecastPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	PredictedLoad float64   `json:"predicted_load"`
	ActualLoad    *float64  `json:"actual_load,omitempty"`
	LowerBound    *float64  `json:"lower_bound,omitempty"`
	UpperBound    *float64  `json:"upper_bound,omitempty"`
}

type EvaluationMetrics struct {
	MAE  float64  `json:"mae"`
	RMSE float64  `json:"rmse"`
	MAPE float64  `json:"mape"`
	R2   *float64 `json:"r2,omitempty"`
}

type ModelMetadata struct {
	ID               string    `json:"id"`
	DatasetID        string    `json:"datasetId,omitempty"`
	Type             ModelType `json:"type"`
	Horizon          int       `json:"horizon"`
	TrainedAt        time.Time `json:"trainedAt"`
	TrainingDuration int64     `json:"trainingDuration"`
	DataPoints       int       `json:"dataPoints"`
	Features         []string  `json:"features"`
}

// ModelResult is immutable once created.
type ModelResult struct {
	Metadata ModelMetadata     `json:"metadata"`
	Metrics  EvaluationMetrics `json:"metrics"`
	Forecast []ForecastPoint   `json:"forecast"`
}
