package events

import (
	"fmt"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

// ForecastSummary is the event payload of a finished forecast; the full
// point series stays out of the event stream.
type ForecastSummary struct {
	ResultID string                   `json:"result_id"`
	Model    models.ModelType         `json:"model"`
	Horizon  int                      `json:"horizon"`
	Steps    int                      `json:"steps"`
	Metrics  models.EvaluationMetrics `json:"metrics"`
}

func SummarizeResult(r *models.ModelResult) ForecastSummary {
	return ForecastSummary{
		ResultID: r.Metadata.ID,
		Model:    r.Metadata.Type,
		Horizon:  r.Metadata.Horizon,
		Steps:    len(r.Forecast),
		Metrics:  r.Metrics,
	}
}

func (p *Publisher) DatasetUploaded(ds *models.Dataset) {
	msg := fmt.Sprintf("Dataset %s uploaded with %d points", ds.Filename, ds.Info.RowCount)
	event := models.NewEvent(models.EventTypeDatasetUploaded, ds.ID, msg).
		WithData(ds.Summary())
	p.publish(event)
}

func (p *Publisher) ForecastCompleted(result *models.ModelResult) {
	msg := fmt.Sprintf("Forecast %s completed (%d steps)", result.Metadata.Type, len(result.Forecast))
	event := models.NewEvent(models.EventTypeForecastCompleted, result.Metadata.DatasetID, msg).
		WithData(SummarizeResult(result))
	p.publish(event)
}

func (p *Publisher) ComparisonCompleted(datasetID string, results []*models.ModelResult) {
	summaries := make([]ForecastSummary, len(results))
	for i, r := range results {
		summaries[i] = SummarizeResult(r)
	}
	msg := fmt.Sprintf("Compared %d models", len(results))
	event := models.NewEvent(models.EventTypeComparisonCompleted, datasetID, msg).
		WithData(summaries)
	p.publish(event)
}

func (p *Publisher) DataCleared() {
	p.publish(models.NewEvent(models.EventTypeDataCleared, "", "All datasets and results cleared").
		WithSeverity(models.SeverityWarning))
}

func (p *Publisher) Error(datasetID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, datasetID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
