package events_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/events"
	"github.com/OldStager01/energy-forecaster/internal/metrics"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := events.NewEventBus(4)
	defer bus.Close()

	uploads := bus.Subscribe(models.EventTypeDatasetUploaded)
	all := bus.SubscribeAll()

	pub := events.NewPublisher(bus).WithTraceID("trace-1")
	pub.DatasetUploaded(&models.Dataset{ID: "ds-1", Filename: "a.csv"})
	pub.DataCleared()

	ev := receive(t, uploads)
	assert.Equal(t, models.EventTypeDatasetUploaded, ev.Type)
	assert.Equal(t, "ds-1", ev.DatasetID)
	assert.Equal(t, "trace-1", ev.TraceID)

	assert.Equal(t, models.EventTypeDatasetUploaded, receive(t, all).Type)
	cleared := receive(t, all)
	assert.Equal(t, models.EventTypeDataCleared, cleared.Type)
	assert.Equal(t, models.SeverityWarning, cleared.Severity)

	select {
	case ev := <-uploads:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}

func TestEventBus_FullSubscriberDoesNotBlock(t *testing.T) {
	bus := events.NewEventBus(1)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeError)
	pub := events.NewPublisher(bus)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			pub.Error("", "failed", errors.New("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestEventBus_CloseClosesChannels(t *testing.T) {
	bus := events.NewEventBus(1)
	ch := bus.SubscribeAll()
	single := bus.Subscribe(models.EventTypeError)

	bus.Close()
	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)
	_, ok = <-single
	assert.False(t, ok)

	// publishing after close is a no-op
	events.NewPublisher(bus).DataCleared()
}

func TestPublisher_ForecastCompletedSummarises(t *testing.T) {
	bus := events.NewEventBus(2)
	defer bus.Close()
	ch := bus.Subscribe(models.EventTypeForecastCompleted)

	result := &models.ModelResult{
		Metadata: models.ModelMetadata{ID: "r1", DatasetID: "ds", Type: models.ModelLSTM, Horizon: 7},
		Metrics:  models.EvaluationMetrics{MAE: 1},
		Forecast: make([]models.ForecastPoint, 5),
	}
	events.NewPublisher(bus).ForecastCompleted(result)

	ev := receive(t, ch)
	summary, ok := ev.Data.(events.ForecastSummary)
	require.True(t, ok)
	assert.Equal(t, 5, summary.Steps)
	assert.Equal(t, models.ModelLSTM, summary.Model)
	assert.Equal(t, "ds", ev.DatasetID)
}

func TestEventLogger_ProcessesUntilStopped(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	m := metrics.New()
	l := events.NewEventLogger(m, bus.SubscribeAll())
	l.Start()

	events.NewPublisher(bus).DataCleared()

	assert.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(m.Registry(), "energy_forecaster_events_total")
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)

	assert.Contains(t, l.LogToJSON(models.NewEvent(models.EventTypeError, "ds", "boom")), `"dataset_id":"ds"`)

	l.Stop()
}
