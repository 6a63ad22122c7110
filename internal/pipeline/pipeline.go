// Package pipeline runs uploads and forecasts end to end: parse, prepare,
// engineer, store, forecast, store, publish.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/energy-forecaster/internal/events"
	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/internal/metrics"
	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	ErrNoData         = errors.New("no data available, please upload data first")
	ErrNoSource       = errors.New("remote dataset source is not configured")
	ErrMissingModel   = errors.New("model type and horizon are required")
	ErrMissingHorizon = errors.New("horizon is required")
)

type Config struct {
	Location       *time.Location
	MinTrainPoints int
	PreviewRows    int
}

type Pipeline struct {
	config    Config
	store     store.Store
	publisher *events.Publisher
	metrics   *metrics.Metrics
	fetcher   ingest.Fetcher
}

func New(cfg Config, st store.Store, publisher *events.Publisher, m *metrics.Metrics) *Pipeline {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 100
	}
	if m == nil {
		m = metrics.Get()
	}
	return &Pipeline{
		config:    cfg,
		store:     st,
		publisher: publisher,
		metrics:   m,
	}
}

// WithFetcher enables IngestURL.
func (p *Pipeline) WithFetcher(f ingest.Fetcher) *Pipeline {
	p.fetcher = f
	return p
}

func (p *Pipeline) Store() store.Store {
	return p.store
}

func (p *Pipeline) publisherFor(ctx context.Context) *events.Publisher {
	if p.publisher == nil {
		return nil
	}
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		return p.publisher.WithTraceID(traceID)
	}
	return p.publisher
}

func (p *Pipeline) forecastOptions() forecast.Options {
	return forecast.Options{MinTrainPoints: p.config.MinTrainPoints}
}

type IngestResult struct {
	Dataset *models.Dataset
	Preview []models.TimeSeriesPoint
}

// Ingest builds a dataset from an uploaded file and stores it as the latest.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader, filename string) (*IngestResult, error) {
	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		p.metrics.ObserveIngest(0, err)
		return nil, err
	}

	ds, err := BuildDataset(r, filename, format, p.config.Location)
	if err != nil {
		p.metrics.ObserveIngest(0, err)
		logger.WarnCtxf(ctx, "Upload of %s rejected: %v", filename, err)
		return nil, err
	}

	if err := p.store.SaveDataset(ctx, ds); err != nil {
		p.metrics.ObserveIngest(0, err)
		p.publisherFor(ctx).Error(ds.ID, "Failed to store dataset", err)
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	p.metrics.ObserveIngest(ds.Info.RowCount, nil)
	p.publisherFor(ctx).DatasetUploaded(ds)

	logger.WithDataset(ds.ID).WithFields(map[string]interface{}{
		"filename":  ds.Filename,
		"rows":      ds.Info.RowCount,
		"frequency": ds.Info.Frequency,
		"filled":    ds.Info.MissingValues,
	}).Info("Dataset stored")

	return &IngestResult{
		Dataset: ds,
		Preview: Preview(ds, p.config.PreviewRows),
	}, nil
}

// IngestURL downloads a dataset through the configured fetcher and ingests it.
func (p *Pipeline) IngestURL(ctx context.Context, rawURL string) (*IngestResult, error) {
	if p.fetcher == nil {
		return nil, ErrNoSource
	}

	remote, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		p.metrics.ObserveIngest(0, err)
		return nil, err
	}
	return p.Ingest(ctx, bytes.NewReader(remote.Body), remote.Filename)
}

func (p *Pipeline) resolve(ctx context.Context, datasetID string) (*models.Dataset, error) {
	ds, err := store.ResolveDataset(ctx, p.store, datasetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return ds, nil
}

// Dataset returns the dataset with id, or the latest when id is empty.
func (p *Pipeline) Dataset(ctx context.Context, datasetID string) (*models.Dataset, error) {
	return p.resolve(ctx, datasetID)
}

func (p *Pipeline) run(ctx context.Context, ds *models.Dataset, t models.ModelType, horizon int) (*models.ModelResult, error) {
	start := time.Now()
	result, err := BuildResult(ds, t, horizon, p.forecastOptions())
	if err != nil {
		p.metrics.ObserveForecast(string(t), time.Since(start), 0, 0, 0, err)
		logger.WithModel(ds.ID, string(t)).Warnf("Forecast %s failed: %v", describe(t, horizon), err)
		return nil, err
	}

	m := result.Metrics
	p.metrics.ObserveForecast(string(t), time.Since(start), m.MAE, m.RMSE, m.MAPE, nil)
	logger.WithModel(ds.ID, string(t)).WithFields(map[string]interface{}{
		"horizon":     horizon,
		"steps":       len(result.Forecast),
		"mae":         m.MAE,
		"rmse":        m.RMSE,
		"mape":        m.MAPE,
		"duration_ms": result.Metadata.TrainingDuration,
	}).Info("Forecast completed")

	return result, nil
}

// Predict forecasts one model over the resolved dataset and stores the
// result as the latest.
func (p *Pipeline) Predict(ctx context.Context, datasetID string, t models.ModelType, horizon int) (*models.ModelResult, error) {
	ds, err := p.resolve(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	result, err := p.run(ctx, ds, t, horizon)
	if err != nil {
		p.publisherFor(ctx).Error(ds.ID, fmt.Sprintf("Forecast %s failed", t), err)
		return nil, err
	}

	if err := p.store.SaveModelResult(ctx, result); err != nil {
		p.publisherFor(ctx).Error(ds.ID, "Failed to store model result", err)
		return nil, fmt.Errorf("failed to store model result: %w", err)
	}

	p.publisherFor(ctx).ForecastCompleted(result)
	return result, nil
}

// PredictAll runs every model kind concurrently against one dataset
// snapshot. Results come back in AllModelTypes order and are not stored.
func (p *Pipeline) PredictAll(ctx context.Context, datasetID string, horizon int) ([]*models.ModelResult, error) {
	if !forecast.ValidHorizon(horizon) {
		return nil, fmt.Errorf("%w: got %d", forecast.ErrInvalidHorizon, horizon)
	}

	ds, err := p.resolve(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	kinds := models.AllModelTypes()
	results := make([]*models.ModelResult, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.run(gctx, ds, t, horizon)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.publisherFor(ctx).Error(ds.ID, "Model comparison failed", err)
		return nil, err
	}

	p.publisherFor(ctx).ComparisonCompleted(ds.ID, results)
	return results, nil
}

// LatestResult returns the newest stored result for datasetID, or overall.
func (p *Pipeline) LatestResult(ctx context.Context, datasetID string) (*models.ModelResult, error) {
	return p.store.LatestModelResult(ctx, datasetID)
}

// Clear drops every dataset and model result.
func (p *Pipeline) Clear(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	p.publisherFor(ctx).DataCleared()
	logger.InfoCtx(ctx, "All datasets and results cleared")
	return nil
}
