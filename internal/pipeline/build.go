package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/OldStager01/energy-forecaster/internal/features"
	"github.com/OldStager01/energy-forecaster/internal/forecast"
	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// BuildDataset parses, prepares and feature-engineers one file into a
// dataset snapshot. It touches no shared state.
func BuildDataset(r io.Reader, filename string, format ingest.Format, loc *time.Location) (*models.Dataset, error) {
	table, err := ingest.Read(r, format)
	if err != nil {
		return nil, err
	}

	prepared, err := ingest.Prepare(table, filename, loc)
	if err != nil {
		return nil, err
	}

	return &models.Dataset{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Info:       prepared.Info,
		Points:     prepared.Points,
		Features:   features.Engineer(prepared.Points, loc),
	}, nil
}

// BuildResult forecasts one model over a dataset and wraps the output with
// its metadata.
func BuildResult(ds *models.Dataset, t models.ModelType, horizon int, opts forecast.Options) (*models.ModelResult, error) {
	if ds == nil || len(ds.Features) == 0 {
		return nil, ErrNoData
	}

	start := time.Now()
	out, err := forecast.Run(ds.Features, t, horizon, opts)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	return &models.ModelResult{
		Metadata: models.ModelMetadata{
			ID:               uuid.NewString(),
			DatasetID:        ds.ID,
			Type:             t,
			Horizon:          horizon,
			TrainedAt:        start.UTC(),
			TrainingDuration: elapsed.Milliseconds(),
			DataPoints:       len(ds.Features),
			Features:         append([]string(nil), models.FeatureNames...),
		},
		Metrics:  out.Metrics,
		Forecast: out.Forecast,
	}, nil
}

// Preview returns at most n leading points of ds.
func Preview(ds *models.Dataset, n int) []models.TimeSeriesPoint {
	if n <= 0 || n > len(ds.Points) {
		n = len(ds.Points)
	}
	return ds.Points[:n]
}

func describe(t models.ModelType, horizon int) string {
	return fmt.Sprintf("%s/%dd", t, horizon)
}
