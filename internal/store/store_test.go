package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/store"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

func newDataset(name string, uploaded time.Time) *models.Dataset {
	points := []models.TimeSeriesPoint{
		{Timestamp: uploaded.Add(-2 * time.Hour), Load: 10},
		{Timestamp: uploaded.Add(-time.Hour), Load: 12},
	}
	return &models.Dataset{
		ID:         models.NewUUID(),
		Filename:   name,
		UploadedAt: uploaded,
		Info:       models.DatasetInfo{Filename: name, RowCount: len(points), HasLoad: true},
		Points:     points,
		Features:   []models.FeaturePoint{{TimeSeriesPoint: points[0]}, {TimeSeriesPoint: points[1]}},
	}
}

func newResult(datasetID string, mt models.ModelType, at time.Time) *models.ModelResult {
	return &models.ModelResult{
		Metadata: models.ModelMetadata{
			ID:        models.NewUUID(),
			DatasetID: datasetID,
			Type:      mt,
			Horizon:   1,
			TrainedAt: at,
			Features:  models.FeatureNames,
		},
		Metrics: models.EvaluationMetrics{MAE: 1, RMSE: 2, MAPE: 3},
		Forecast: []models.ForecastPoint{
			{Timestamp: at, PredictedLoad: 5, ActualLoad: models.Float(6)},
		},
	}
}

// runStoreContract exercises behaviour every Store implementation shares.
func runStoreContract(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty store reports not found", func(t *testing.T) {
		_, err := s.LatestDataset(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.LatestModelResult(ctx, "")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetDataset(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	first := newDataset("first.csv", base)
	second := newDataset("second.csv", base.Add(time.Minute))

	t.Run("datasets by id and latest", func(t *testing.T) {
		require.NoError(t, s.SaveDataset(ctx, first))
		require.NoError(t, s.SaveDataset(ctx, second))

		got, err := s.GetDataset(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first.csv", got.Filename)
		require.Len(t, got.Points, 2)
		assert.Equal(t, 12.0, got.Points[1].Load)

		latest, err := store.ResolveDataset(ctx, s, "")
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)

		list, err := s.ListDatasets(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
	})

	t.Run("latest result per dataset", func(t *testing.T) {
		require.NoError(t, s.SaveModelResult(ctx, newResult(first.ID, models.ModelNaive, base.Add(time.Hour))))
		require.NoError(t, s.SaveModelResult(ctx, newResult(second.ID, models.ModelLSTM, base.Add(2*time.Hour))))
		require.NoError(t, s.SaveModelResult(ctx, newResult(first.ID, models.ModelARIMA, base.Add(3*time.Hour))))

		latest, err := s.LatestModelResult(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, models.ModelARIMA, latest.Metadata.Type)

		forSecond, err := s.LatestModelResult(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ModelLSTM, forSecond.Metadata.Type)
		assert.Equal(t, 2.0, forSecond.Metrics.RMSE)

		history, err := s.ListModelResults(ctx, first.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, models.ModelARIMA, history[0].Metadata.Type)
	})

	t.Run("users", func(t *testing.T) {
		user, err := s.CreateUser(ctx, "operator", "hash")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)

		_, err = s.CreateUser(ctx, "operator", "other")
		assert.ErrorIs(t, err, store.ErrUserExists)

		byName, err := s.GetUserByUsername(ctx, "operator")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
		assert.Equal(t, "hash", byName.PasswordHash)

		_, err = s.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("clear keeps users", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx))

		_, err := s.LatestDataset(ctx)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.LatestModelResult(ctx, "")
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.GetUserByUsername(ctx, "operator")
		assert.NoError(t, err)
	})

	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, store.NewMemoryStore())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			ds := newDataset("c.csv", base.Add(time.Duration(i)*time.Second))
			assert.NoError(t, s.SaveDataset(ctx, ds))
		}(i)
		go func() {
			defer wg.Done()
			if ds, err := s.LatestDataset(ctx); err == nil {
				assert.Len(t, ds.Points, 2)
			}
		}()
	}
	wg.Wait()

	list, err := s.ListDatasets(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
