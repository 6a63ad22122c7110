// Package store keeps datasets, model results and users. Datasets are keyed
// by id and stored as immutable snapshots: a request resolves its snapshot
// once and computes against it, so concurrent uploads never tear a running
// prediction.
package store

import (
	"context"
	"errors"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("username already exists")
)

type Store interface {
	SaveDataset(ctx context.Context, ds *models.Dataset) error
	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	LatestDataset(ctx context.Context) (*models.Dataset, error)
	ListDatasets(ctx context.Context, limit int) ([]models.DatasetSummary, error)

	SaveModelResult(ctx context.Context, result *models.ModelResult) error
	// LatestModelResult returns the newest result for datasetID, or the newest
	// overall when datasetID is empty.
	LatestModelResult(ctx context.Context, datasetID string) (*models.ModelResult, error)
	ListModelResults(ctx context.Context, datasetID string, limit int) ([]models.ModelResult, error)

	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// Clear removes datasets and model results. Users are kept.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// ResolveDataset returns the dataset with id, or the latest one when id is
// empty.
func ResolveDataset(ctx context.Context, s Store, id string) (*models.Dataset, error) {
	if id == "" {
		return s.LatestDataset(ctx)
	}
	return s.GetDataset(ctx, id)
}
