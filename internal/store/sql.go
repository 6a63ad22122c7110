package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/OldStager01/energy-forecaster/pkg/database"
	"github.com/OldStager01/energy-forecaster/pkg/database/queries"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// SQLStore persists to postgres or sqlite through the query repositories.
type SQLStore struct {
	db       *database.DB
	datasets *queries.DatasetRepository
	results  *queries.ModelResultRepository
	users    *queries.UserRepository
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		datasets: queries.NewDatasetRepository(db),
		results:  queries.NewModelResultRepository(db),
		users:    queries.NewUserRepository(db),
	}
}

func (s *SQLStore) SaveDataset(ctx context.Context, ds *models.Dataset) error {
	if err := s.datasets.Insert(ctx, ds); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

func (s *SQLStore) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	ds, err := s.datasets.GetByID(ctx, id)
	return ds, translate(err, queries.ErrDatasetNotFound)
}

func (s *SQLStore) LatestDataset(ctx context.Context) (*models.Dataset, error) {
	ds, err := s.datasets.GetLatest(ctx)
	return ds, translate(err, queries.ErrDatasetNotFound)
}

func (s *SQLStore) ListDatasets(ctx context.Context, limit int) ([]models.DatasetSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.datasets.List(ctx, limit)
}

func (s *SQLStore) SaveModelResult(ctx context.Context, result *models.ModelResult) error {
	if err := s.results.Insert(ctx, result); err != nil {
		return fmt.Errorf("failed to save model result: %w", err)
	}
	return nil
}

func (s *SQLStore) LatestModelResult(ctx context.Context, datasetID string) (*models.ModelResult, error) {
	result, err := s.results.GetLatest(ctx, datasetID)
	return result, translate(err, queries.ErrModelResultNotFound)
}

func (s *SQLStore) ListModelResults(ctx context.Context, datasetID string, limit int) ([]models.ModelResult, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.results.ListByDataset(ctx, datasetID, limit)
}

func (s *SQLStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	user, err := s.users.Create(ctx, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	return user, translate(err, queries.ErrUserNotFound)
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	return user, translate(err, queries.ErrUserNotFound)
}

func (s *SQLStore) Clear(ctx context.Context) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM model_results`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM datasets`)
		return err
	})
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Version reports the database server version.
func (s *SQLStore) Version(ctx context.Context) (string, error) {
	return s.db.GetVersion(ctx)
}

func (s *SQLStore) Stats() sql.DBStats {
	return s.db.GetConnectionStats()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func translate(err, notFound error) error {
	if errors.Is(err, notFound) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
