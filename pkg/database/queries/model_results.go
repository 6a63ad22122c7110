package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OldStager01/energy-forecaster/pkg/database"
	"github.com/OldStager01/energy-forecaster/pkg/models"
)

var ErrModelResultNotFound = errors.New("model result not found")

type ModelResultRepository struct {
	db *database.DB
}

func NewModelResultRepository(db *database.DB) *ModelResultRepository {
	return &ModelResultRepository{db: db}
}

func (r *ModelResultRepository) Insert(ctx context.Context, result *models.ModelResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode model result: %w", err)
	}

	query := `
		INSERT INTO model_results (id, dataset_id, model_type, horizon, mae, rmse, mape, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		result.Metadata.ID,
		result.Metadata.DatasetID,
		string(result.Metadata.Type),
		result.Metadata.Horizon,
		result.Metrics.MAE,
		result.Metrics.RMSE,
		result.Metrics.MAPE,
		result.Metadata.TrainedAt.UTC(),
		string(payload),
	)
	return err
}

// GetLatest returns the newest result, restricted to datasetID when it is
// not empty.
func (r *ModelResultRepository) GetLatest(ctx context.Context, datasetID string) (*models.ModelResult, error) {
	var row *sql.Row
	if datasetID == "" {
		row = r.db.QueryRowContext(ctx,
			`SELECT payload FROM model_results ORDER BY created_at DESC LIMIT 1`)
	} else {
		query := `SELECT payload FROM model_results WHERE dataset_id = ? ORDER BY created_at DESC LIMIT 1`
		row = r.db.QueryRowContext(ctx, r.db.Rebind(query), datasetID)
	}

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrModelResultNotFound
	}
	if err != nil {
		return nil, err
	}

	var result models.ModelResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode model result: %w", err)
	}
	return &result, nil
}

func (r *ModelResultRepository) ListByDataset(ctx context.Context, datasetID string, limit int) ([]models.ModelResult, error) {
	query := `SELECT payload FROM model_results WHERE dataset_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), datasetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ModelResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var result models.ModelResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to decode model result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
