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

var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetRepository persists dataset snapshots as one JSON payload per row.
type DatasetRepository struct {
	db *database.DB
}

func NewDatasetRepository(db *database.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Insert(ctx context.Context, ds *models.Dataset) error {
	payload, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	query := `
		INSERT INTO datasets (id, filename, uploaded_at, row_count, payload)
		VALUES (?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, r.db.Rebind(query),
		ds.ID,
		ds.Filename,
		ds.UploadedAt.UTC(),
		ds.Info.RowCount,
		string(payload),
	)
	return err
}

func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*models.Dataset, error) {
	query := `SELECT payload FROM datasets WHERE id = ?`
	return r.scanPayload(r.db.QueryRowContext(ctx, r.db.Rebind(query), id))
}

func (r *DatasetRepository) GetLatest(ctx context.Context) (*models.Dataset, error) {
	query := `SELECT payload FROM datasets ORDER BY uploaded_at DESC LIMIT 1`
	return r.scanPayload(r.db.QueryRowContext(ctx, query))
}

func (r *DatasetRepository) List(ctx context.Context, limit int) ([]models.DatasetSummary, error) {
	query := `SELECT payload FROM datasets ORDER BY uploaded_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.DatasetSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var ds models.Dataset
		if err := json.Unmarshal([]byte(payload), &ds); err != nil {
			return nil, fmt.Errorf("failed to decode dataset: %w", err)
		}
		summaries = append(summaries, ds.Summary())
	}

	return summaries, rows.Err()
}

func (r *DatasetRepository) scanPayload(row *sql.Row) (*models.Dataset, error) {
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, err
	}

	var ds models.Dataset
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &ds, nil
}
