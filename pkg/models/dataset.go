package models

import "time"

// Dataset is an immutable snapshot of one upload. Nothing mutates Points or
// Features after the snapshot is saved.
type Dataset struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	UploadedAt time.Time         `json:"uploaded_at"`
	Info       DatasetInfo       `json:"info"`
	Points     []TimeSeriesPoint `json:"points"`
	Features   []FeaturePoint    `json:"features"`
}

// DatasetSummary is the list view of a stored dataset.
type DatasetSummary struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	UploadedAt time.Time   `json:"uploaded_at"`
	Info       DatasetInfo `json:"info"`
}

func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		ID:         d.ID,
		Filename:   d.Filename,
		UploadedAt: d.UploadedAt,
		Info:       d.Info,
	}
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
