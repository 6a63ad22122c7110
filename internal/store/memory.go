package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OldStager01/energy-forecaster/pkg/models"
)

// MemoryStore holds everything in process memory. Stored values are never
// mutated after Save, so readers may share them without copying.
type MemoryStore struct {
	mu sync.RWMutex

	datasets     map[string]*models.Dataset
	datasetOrder []string

	results    []*models.ModelResult
	latestByDS map[string]*models.ModelResult
	latest     *models.ModelResult

	users       map[string]*models.User
	usersByName map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets:    make(map[string]*models.Dataset),
		latestByDS:  make(map[string]*models.ModelResult),
		users:       make(map[string]*models.User),
		usersByName: make(map[string]string),
	}
}

func (s *MemoryStore) SaveDataset(ctx context.Context, ds *models.Dataset) error {
	if ds == nil || ds.ID == "" {
		return fmt.Errorf("dataset id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[ds.ID]; !exists {
		s.datasetOrder = append(s.datasetOrder, ds.ID)
	}
	s.datasets[ds.ID] = ds
	return nil
}

func (s *MemoryStore) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	return ds, nil
}

func (s *MemoryStore) LatestDataset(ctx context.Context) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.datasetOrder) == 0 {
		return nil, fmt.Errorf("dataset: %w", ErrNotFound)
	}
	return s.datasets[s.datasetOrder[len(s.datasetOrder)-1]], nil
}

func (s *MemoryStore) ListDatasets(ctx context.Context, limit int) ([]models.DatasetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.DatasetSummary
	for i := len(s.datasetOrder) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.datasets[s.datasetOrder[i]].Summary())
	}
	return out, nil
}

func (s *MemoryStore) SaveModelResult(ctx context.Context, result *models.ModelResult) error {
	if result == nil {
		return fmt.Errorf("model result is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
	s.latestByDS[result.Metadata.DatasetID] = result
	s.latest = result
	return nil
}

func (s *MemoryStore) LatestModelResult(ctx context.Context, datasetID string) (*models.ModelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.latest
	if datasetID != "" {
		result = s.latestByDS[datasetID]
	}
	if result == nil {
		return nil, fmt.Errorf("model result: %w", ErrNotFound)
	}
	return result, nil
}

func (s *MemoryStore) ListModelResults(ctx context.Context, datasetID string, limit int) ([]models.ModelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ModelResult
	for i := len(s.results) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if datasetID != "" && s.results[i].Metadata.DatasetID != datasetID {
			continue
		}
		out = append(out, *s.results[i])
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[username]; exists {
		return nil, ErrUserExists
	}

	user := &models.User{
		ID:           models.NewUUID(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.usersByName[username] = user.ID

	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.usersByName[username]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return s.GetUser(ctx, id)
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = make(map[string]*models.Dataset)
	s.datasetOrder = nil
	s.results = nil
	s.latestByDS = make(map[string]*models.ModelResult)
	s.latest = nil
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
