package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/offplan-catalog-api/internal/models"
)

// MockSnapshotRepository is an in-memory SnapshotRepository for tests
type MockSnapshotRepository struct {
	mu        sync.Mutex
	Snapshots  []*models.FeedSnapshot
	SaveErr    error
	LatestErr  error
	PruneErr   error
	PruneCalls int
}

// NewMockSnapshotRepository creates an empty mock repository
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{}
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snap *models.FeedSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Snapshots = append(m.Snapshots, snap)
	return nil
}

func (m *MockSnapshotRepository) Latest(ctx context.Context) (*models.FeedSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LatestErr != nil {
		return nil, m.LatestErr
	}
	if len(m.Snapshots) == 0 {
		return nil, nil
	}
	latest := m.Snapshots[0]
	for _, s := range m.Snapshots[1:] {
		if s.FetchedAt.After(latest.FetchedAt) ||
			(s.FetchedAt.Equal(latest.FetchedAt) && s.Generation > latest.Generation) {
			latest = s
		}
	}
	return latest, nil
}

func (m *MockSnapshotRepository) Prune(ctx context.Context, keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PruneCalls++
	if m.PruneErr != nil {
		return 0, m.PruneErr
	}
	if len(m.Snapshots) <= keep {
		return 0, nil
	}
	sort.Slice(m.Snapshots, func(i, j int) bool {
		return m.Snapshots[i].FetchedAt.After(m.Snapshots[j].FetchedAt)
	})
	removed := len(m.Snapshots) - keep
	m.Snapshots = m.Snapshots[:keep]
	return removed, nil
}
