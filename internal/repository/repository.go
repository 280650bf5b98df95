package repository

import (
	"context"

	"github.com/offplan-catalog-api/internal/database"
	"github.com/offplan-catalog-api/internal/models"
)

// SnapshotRepository defines the interface for feed snapshot persistence
type SnapshotRepository interface {
	Save(ctx context.Context, snap *models.FeedSnapshot) error
	Latest(ctx context.Context) (*models.FeedSnapshot, error)
	Prune(ctx context.Context, keep int) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Snapshot SnapshotRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Snapshot: NewSnapshotRepo(db),
	}
}
