package repository

import (
	"context"
	"database/sql"

	"github.com/offplan-catalog-api/internal/database"
	"github.com/offplan-catalog-api/internal/models"
)

// snapshotRepo is the concrete implementation of SnapshotRepository
type snapshotRepo struct {
	db *database.DB
}

// NewSnapshotRepo creates a new feed snapshot repository
func NewSnapshotRepo(db *database.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

// Save inserts one raw feed snapshot
func (r *snapshotRepo) Save(ctx context.Context, snap *models.FeedSnapshot) error {
	query := `
		INSERT INTO feed_snapshots (id, generation, body, listing_count, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		snap.ID, snap.Generation, snap.Body, snap.ListingCount, snap.FetchedAt,
	)
	return err
}

// Latest returns the most recently fetched snapshot, or nil when none exist
func (r *snapshotRepo) Latest(ctx context.Context) (*models.FeedSnapshot, error) {
	query := `
		SELECT id, generation, body, listing_count, fetched_at
		FROM feed_snapshots
		ORDER BY fetched_at DESC, generation DESC
		LIMIT 1
	`

	var snap models.FeedSnapshot
	err := r.db.QueryRowContext(ctx, query).Scan(
		&snap.ID, &snap.Generation, &snap.Body, &snap.ListingCount, &snap.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Prune deletes all but the newest keep snapshots, returning how many rows
// were removed
func (r *snapshotRepo) Prune(ctx context.Context, keep int) (int, error) {
	query := `
		DELETE FROM feed_snapshots
		WHERE id NOT IN (
			SELECT id FROM feed_snapshots
			ORDER BY fetched_at DESC, generation DESC
			LIMIT $1
		)
	`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
