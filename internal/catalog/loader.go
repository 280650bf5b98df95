package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/offplan-catalog-api/internal/feed"
	"github.com/offplan-catalog-api/internal/models"
	"github.com/offplan-catalog-api/internal/normalize"
	"github.com/offplan-catalog-api/internal/repository"
	"github.com/rs/zerolog"
)

// Loader runs one logical feed load: fetch, shape-validate, normalize every
// record, commit. Each load gets a UUID and a store generation; a load that
// loses the generation race is discarded silently. Failed loads are never
// retried by the loader itself.
type Loader struct {
	client       *feed.Client
	normalizer   *normalize.Normalizer
	store        *Store
	snapshots    repository.SnapshotRepository // nil disables persistence
	snapshotKeep int                           // newest snapshots retained; <=0 keeps all
	log          zerolog.Logger
}

// NewLoader creates a Loader. snapshots may be nil when persistence is
// disabled; snapshotKeep bounds how many persisted snapshots survive each
// successful load.
func NewLoader(client *feed.Client, store *Store, snapshots repository.SnapshotRepository, snapshotKeep int, log zerolog.Logger) *Loader {
	return &Loader{
		client:       client,
		normalizer:   normalize.New(log),
		store:        store,
		snapshots:    snapshots,
		snapshotKeep: snapshotKeep,
		log:          log,
	}
}

// Load performs one full load attempt and returns its load ID. The returned
// error is the load failure, already recorded on the store.
func (ld *Loader) Load(ctx context.Context) (string, error) {
	gen := ld.store.BeginLoad()
	loadID := uuid.NewString()
	start := time.Now().UTC()

	log := ld.log.With().Str("load_id", loadID).Uint64("generation", gen).Logger()
	log.Info().Msg("Feed load started")

	body, err := ld.client.Fetch(ctx)
	if err != nil {
		return loadID, ld.fail(gen, err, log)
	}

	listings, err := ld.normalizeDocument(body)
	if err != nil {
		return loadID, ld.fail(gen, err, log)
	}

	if !ld.store.Commit(gen, loadID, listings, start) {
		log.Info().Msg("Stale feed load discarded")
		return loadID, nil
	}
	log.Info().Int("listings", len(listings)).Dur("duration", time.Since(start)).Msg("Feed load committed")

	ld.persist(ctx, loadID, gen, body, len(listings), start, log)
	return loadID, nil
}

// Restore warms the store from the newest persisted snapshot, if any. It runs
// through the same generation path as a live load, so a concurrent fetch that
// finishes later still wins.
func (ld *Loader) Restore(ctx context.Context) error {
	if ld.snapshots == nil {
		return nil
	}

	snap, err := ld.snapshots.Latest(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	gen := ld.store.BeginLoad()
	listings, err := ld.normalizeDocument(snap.Body)
	if err != nil {
		return err
	}
	if ld.store.Commit(gen, snap.ID, listings, snap.FetchedAt) {
		ld.log.Info().Str("load_id", snap.ID).Int("listings", len(listings)).Msg("Catalog restored from persisted snapshot")
	}
	return nil
}

// normalizeDocument validates the document shape and normalizes every record.
// A record that is not a JSON object still yields one listing with degraded
// fields.
func (ld *Loader) normalizeDocument(body []byte) ([]models.Listing, error) {
	records, err := feed.ParseDocument(body)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(records))
	for _, rec := range records {
		var raw map[string]any
		if err := json.Unmarshal(rec, &raw); err != nil {
			raw = nil
		}
		listings = append(listings, ld.normalizer.Normalize(raw, rec))
	}
	return listings, nil
}

// fail records the load error on the store and surfaces the transport status
// verbatim when one exists.
func (ld *Loader) fail(gen uint64, err error, log zerolog.Logger) error {
	loadErr := models.LoadError{Message: err.Error()}
	var failure *feed.LoadFailure
	if errors.As(err, &failure) {
		loadErr.Status = failure.Status
	}

	if ld.store.Fail(gen, loadErr) {
		log.Error().Err(err).Msg("Feed load failed")
	} else {
		log.Info().Err(err).Msg("Stale feed load failure discarded")
	}
	return err
}

// persist stores the raw body of a committed load and prunes snapshots
// beyond the retention bound. Best effort only: a persistence failure never
// fails the load.
func (ld *Loader) persist(ctx context.Context, loadID string, gen uint64, body []byte, count int, fetchedAt time.Time, log zerolog.Logger) {
	if ld.snapshots == nil {
		return
	}
	err := ld.snapshots.Save(ctx, &models.FeedSnapshot{
		ID:           loadID,
		Generation:   gen,
		Body:         body,
		ListingCount: count,
		FetchedAt:    fetchedAt,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to persist feed snapshot")
		return
	}

	if ld.snapshotKeep <= 0 {
		return
	}
	removed, err := ld.snapshots.Prune(ctx, ld.snapshotKeep)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune feed snapshots")
		return
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("keep", ld.snapshotKeep).Msg("Pruned old feed snapshots")
	}
}
