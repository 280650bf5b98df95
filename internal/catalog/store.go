package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/offplan-catalog-api/internal/models"
)

// Snapshot is one immutable catalog state: the full normalized collection
// from a single successful load plus its derived facets. A load replaces the
// snapshot wholesale; nothing is patched in place.
type Snapshot struct {
	Listings   []models.Listing
	Facets     models.Facets
	Generation uint64
	LoadID     string
	FetchedAt  time.Time
}

// Store is the single source of truth for "all listings". Loads carry a
// monotonically increasing generation; only the most recently begun load may
// commit or record a failure, so a stale in-flight load can never clobber a
// newer result. A failed load preserves the previous snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  *models.LoadError
	nextGen  uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// BeginLoad registers a new load attempt and returns its generation.
func (s *Store) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	return s.nextGen
}

// Commit installs a new snapshot if gen is still the latest generation.
// Returns false when the result is stale and was discarded.
func (s *Store) Commit(gen uint64, loadID string, listings []models.Listing, fetchedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.nextGen {
		loadsTotal.WithLabelValues("stale").Inc()
		return false
	}

	s.snapshot = &Snapshot{
		Listings:   listings,
		Facets:     deriveFacets(listings),
		Generation: gen,
		LoadID:     loadID,
		FetchedAt:  fetchedAt,
	}
	s.lastErr = nil

	loadsTotal.WithLabelValues("committed").Inc()
	listingsGauge.Set(float64(len(listings)))
	lastLoadTimestamp.Set(float64(fetchedAt.Unix()))
	return true
}

// Fail records a load error if gen is still the latest generation. The
// previous successful snapshot, if any, keeps serving.
func (s *Store) Fail(gen uint64, loadErr models.LoadError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.nextGen {
		loadsTotal.WithLabelValues("stale").Inc()
		return false
	}

	s.lastErr = &loadErr
	loadsTotal.WithLabelValues("failed").Inc()
	return true
}

// Snapshot returns the current snapshot, or nil before the first successful
// load. The snapshot is immutable; callers must not modify its listings.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Listings returns the current full collection, empty before the first load.
func (s *Store) Listings() []models.Listing {
	if snap := s.Snapshot(); snap != nil {
		return snap.Listings
	}
	return nil
}

// Facets returns the current facet lists.
func (s *Store) Facets() models.Facets {
	if snap := s.Snapshot(); snap != nil {
		return snap.Facets
	}
	return models.Facets{}
}

// LastError returns the most recent load error, or nil if the latest load
// attempt succeeded.
func (s *Store) LastError() *models.LoadError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Generation returns the latest begun load generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextGen
}

// deriveFacets collects the distinct filter-option values of a collection.
func deriveFacets(listings []models.Listing) models.Facets {
	return models.Facets{
		Communities:  distinct(listings, func(l models.Listing) string { return l.Community }),
		Developers:   distinct(listings, func(l models.Listing) string { return l.Developer }),
		StatusLabels: distinct(listings, func(l models.Listing) string { return l.StatusLabel }),
	}
}

func distinct(listings []models.Listing, key func(models.Listing) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, l := range listings {
		v := key(l)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
