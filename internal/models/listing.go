package models

import (
	"encoding/json"
	"time"
)

// Listing is the stable, UI-facing projection of one raw feed record. It is
// immutable after normalization and lives for exactly one feed load; the next
// successful load replaces the whole collection.
type Listing struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Community      string   `json:"community"`
	Developer      string   `json:"developer"`
	CoverImage     string   `json:"cover_image"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	HasPin         bool     `json:"has_pin"`
	CompletionDate string   `json:"completion_date"`
	StatusLabel    string   `json:"status_label"`
	MinPrice       *int64   `json:"min_price"`
	UnitTypesLabel string   `json:"unit_types_label"`
	Featured       bool     `json:"featured"`

	// CompletionKey is the parsed sort key for CompletionDate (year*10+quarter),
	// precomputed so sorting never re-parses inside a comparator.
	CompletionKey *int `json:"-"`

	// TitleFold is the lowercased title, precomputed for tie-breaking.
	TitleFold string `json:"-"`

	// Raw is the source record exactly as received, retained for traceability.
	Raw json.RawMessage `json:"-"`
}

// MapPin is the projection handed to the map widget for one geolocated listing.
type MapPin struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Title       string  `json:"title"`
	Community   string  `json:"community"`
	Developer   string  `json:"developer"`
	MinPrice    *int64  `json:"min_price"`
	StatusLabel string  `json:"status_label"`
}

// Facets holds the distinct-value lists used to populate filter options.
type Facets struct {
	Communities  []string `json:"communities"`
	Developers   []string `json:"developers"`
	StatusLabels []string `json:"statuses"`
}

// LoadError describes a failed feed load, surfaced verbatim to the client.
type LoadError struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// FeedSnapshot is one persisted raw feed body from a successful load.
type FeedSnapshot struct {
	ID           string    `json:"id" db:"id"`
	Generation   uint64    `json:"generation" db:"generation"`
	Body         []byte    `json:"-" db:"body"`
	ListingCount int       `json:"listing_count" db:"listing_count"`
	FetchedAt    time.Time `json:"fetched_at" db:"fetched_at"`
}
