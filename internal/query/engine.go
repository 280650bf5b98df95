// Package query derives ordered, filtered views of the catalog. Everything
// here is pure: the engine never mutates the snapshot it reads, so it can be
// re-run on every state change, including each keystroke of the free-text
// filter.
package query

import (
	"sort"
	"strings"

	"github.com/offplan-catalog-api/internal/models"
)

// SortKey enumerates the supported orderings.
type SortKey string

const (
	SortFeaturedThenName SortKey = "featured_then_name"
	SortPriceAsc         SortKey = "price_asc"
	SortPriceDesc        SortKey = "price_desc"
	SortCompletionAsc    SortKey = "completion_asc"
	SortCompletionDesc   SortKey = "completion_desc"
	SortNameAsc          SortKey = "name_asc"
	SortNameDesc         SortKey = "name_desc"

	// DefaultSort is the ordering used before the user picks one.
	DefaultSort = SortFeaturedThenName
)

var validSortKeys = map[SortKey]bool{
	SortFeaturedThenName: true,
	SortPriceAsc:         true,
	SortPriceDesc:        true,
	SortCompletionAsc:    true,
	SortCompletionDesc:   true,
	SortNameAsc:          true,
	SortNameDesc:         true,
}

// ParseSortKey resolves a client-supplied sort name, falling back to the
// default for anything unknown.
func ParseSortKey(s string) SortKey {
	key := SortKey(s)
	if validSortKeys[key] {
		return key
	}
	return DefaultSort
}

// Filter is an AND of exact-match constraints plus an optional free-text
// query. Empty fields constrain nothing.
type Filter struct {
	Community   string `json:"community,omitempty"`
	Developer   string `json:"developer,omitempty"`
	StatusLabel string `json:"status,omitempty"`
	FreeText    string `json:"q,omitempty"`
}

// IsZero reports whether the filter constrains nothing.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether one listing passes every provided constraint.
func (f Filter) Matches(l models.Listing) bool {
	if f.Community != "" && l.Community != f.Community {
		return false
	}
	if f.Developer != "" && l.Developer != f.Developer {
		return false
	}
	if f.StatusLabel != "" && l.StatusLabel != f.StatusLabel {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.FreeText)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{
			l.Title, l.Community, l.Developer, l.StatusLabel, l.CompletionDate,
		}, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Apply filters and sorts the collection, returning a new slice. The input
// is never modified. Every sort key yields a deterministic total order;
// listings whose price or completion date did not parse sort last under the
// price and completion keys regardless of direction, so "unknown" is never
// confused with "cheapest" or "soonest".
func Apply(listings []models.Listing, f Filter, key SortKey) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Matches(l) {
			out = append(out, l)
		}
	}

	less := comparator(key)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func comparator(key SortKey) func(a, b models.Listing) bool {
	switch key {
	case SortPriceAsc:
		return func(a, b models.Listing) bool { return lessInt64Ptr(a.MinPrice, b.MinPrice, false, a, b) }
	case SortPriceDesc:
		return func(a, b models.Listing) bool { return lessInt64Ptr(a.MinPrice, b.MinPrice, true, a, b) }
	case SortCompletionAsc:
		return func(a, b models.Listing) bool { return lessIntPtr(a.CompletionKey, b.CompletionKey, false, a, b) }
	case SortCompletionDesc:
		return func(a, b models.Listing) bool { return lessIntPtr(a.CompletionKey, b.CompletionKey, true, a, b) }
	case SortNameAsc:
		return func(a, b models.Listing) bool { return a.TitleFold < b.TitleFold }
	case SortNameDesc:
		return func(a, b models.Listing) bool { return a.TitleFold > b.TitleFold }
	default: // featured_then_name
		return func(a, b models.Listing) bool {
			if a.Featured != b.Featured {
				return a.Featured
			}
			return a.TitleFold < b.TitleFold
		}
	}
}

// lessInt64Ptr orders nullable prices with nulls last in either direction and
// a case-insensitive title tie-break.
func lessInt64Ptr(a, b *int64, desc bool, la, lb models.Listing) bool {
	switch {
	case a == nil && b == nil:
		return la.TitleFold < lb.TitleFold
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		if desc {
			return *a > *b
		}
		return *a < *b
	default:
		return la.TitleFold < lb.TitleFold
	}
}

// lessIntPtr is lessInt64Ptr for completion keys.
func lessIntPtr(a, b *int, desc bool, la, lb models.Listing) bool {
	switch {
	case a == nil && b == nil:
		return la.TitleFold < lb.TitleFold
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		if desc {
			return *a > *b
		}
		return *a < *b
	default:
		return la.TitleFold < lb.TitleFold
	}
}

// Pins projects the geolocated listings of an ordered view for the map
// widget, capped at limit. The view's order decides which listings make the
// cut, so the selection is deterministic for a given query.
func Pins(ordered []models.Listing, limit int) []models.MapPin {
	pins := make([]models.MapPin, 0, limit)
	for _, l := range ordered {
		if !l.HasPin {
			continue
		}
		pins = append(pins, models.MapPin{
			ID:          l.ID,
			Lat:         *l.Lat,
			Lng:         *l.Lng,
			Title:       l.Title,
			Community:   l.Community,
			Developer:   l.Developer,
			MinPrice:    l.MinPrice,
			StatusLabel: l.StatusLabel,
		})
		if len(pins) == limit {
			break
		}
	}
	return pins
}
