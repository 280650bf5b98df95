package normalize

import (
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/offplan-catalog-api/internal/models"
	"github.com/rs/zerolog"
)

const (
	// TitlePlaceholder is used when a record has no usable display name.
	TitlePlaceholder = "Untitled Project"

	// unitTypeSeparator joins unit-type labels in the summary string.
	unitTypeSeparator = " • "

	// maxUnitTypes caps how many distinct unit types the summary spells out.
	maxUnitTypes = 3
)

// Normalizer maps raw feed records into stable listings. Normalization is
// total: any input shape, including a nil map, produces exactly one listing
// with malformed fields degraded to their documented fallbacks.
type Normalizer struct {
	log zerolog.Logger
}

// New creates a Normalizer. Anomalies in individual fields are logged at
// debug level only; they are never errors.
func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize converts one decoded feed record into a Listing. raw may be nil
// (a record that was not a JSON object); rawJSON is retained on the listing
// unmodified for traceability.
func (n *Normalizer) Normalize(raw map[string]any, rawJSON json.RawMessage) models.Listing {
	l := models.Listing{
		ID:             asString(raw["id"]),
		Title:          asString(raw["name"]),
		Community:      asString(raw["community"]),
		Developer:      asString(raw["developer"]),
		CoverImage:     normalizeURL(asString(raw["cover_image"])),
		CompletionDate: asString(raw["completion_date"]),
		StatusLabel:    StatusLabel(raw["status"]),
		Featured:       inferFeatured(raw),
		Raw:            rawJSON,
	}

	if l.Title == "" {
		l.Title = TitlePlaceholder
	}
	l.TitleFold = strings.ToLower(l.Title)

	if lat, ok := asFloat(raw["latitude"]); ok {
		l.Lat = &lat
	} else if rawPresent(raw["latitude"]) {
		n.log.Debug().Str("id", l.ID).Interface("latitude", raw["latitude"]).Msg("Unparseable latitude")
	}
	if lng, ok := asFloat(raw["longitude"]); ok {
		l.Lng = &lng
	} else if rawPresent(raw["longitude"]) {
		n.log.Debug().Str("id", l.ID).Interface("longitude", raw["longitude"]).Msg("Unparseable longitude")
	}
	l.HasPin = l.Lat != nil && l.Lng != nil

	l.MinPrice = n.minPrice(l.ID, raw["units"])
	l.UnitTypesLabel = unitTypesLabel(raw["units"])

	if key, ok := ParseCompletion(l.CompletionDate); ok {
		l.CompletionKey = &key
	}

	return l
}

// minPrice returns the minimum over all unit starting prices that parse, or
// nil when the unit list is absent, empty, or nothing parses.
func (n *Normalizer) minPrice(id string, unitsVal any) *int64 {
	units, ok := unitsVal.([]any)
	if !ok {
		return nil
	}

	var min *int64
	for _, u := range units {
		unit, ok := u.(map[string]any)
		if !ok {
			continue
		}
		priceStr := asString(unit["starting_price"])
		price, ok := ParsePrice(priceStr)
		if !ok {
			if priceStr != "" {
				n.log.Debug().Str("id", id).Str("price", priceStr).Msg("Unparseable unit price")
			}
			continue
		}
		if min == nil || price < *min {
			p := price
			min = &p
		}
	}
	return min
}

// unitTypesLabel summarizes the distinct non-empty unit-type labels, sorted
// for determinism, spelling out at most three and collapsing the rest into a
// "+N" suffix.
func unitTypesLabel(unitsVal any) string {
	units, ok := unitsVal.([]any)
	if !ok {
		return ""
	}

	seen := make(map[string]bool)
	var types []string
	for _, u := range units {
		unit, ok := u.(map[string]any)
		if !ok {
			continue
		}
		t := asString(unit["unit_type"])
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 0 {
		return ""
	}

	sort.Strings(types)

	if len(types) <= maxUnitTypes {
		return strings.Join(types, unitTypeSeparator)
	}
	shown := append([]string{}, types[:maxUnitTypes]...)
	shown = append(shown, "+"+strconv.Itoa(len(types)-maxUnitTypes))
	return strings.Join(shown, unitTypeSeparator)
}

// normalizeURL re-renders a URL through net/url when it parses, otherwise
// space-escapes it as a best effort. Empty stays empty.
func normalizeURL(s string) string {
	if s == "" {
		return ""
	}
	if u, err := url.Parse(s); err == nil {
		return u.String()
	}
	return strings.ReplaceAll(s, " ", "%20")
}

// asString coerces a raw value into a string. Numbers render without a
// trailing ".0" so numeric identifiers stay stable; anything unusable
// collapses to "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asFloat coerces a raw value into a finite float64.
func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truthy interprets a loosely-typed flag value.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "false" && t != "0"
	default:
		return false
	}
}
