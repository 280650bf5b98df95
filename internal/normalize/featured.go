package normalize

// inferFeatured decides whether a listing is featured. An explicit truthy
// "featured" flag always wins. Without one, a record is treated as featured
// only when it carries a non-empty image reference, both coordinates in raw
// form (parseable or not), and at least one unit variation.
//
// The fallback is a heuristic, not authoritative; it lives in this one
// function so it can be removed once the feed grows a real flag.
func inferFeatured(raw map[string]any) bool {
	if v, ok := raw["featured"]; ok && v != nil {
		return truthy(v)
	}

	if asString(raw["cover_image"]) == "" {
		return false
	}
	if !rawPresent(raw["latitude"]) || !rawPresent(raw["longitude"]) {
		return false
	}
	units, ok := raw["units"].([]any)
	return ok && len(units) > 0
}

// rawPresent reports whether a raw field carries any value at all, without
// requiring it to parse.
func rawPresent(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}
