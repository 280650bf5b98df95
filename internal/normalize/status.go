package normalize

import "fmt"

// statusLabels maps raw feed status codes to display labels. The feed does not
// document its codes; these labels are provisional until the data owner
// confirms the real semantics, so the table must stay a plain lookup and never
// leak into conditionals elsewhere.
var statusLabels = map[int]string{
	1: "Announced",
	2: "Presale",
	3: "Under Construction",
	4: "Completed",
	5: "Sold Out",
}

// StatusLabel resolves a raw status value into a display label. A missing
// value renders as "Unknown"; an unmapped code renders as "Status {code}".
func StatusLabel(v any) string {
	if v == nil {
		return "Unknown"
	}
	if f, ok := asFloat(v); ok {
		code := int(f)
		if label, ok := statusLabels[code]; ok {
			return label
		}
		return fmt.Sprintf("Status %d", code)
	}
	return fmt.Sprintf("Status %v", v)
}
