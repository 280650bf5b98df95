package query

import (
	"sync"

	"github.com/offplan-catalog-api/internal/models"
)

// ViewState is the filter, sort, and selection state behind the rendered
// view. It is a value: every transition produces a new state, never an
// in-place edit of a shared one.
type ViewState struct {
	Filter     Filter  `json:"filter"`
	Sort       SortKey `json:"sort"`
	SelectedID string  `json:"selected_id,omitempty"`
}

// DefaultViewState is the state before any user interaction.
func DefaultViewState() ViewState {
	return ViewState{Sort: DefaultSort}
}

// Coordinator owns the current ViewState and links selection to the filters:
// selecting a listing focuses the view on it by overwriting the filters to
// match its fields. The map widget reads the selected ID for highlighting
// only; it never owns selection state.
type Coordinator struct {
	mu    sync.RWMutex
	state ViewState
}

// NewCoordinator creates a Coordinator in the default state.
func NewCoordinator() *Coordinator {
	return &Coordinator{state: DefaultViewState()}
}

// State returns the current view state.
func (c *Coordinator) State() ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetQuery replaces the filter and sort, clearing any selection: a manual
// filter change means the user has moved past the focused listing.
func (c *Coordinator) SetQuery(f Filter, key SortKey) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ViewState{Filter: f, Sort: key}
	return c.state
}

// Select focuses the view on one listing: the selection is recorded and the
// exact-match filters are overwritten to the listing's own fields. This is a
// deliberate focus behavior, not an additive narrowing. The sort is kept.
func (c *Coordinator) Select(l models.Listing) ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ViewState{
		Filter: Filter{
			Community:   l.Community,
			Developer:   l.Developer,
			StatusLabel: l.StatusLabel,
			FreeText:    "",
		},
		Sort:       c.state.Sort,
		SelectedID: l.ID,
	}
	return c.state
}

// Reset clears the selection and all filters and restores the default sort.
func (c *Coordinator) Reset() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DefaultViewState()
	return c.state
}
