package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/offplan-catalog-api/internal/api"
	"github.com/offplan-catalog-api/internal/catalog"
	"github.com/offplan-catalog-api/internal/config"
	"github.com/offplan-catalog-api/internal/feed"
	"github.com/offplan-catalog-api/internal/models"
	"github.com/offplan-catalog-api/internal/query"
	"github.com/rs/zerolog"
)

func fixtureListing(id, title, community, developer, status string, price *int64, pinned bool) models.Listing {
	l := models.Listing{
		ID:          id,
		Title:       title,
		TitleFold:   strings.ToLower(title),
		Community:   community,
		Developer:   developer,
		StatusLabel: status,
		MinPrice:    price,
		Raw:         json.RawMessage(`{"id": "` + id + `"}`),
	}
	if pinned {
		lat, lng := 25.1, 55.2
		l.Lat, l.Lng, l.HasPin = &lat, &lng, true
	}
	return l
}

func price(v int64) *int64 { return &v }

func setupTestRouter(t *testing.T) (*gin.Engine, *catalog.Store, *query.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStore()
	gen := store.BeginLoad()
	store.Commit(gen, "test-load", []models.Listing{
		fixtureListing("1", "Marina Vista", "Dubai Marina", "Emaar", "Announced", price(1_200_000), true),
		fixtureListing("2", "Creek Rise", "Creek Harbour", "Emaar", "Completed", nil, true),
		fixtureListing("3", "Palm Grove", "Palm Jumeirah", "Nakheel", "Announced", price(3_500_000), false),
	}, time.Now())

	coord := query.NewCoordinator()
	loader := catalog.NewLoader(feed.NewClient("http://feed.invalid", time.Second), store, nil, 0, zerolog.Nop())

	cfg := &config.Config{
		Catalog: config.CatalogConfig{
			PinCap:         2,
			FallbackImages: []string{"/fb/0.jpg", "/fb/1.jpg"},
		},
	}

	deps := &api.Deps{Store: store, Loader: loader, Selection: coord}
	return api.NewRouter(deps, cfg, zerolog.Nop()), store, coord
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "offplan-catalog-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestListListings(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/v1/listings?sort=name_asc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Listings []struct {
			ID            string `json:"id"`
			Title         string `json:"title"`
			FallbackImage string `json:"fallback_image"`
		} `json:"listings"`
		Total int    `json:"total"`
		Sort  string `json:"sort"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response.Total != 3 {
		t.Fatalf("total = %d, want 3", response.Total)
	}
	if response.Listings[0].Title != "Creek Rise" {
		t.Errorf("first listing = %q, want name_asc order", response.Listings[0].Title)
	}
	// Fallback covers cycle deterministically by rendered position.
	if response.Listings[0].FallbackImage != "/fb/0.jpg" || response.Listings[2].FallbackImage != "/fb/0.jpg" {
		t.Errorf("fallback images = %q, %q", response.Listings[0].FallbackImage, response.Listings[2].FallbackImage)
	}
	if response.Listings[1].FallbackImage != "/fb/1.jpg" {
		t.Errorf("second fallback = %q", response.Listings[1].FallbackImage)
	}
}

func TestListListingsFiltered(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/v1/listings?developer=Nakheel", "")
	var response struct {
		Listings []struct {
			ID string `json:"id"`
		} `json:"listings"`
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	if response.Total != 1 || response.Listings[0].ID != "3" {
		t.Errorf("filtered result = %+v", response)
	}

	w = doRequest(router, "GET", "/v1/listings?q=creek", "")
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Total != 1 || response.Listings[0].ID != "2" {
		t.Errorf("free-text result = %+v", response)
	}
}

func TestGetListing(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/v1/listings/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Listing models.Listing  `json:"listing"`
		Raw     json.RawMessage `json:"raw"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Listing.Title != "Marina Vista" {
		t.Errorf("title = %q", response.Listing.Title)
	}
	if len(response.Raw) == 0 {
		t.Error("raw record missing from response")
	}

	if w := doRequest(router, "GET", "/v1/listings/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", w.Code)
	}
}

func TestFacets(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, "GET", "/v1/facets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var facets models.Facets
	json.Unmarshal(w.Body.Bytes(), &facets)
	if len(facets.Communities) != 3 || len(facets.Developers) != 2 || len(facets.StatusLabels) != 2 {
		t.Errorf("facets = %+v", facets)
	}
	if facets.Developers[0] != "Emaar" || facets.Developers[1] != "Nakheel" {
		t.Errorf("developers not sorted: %v", facets.Developers)
	}
}

func TestMapPinsCapped(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	// Catalog has two pinned listings; cap is 2, so both fit under the
	// default featured_then_name order.
	w := doRequest(router, "GET", "/v1/map/pins", "")
	var response struct {
		Pins       []models.MapPin `json:"pins"`
		SelectedID string          `json:"selected_id"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if len(response.Pins) != 2 {
		t.Fatalf("got %d pins, want 2", len(response.Pins))
	}

	// A smaller requested limit wins; the ceiling cannot be raised.
	w = doRequest(router, "GET", "/v1/map/pins?limit=1", "")
	json.Unmarshal(w.Body.Bytes(), &response)
	if len(response.Pins) != 1 {
		t.Errorf("limit=1 returned %d pins", len(response.Pins))
	}
	if response.Pins[0].ID != "2" {
		t.Errorf("first pin = %q, want first geolocated listing in sorted order", response.Pins[0].ID)
	}

	w = doRequest(router, "GET", "/v1/map/pins?limit=50", "")
	json.Unmarshal(w.Body.Bytes(), &response)
	if len(response.Pins) != 2 {
		t.Errorf("limit above cap returned %d pins", len(response.Pins))
	}
}

func TestSelectionFocusAndReset(t *testing.T) {
	router, _, coord := setupTestRouter(t)

	w := doRequest(router, "POST", "/v1/selection", `{"id": "1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	state := coord.State()
	if state.SelectedID != "1" {
		t.Errorf("selected id = %q", state.SelectedID)
	}
	if state.Filter.Community != "Dubai Marina" || state.Filter.Developer != "Emaar" || state.Filter.StatusLabel != "Announced" {
		t.Errorf("filters not focused on selection: %+v", state.Filter)
	}

	// The focused view now contains only matching listings.
	w = doRequest(router, "GET", "/v1/view", "")
	var view struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &view)
	if view.Total != 1 {
		t.Errorf("focused view total = %d, want 1", view.Total)
	}

	if w := doRequest(router, "DELETE", "/v1/selection", ""); w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", w.Code)
	}
	if got := coord.State(); got != query.DefaultViewState() {
		t.Errorf("state after reset = %+v", got)
	}
}

func TestSelectionUnknownListing(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	if w := doRequest(router, "POST", "/v1/selection", `{"id": "missing"}`); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := doRequest(router, "POST", "/v1/selection", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty id, got %d", w.Code)
	}
}

func TestSetViewClearsSelection(t *testing.T) {
	router, _, coord := setupTestRouter(t)

	doRequest(router, "POST", "/v1/selection", `{"id": "1"}`)
	w := doRequest(router, "PUT", "/v1/view", `{"filter": {"developer": "Nakheel"}, "sort": "price_desc"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	state := coord.State()
	if state.SelectedID != "" {
		t.Error("manual view change should clear the selection")
	}
	if state.Filter.Developer != "Nakheel" || state.Sort != query.SortPriceDesc {
		t.Errorf("state = %+v", state)
	}
}

func TestStatsReportsLoadError(t *testing.T) {
	router, store, _ := setupTestRouter(t)

	gen := store.BeginLoad()
	store.Fail(gen, models.LoadError{Status: 502, Message: "feed load failed (status 502): feed returned non-success status"})

	w := doRequest(router, "GET", "/v1/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Listings  int               `json:"listings"`
		LoadError *models.LoadError `json:"load_error"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)

	// The previous catalog keeps serving; the error is surfaced verbatim.
	if response.Listings != 3 {
		t.Errorf("listings = %d, want previous catalog preserved", response.Listings)
	}
	if response.LoadError == nil || response.LoadError.Status != 502 {
		t.Errorf("load_error = %+v", response.LoadError)
	}
}
