// Package feed fetches the static project feed and validates its top-level
// shape. Transport failures, non-JSON bodies, and a missing or non-list
// project path are all hard load failures: the whole document is rejected,
// never partially normalized. Malformed individual records inside a valid
// list are not this package's concern; they flow through to the normalizer.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrBadStatus marks a non-success transport status.
	ErrBadStatus = errors.New("feed returned non-success status")

	// ErrNotJSON marks a body that does not decode as JSON.
	ErrNotJSON = errors.New("feed body is not valid JSON")

	// ErrBadShape marks a document missing the data.projects list.
	ErrBadShape = errors.New("feed document missing data.projects list")
)

// LoadFailure carries the transport status (when one exists) alongside the
// underlying cause, so the error can be surfaced verbatim to the client.
type LoadFailure struct {
	Status int
	Err    error
}

func (e *LoadFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("feed load failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("feed load failed: %v", e.Err)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

// Client fetches the feed document over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a feed client for the given URL.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the raw feed document body. Any non-2xx status is a hard
// failure carrying the status code.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &LoadFailure{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &LoadFailure{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadFailure{Status: resp.StatusCode, Err: ErrBadStatus}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadFailure{Err: err}
	}
	return body, nil
}

// ParseDocument validates the top-level feed shape and returns the raw
// project records. The expected shape is {"data": {"projects": [...]}}; the
// records themselves are returned undecoded. ErrNotJSON is reserved for
// bodies that are not JSON at all; a JSON body of the wrong shape (a
// top-level array, a bare string) is ErrBadShape.
func ParseDocument(body []byte) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		if !json.Valid(body) {
			return nil, &LoadFailure{Err: fmt.Errorf("%w: %v", ErrNotJSON, err)}
		}
		return nil, &LoadFailure{Err: ErrBadShape}
	}

	data := doc["data"]
	if len(data) == 0 || string(data) == "null" {
		return nil, &LoadFailure{Err: ErrBadShape}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, &LoadFailure{Err: ErrBadShape}
	}

	rawProjects := inner["projects"]
	if len(rawProjects) == 0 || string(rawProjects) == "null" {
		return nil, &LoadFailure{Err: ErrBadShape}
	}

	var projects []json.RawMessage
	if err := json.Unmarshal(rawProjects, &projects); err != nil {
		return nil, &LoadFailure{Err: ErrBadShape}
	}
	return projects, nil
}
