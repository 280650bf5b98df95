package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchStatusHandling(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantErr    bool
		wantStatus int
	}{
		{name: "200 ok", status: http.StatusOK},
		{name: "204 still success", status: http.StatusNoContent},
		{name: "404 is a hard failure", status: http.StatusNotFound, wantErr: true, wantStatus: 404},
		{name: "500 is a hard failure", status: http.StatusInternalServerError, wantErr: true, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, 5*time.Second).Fetch(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var failure *LoadFailure
				if !errors.As(err, &failure) {
					t.Fatalf("error is not a LoadFailure: %v", err)
				}
				if failure.Status != tt.wantStatus {
					t.Errorf("status = %d, want %d", failure.Status, tt.wantStatus)
				}
				if !errors.Is(err, ErrBadStatus) {
					t.Error("failure should wrap ErrBadStatus")
				}
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  error
		wantRecs int
	}{
		{name: "valid document", body: `{"data": {"projects": [{"id": 1}, {"id": 2}]}}`, wantRecs: 2},
		{name: "empty projects list", body: `{"data": {"projects": []}}`, wantRecs: 0},
		{name: "extra fields ignored", body: `{"meta": 1, "data": {"count": 1, "projects": [{}]}}`, wantRecs: 1},
		{name: "not json", body: `<!DOCTYPE html>`, wantErr: ErrNotJSON},
		{name: "truncated json", body: `{"data": {"projects": [`, wantErr: ErrNotJSON},
		{name: "top-level array is wrong shape, not non-json", body: `[1, 2]`, wantErr: ErrBadShape},
		{name: "top-level string is wrong shape, not non-json", body: `"hello"`, wantErr: ErrBadShape},
		{name: "top-level null", body: `null`, wantErr: ErrBadShape},
		{name: "data missing", body: `{"projects": []}`, wantErr: ErrBadShape},
		{name: "data null", body: `{"data": null}`, wantErr: ErrBadShape},
		{name: "data not an object", body: `{"data": [1, 2]}`, wantErr: ErrBadShape},
		{name: "projects missing", body: `{"data": {}}`, wantErr: ErrBadShape},
		{name: "projects null", body: `{"data": {"projects": null}}`, wantErr: ErrBadShape},
		{name: "projects not a list", body: `{"data": {"projects": "many"}}`, wantErr: ErrBadShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ParseDocument([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDocument() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDocument() error: %v", err)
			}
			if len(recs) != tt.wantRecs {
				t.Errorf("got %d records, want %d", len(recs), tt.wantRecs)
			}
		})
	}
}
