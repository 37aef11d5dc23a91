package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

func TestReportRepo_Insert(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/rest/v1/CrimeDB" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("unexpected Prefer %q", r.Header.Get("Prefer"))
		}

		b, _ := io.ReadAll(r.Body)
		var rows []map[string]any
		if err := json.Unmarshal(b, &rows); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected one row, got %d", len(rows))
		}
		got := rows[0]
		if got["user_id"] != "u1" || got["latt"] != 48.8566 || got["long"] != 2.3522 || got["description"] != "theft" {
			t.Errorf("unexpected row %v", got)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":42,"user_id":"u1","latt":48.8566,"long":2.3522,"description":"theft","created_at":"2024-05-01T10:00:00Z"}]`))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	report := &domain.Report{UserID: "u1", Lat: 48.8566, Lng: 2.3522, Description: "theft"}
	if err := repo.Insert(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one request, got %d", calls)
	}
	if report.ID != "42" {
		t.Errorf("expected ID 42, got %q", report.ID)
	}
	if report.CreatedAt.IsZero() {
		t.Error("expected created_at to be filled")
	}
}

func TestReportRepo_Insert_UndecodableBodyStillSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>created</html>`))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	report := &domain.Report{UserID: "u1", Lat: 1, Lng: 2, Description: "theft"}
	if err := repo.Insert(context.Background(), report); err != nil {
		t.Fatalf("expected success for a 2xx insert, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one request, got %d", calls)
	}
	if report.CreatedAt.IsZero() {
		t.Error("expected created_at to be filled locally")
	}
}

func TestReportRepo_Insert_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "bad", "CrimeDB", 5*time.Second)
	err := repo.Insert(context.Background(), &domain.Report{UserID: "u1", Description: "x"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", apiErr.Status)
	}
}

func TestReportRepo_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "2" || q.Get("offset") != "4" || q.Get("order") != "created_at.desc" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Prefer") != "count=exact" {
			t.Errorf("unexpected Prefer %q", r.Header.Get("Prefer"))
		}
		w.Header().Set("Content-Range", "4-5/11")
		_, _ = w.Write([]byte(`[
			{"id":"a","user_id":"u1","latt":1,"long":2,"description":"d1","area_label":"Somewhere"},
			{"id":"b","user_id":"u2","latt":3,"long":4,"description":"d2"}
		]`))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	reports, total, err := repo.List(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 11 {
		t.Errorf("expected total 11, got %d", total)
	}
	if len(reports) != 2 || reports[0].ID != "a" || reports[0].AreaLabel != "Somewhere" || reports[1].Lng != 4 {
		t.Errorf("unexpected reports %+v", reports)
	}
}

func TestReportRepo_ListWithin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q["latt"]; len(got) != 2 || got[0] != "gte.10" || got[1] != "lte.11" {
			t.Errorf("unexpected latt filters %v", got)
		}
		if got := q["long"]; len(got) != 2 || got[0] != "gte.20" || got[1] != "lte.21.5" {
			t.Errorf("unexpected long filters %v", got)
		}
		if q.Get("order") != "id.asc" || q.Get("offset") != "0" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	reports, err := repo.ListWithin(context.Background(), domain.Bounds{MinLat: 10, MaxLat: 11, MinLng: 20, MaxLng: 21.5}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("expected no reports, got %d", len(reports))
	}
}

func TestReportRepo_ListWithin_NearestFirstAcrossPages(t *testing.T) {
	// Oldest rows are nearest the center; newer rows sit near the edge.
	pages := map[string]string{
		"0": `[
			{"id":1,"user_id":"u","latt":10.5,"long":20.5,"description":"center","created_at":"2020-01-01T00:00:00Z"},
			{"id":2,"user_id":"u","latt":10.9,"long":20.9,"description":"edge","created_at":"2024-01-01T00:00:00Z"}
		]`,
		"2": `[
			{"id":3,"user_id":"u","latt":10.51,"long":20.5,"description":"close","created_at":"2021-01-01T00:00:00Z"}
		]`,
	}
	var offsets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		offsets = append(offsets, q.Get("offset"))
		if q.Get("limit") != "2" {
			t.Errorf("expected page size 2, got %s", q.Get("limit"))
		}
		_, _ = w.Write([]byte(pages[q.Get("offset")]))
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	repo.pageSize = 2

	reports, err := repo.ListWithin(context.Background(), domain.Bounds{MinLat: 10, MaxLat: 11, MinLng: 20, MaxLng: 21}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offsets) != 2 || offsets[0] != "0" || offsets[1] != "2" {
		t.Errorf("unexpected page offsets %v", offsets)
	}
	if len(reports) != 2 || reports[0].ID != "1" || reports[1].ID != "3" {
		t.Fatalf("expected the two nearest reports, got %+v", reports)
	}
}

func TestReportRepo_UpdateAreaLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Query().Get("id") != "eq.42" {
			t.Errorf("unexpected filter %s", r.URL.RawQuery)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"area_label":"Bengaluru"}` {
			t.Errorf("unexpected body %s", b)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repo := NewReportRepo(srv.URL, "anon", "CrimeDB", 5*time.Second)
	if err := repo.UpdateAreaLabel(context.Background(), "42", "Bengaluru"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseContentRangeTotal(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0-24/3573", 3573, true},
		{"*/0", 0, true},
		{"0-9/*", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseContentRangeTotal(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseContentRangeTotal(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
