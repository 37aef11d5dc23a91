package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/usecases"
)

type formFixture struct {
	svc     *usecases.FormService
	drafts  *mockDraftRepo
	reports *mockReportRepo
	places  *mockPlaces
}

func newFormFixture(defaultUserID string) *formFixture {
	f := &formFixture{
		drafts:  newMockDraftRepo(),
		reports: &mockReportRepo{},
		places:  &mockPlaces{},
	}
	f.svc = usecases.NewFormService(
		f.drafts,
		usecases.NewPlaceService(f.places),
		usecases.NewReportService(f.reports, nil),
		defaultUserID,
	)
	return f
}

func parisResults(t *testing.T) []domain.SearchResult {
	t.Helper()
	var results []domain.SearchResult
	err := json.Unmarshal([]byte(`[
		{"display_name":"Paris, Île-de-France, France","lat":"48.8588897","lon":"2.3200410"},
		{"display_name":"Paris, France","lat":"48.8566","lon":"2.3522"},
		{"display_name":"Paris, Texas","lat":"33.6609","lon":"-95.5555"}
	]`), &results)
	if err != nil {
		t.Fatal(err)
	}
	return results
}

func TestFormService_Open_DefaultUser(t *testing.T) {
	f := newFormFixture("anonymous")
	d, err := f.svc.Open(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.UserID != "anonymous" {
		t.Errorf("expected default user id, got %q", d.UserID)
	}

	d, _ = f.svc.Open(context.Background(), "u-42")
	if d.UserID != "u-42" {
		t.Errorf("expected u-42, got %q", d.UserID)
	}
}

func TestFormService_Locate_Success(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")

	d, alert, err := f.svc.Locate(ctx, d.ID, geoFunc(func(ctx context.Context) (domain.Coordinate, error) {
		return domain.Coordinate{Lat: 12.9, Lng: 77.6}, nil
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Errorf("expected no alert, got %+v", alert)
	}
	want := domain.Coordinate{Lat: 12.9, Lng: 77.6}
	if d.Coordinate == nil || *d.Coordinate != want {
		t.Errorf("expected coordinate %+v, got %+v", want, d.Coordinate)
	}
	if d.View.Center != want || d.View.Zoom != domain.ZoomHaveLocation {
		t.Errorf("unexpected view %+v", d.View)
	}
}

func TestFormService_Locate_Failure(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")

	d, alert, err := f.svc.Locate(ctx, d.ID, geoFunc(func(ctx context.Context) (domain.Coordinate, error) {
		return domain.Coordinate{}, domain.ErrGeolocationFailed
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Errorf("expected silent fallback, got %+v", alert)
	}
	if d.Coordinate == nil || *d.Coordinate != domain.DefaultCenter {
		t.Errorf("expected default coordinate, got %+v", d.Coordinate)
	}
	if d.View.Center != domain.DefaultCenter || d.View.Zoom != domain.ZoomNoLocation {
		t.Errorf("unexpected view %+v", d.View)
	}
}

func TestFormService_Locate_Unsupported(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")

	d, alert, err := f.svc.Locate(ctx, d.ID, geoFunc(func(ctx context.Context) (domain.Coordinate, error) {
		return domain.Coordinate{}, domain.ErrGeolocationUnsupported
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil || alert.Message != domain.MsgGeolocationUnsupported {
		t.Errorf("expected unsupported alert, got %+v", alert)
	}
	if d.Coordinate != nil || d.CurrentLocation != nil {
		t.Errorf("expected no coordinate, got %+v / %+v", d.Coordinate, d.CurrentLocation)
	}
	if d.View != domain.DefaultView() {
		t.Errorf("expected default view, got %+v", d.View)
	}

	if _, err := f.svc.SetDescription(ctx, d.ID, "theft"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, alert, err = f.svc.Submit(ctx, d.ID)
	if err == nil {
		t.Fatal("expected missing fields error")
	}
	if alert == nil || alert.Message != domain.MsgMissingFields {
		t.Errorf("expected missing fields alert, got %+v", alert)
	}
	if len(f.reports.inserted) != 0 {
		t.Errorf("expected no inserts, got %d", len(f.reports.inserted))
	}
}

func TestFormService_Search_Empty(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")
	f.places.searchFn = func(ctx context.Context, q string) ([]domain.SearchResult, error) {
		return parisResults(t), nil
	}
	d, _ = f.svc.Search(ctx, d.ID, "paris")

	d, err := f.svc.Search(ctx, d.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.places.searches) != 1 {
		t.Errorf("expected 1 lookup, got %d", len(f.places.searches))
	}
	if len(d.SearchResults) != 3 {
		t.Errorf("expected results unchanged, got %d", len(d.SearchResults))
	}
}

func TestFormService_Search_ReplacesResults(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	f.places.searchFn = func(ctx context.Context, q string) ([]domain.SearchResult, error) {
		if q != "paris" {
			t.Errorf("expected raw query 'paris', got %q", q)
		}
		return parisResults(t), nil
	}
	d, _ := f.svc.Open(ctx, "u1")

	d, err := f.svc.Search(ctx, d.ID, "paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.places.searches) != 1 {
		t.Fatalf("expected exactly 1 lookup, got %d", len(f.places.searches))
	}
	if len(d.SearchResults) != 3 || d.SearchResults[1].DisplayName != "Paris, France" {
		t.Errorf("unexpected results %+v", d.SearchResults)
	}
}

func TestFormService_Search_FailureKeepsResults(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")
	f.places.searchFn = func(ctx context.Context, q string) ([]domain.SearchResult, error) {
		return parisResults(t), nil
	}
	_, _ = f.svc.Search(ctx, d.ID, "paris")

	f.places.searchFn = func(ctx context.Context, q string) ([]domain.SearchResult, error) {
		return nil, errors.New("connection reset")
	}
	d, err := f.svc.Search(ctx, d.ID, "london")
	if err != nil {
		t.Fatalf("search failures must not surface, got %v", err)
	}
	if len(d.SearchResults) != 3 {
		t.Errorf("expected prior results kept, got %d", len(d.SearchResults))
	}
}

func TestFormService_SearchThenSelect(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	f.places.searchFn = func(ctx context.Context, q string) ([]domain.SearchResult, error) {
		return parisResults(t), nil
	}
	d, _ := f.svc.Open(ctx, "u1")
	d, _ = f.svc.Search(ctx, d.ID, "Paris")

	d, err := f.svc.SelectResult(ctx, d.ID, d.SearchResults[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Coordinate == nil || *d.Coordinate != (domain.Coordinate{Lat: 48.8566, Lng: 2.3522}) {
		t.Errorf("unexpected coordinate %+v", d.Coordinate)
	}
	if len(d.SearchResults) != 0 {
		t.Errorf("expected empty results, got %d", len(d.SearchResults))
	}
}

func TestFormService_SelectOnMap(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")
	_, _ = f.svc.SelectOnMap(ctx, d.ID, domain.Coordinate{Lat: 1, Lng: 1})

	d, err := f.svc.SelectOnMap(ctx, d.ID, domain.Coordinate{Lat: 51.5072, Lng: -0.1276})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *d.Coordinate != (domain.Coordinate{Lat: 51.5072, Lng: -0.1276}) {
		t.Errorf("unexpected coordinate %+v", d.Coordinate)
	}
}

func TestFormService_Submit_Success(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	d, _ := f.svc.Open(ctx, "u1")
	_, _ = f.svc.SelectOnMap(ctx, d.ID, domain.Coordinate{Lat: 48.8566, Lng: 2.3522})
	_, _ = f.svc.SetDescription(ctx, d.ID, "pickpocket near the metro")

	report, alert, err := f.svc.Submit(ctx, d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Kind != domain.AlertSuccess || alert.Message != domain.MsgSubmitted {
		t.Errorf("unexpected alert %+v", alert)
	}
	if len(f.reports.inserted) != 1 {
		t.Fatalf("expected exactly 1 insert, got %d", len(f.reports.inserted))
	}
	got := f.reports.inserted[0]
	if got.UserID != "u1" || got.Lat != 48.8566 || got.Lng != 2.3522 || got.Description != "pickpocket near the metro" {
		t.Errorf("unexpected insert %+v", got)
	}
	if report.ID != "1" {
		t.Errorf("expected stored id, got %q", report.ID)
	}

	// the draft is not reset after submission
	d, _ = f.svc.Get(ctx, d.ID)
	if d.Description != "pickpocket near the metro" || d.Coordinate == nil {
		t.Errorf("draft was cleared: %+v", d)
	}
}

func TestFormService_Submit_StoreFailure(t *testing.T) {
	f := newFormFixture("")
	ctx := context.Background()
	f.reports.insertFn = func(ctx context.Context, r *domain.Report) error {
		return errors.New("permission denied for table CrimeDB")
	}
	d, _ := f.svc.Open(ctx, "u1")
	_, _ = f.svc.SelectOnMap(ctx, d.ID, domain.Coordinate{Lat: 1, Lng: 2})
	_, _ = f.svc.SetDescription(ctx, d.ID, "vandalism")

	_, alert, err := f.svc.Submit(ctx, d.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	if alert == nil || alert.Message != domain.MsgSubmitFailed {
		t.Errorf("unexpected alert %+v", alert)
	}

	// resubmission re-sends the same payload as a new record
	_, _, _ = f.svc.Submit(ctx, d.ID)
	if len(f.reports.inserted) != 2 {
		t.Errorf("expected 2 insert attempts, got %d", len(f.reports.inserted))
	}
}

func TestFormService_Submit_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		setup  func(f *formFixture, id string)
	}{
		{"no coordinate", "u1", func(f *formFixture, id string) {
			_, _ = f.svc.SetDescription(context.Background(), id, "theft")
		}},
		{"empty description", "u1", func(f *formFixture, id string) {
			_, _ = f.svc.SelectOnMap(context.Background(), id, domain.Coordinate{Lat: 1, Lng: 1})
		}},
		{"no user", "", func(f *formFixture, id string) {
			_, _ = f.svc.SelectOnMap(context.Background(), id, domain.Coordinate{Lat: 1, Lng: 1})
			_, _ = f.svc.SetDescription(context.Background(), id, "theft")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFormFixture("")
			d, _ := f.svc.Open(context.Background(), tc.userID)
			tc.setup(f, d.ID)

			_, alert, err := f.svc.Submit(context.Background(), d.ID)
			if !errors.Is(err, domain.ErrMissingFields) {
				t.Errorf("expected ErrMissingFields, got %v", err)
			}
			if alert == nil || alert.Message != domain.MsgMissingFields {
				t.Errorf("unexpected alert %+v", alert)
			}
			if len(f.reports.inserted) != 0 {
				t.Errorf("expected zero inserts, got %d", len(f.reports.inserted))
			}
		})
	}
}

func TestFormService_UnknownDraft(t *testing.T) {
	f := newFormFixture("")
	_, err := f.svc.SelectOnMap(context.Background(), "missing", domain.Coordinate{})
	if !errors.Is(err, domain.ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound, got %v", err)
	}
	_, err = f.svc.Search(context.Background(), "missing", "paris")
	if !errors.Is(err, domain.ErrDraftNotFound) {
		t.Errorf("expected ErrDraftNotFound, got %v", err)
	}
	if len(f.places.searches) != 0 {
		t.Errorf("expected no lookup for unknown draft")
	}
}
