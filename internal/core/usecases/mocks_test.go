package usecases_test

import (
	"context"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// --- Mock ReportRepository ---

type mockReportRepo struct {
	insertFn     func(ctx context.Context, r *domain.Report) error
	listFn       func(ctx context.Context, limit, offset int) ([]domain.Report, int, error)
	listWithinFn func(ctx context.Context, box domain.Bounds, limit int) ([]domain.Report, error)
	labelFn      func(ctx context.Context, id, label string) error

	inserted []domain.Report
}

func (m *mockReportRepo) Insert(ctx context.Context, r *domain.Report) error {
	m.inserted = append(m.inserted, *r)
	if m.insertFn != nil {
		return m.insertFn(ctx, r)
	}
	r.ID = "1"
	return nil
}

func (m *mockReportRepo) List(ctx context.Context, limit, offset int) ([]domain.Report, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockReportRepo) ListWithin(ctx context.Context, box domain.Bounds, limit int) ([]domain.Report, error) {
	if m.listWithinFn != nil {
		return m.listWithinFn(ctx, box, limit)
	}
	return nil, nil
}

func (m *mockReportRepo) UpdateAreaLabel(ctx context.Context, id, label string) error {
	if m.labelFn != nil {
		return m.labelFn(ctx, id, label)
	}
	return nil
}

// --- Mock DraftRepository ---

type mockDraftRepo struct {
	drafts map[string]domain.ReportDraft
}

func newMockDraftRepo() *mockDraftRepo {
	return &mockDraftRepo{drafts: make(map[string]domain.ReportDraft)}
}

func (m *mockDraftRepo) Get(ctx context.Context, id string) (*domain.ReportDraft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return &d, nil
}

func (m *mockDraftRepo) Save(ctx context.Context, d *domain.ReportDraft) error {
	m.drafts[d.ID] = *d
	return nil
}

func (m *mockDraftRepo) Delete(ctx context.Context, id string) error {
	delete(m.drafts, id)
	return nil
}

// --- Mock PlaceSearcher ---

type mockPlaces struct {
	searchFn  func(ctx context.Context, query string) ([]domain.SearchResult, error)
	reverseFn func(ctx context.Context, at domain.Coordinate) (string, error)

	searches []string
}

func (m *mockPlaces) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	m.searches = append(m.searches, query)
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockPlaces) Reverse(ctx context.Context, at domain.Coordinate) (string, error) {
	if m.reverseFn != nil {
		return m.reverseFn(ctx, at)
	}
	return "", nil
}

// --- Mock Geolocator ---

type geoFunc func(ctx context.Context) (domain.Coordinate, error)

func (f geoFunc) CurrentPosition(ctx context.Context) (domain.Coordinate, error) { return f(ctx) }

// --- Mock EventPublisher ---

type mockPublisher struct {
	submitted []domain.ReportSubmitted
	err       error
}

func (m *mockPublisher) PublishReportSubmitted(ctx context.Context, e *domain.ReportSubmitted) error {
	m.submitted = append(m.submitted, *e)
	return m.err
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }
