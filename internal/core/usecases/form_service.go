package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/ports"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// FormService is the location selection & submission controller. Each
// operation loads the draft, applies one transition and saves it again, so
// whichever call resolves last wins.
type FormService struct {
	drafts        ports.DraftRepository
	places        *PlaceService
	reports       *ReportService
	defaultUserID string
	newID         func() string
}

// NewFormService creates a new FormService. When defaultUserID is non-empty it
// is used for drafts opened without a user identifier.
func NewFormService(drafts ports.DraftRepository, places *PlaceService, reports *ReportService, defaultUserID string) *FormService {
	return &FormService{
		drafts:        drafts,
		places:        places,
		reports:       reports,
		defaultUserID: defaultUserID,
		newID:         uuid.NewString,
	}
}

// Open creates a draft showing the default world view.
func (s *FormService) Open(ctx context.Context, userID string) (*domain.ReportDraft, error) {
	if userID == "" {
		userID = s.defaultUserID
	}
	d := domain.NewReportDraft(s.newID(), userID)
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	metrics.DraftsOpened.Inc()
	return d, nil
}

// Get returns the current state of a draft.
func (s *FormService) Get(ctx context.Context, id string) (*domain.ReportDraft, error) {
	return s.drafts.Get(ctx, id)
}

// Locate asks geo for the device position once. A failed lookup falls back to
// the default center. A missing capability changes nothing and only produces
// an alert, so the coordinate stays unset until the user picks one.
func (s *FormService) Locate(ctx context.Context, id string, geo ports.Geolocator) (*domain.ReportDraft, *domain.Alert, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pos, geoErr := geo.CurrentPosition(ctx)
	if errors.Is(geoErr, domain.ErrGeolocationUnsupported) {
		metrics.GeolocationFallbacks.WithLabelValues("unsupported").Inc()
		return d, &domain.Alert{Kind: domain.AlertError, Message: domain.MsgGeolocationUnsupported}, nil
	}

	d, err = s.mutate(ctx, id, func(d *domain.ReportDraft) {
		if geoErr != nil {
			d.ApplyFallback()
			return
		}
		d.ApplyPosition(pos)
	})
	if err != nil {
		return nil, nil, err
	}

	if geoErr != nil {
		metrics.GeolocationFallbacks.WithLabelValues("failed").Inc()
		slog.DebugContext(ctx, "geolocation failed, using default center", "draft_id", id, "error", geoErr)
	}
	return d, nil, nil
}

// Search replaces the draft's results with the response for query. An empty
// query is a no-op. A failed lookup leaves the previous results in place.
func (s *FormService) Search(ctx context.Context, id, query string) (*domain.ReportDraft, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return d, nil
	}

	results, err := s.places.Search(ctx, query)
	if err != nil {
		slog.WarnContext(ctx, "place search failed", "draft_id", id, "error", err)
		return d, nil
	}

	return s.mutate(ctx, id, func(d *domain.ReportDraft) {
		d.ReplaceResults(results)
	})
}

// SelectResult moves the coordinate to item and clears the results.
func (s *FormService) SelectResult(ctx context.Context, id string, item domain.SearchResult) (*domain.ReportDraft, error) {
	return s.mutate(ctx, id, func(d *domain.ReportDraft) {
		d.SelectResult(item)
	})
}

// SelectOnMap moves the coordinate to a clicked map point.
func (s *FormService) SelectOnMap(ctx context.Context, id string, p domain.Coordinate) (*domain.ReportDraft, error) {
	return s.mutate(ctx, id, func(d *domain.ReportDraft) {
		d.SelectOnMap(p)
	})
}

// SetDescription replaces the description text.
func (s *FormService) SetDescription(ctx context.Context, id, text string) (*domain.ReportDraft, error) {
	return s.mutate(ctx, id, func(d *domain.ReportDraft) {
		d.SetDescription(text)
	})
}

// Submit checks the draft and inserts one report. The returned alert is always
// set unless the draft itself could not be loaded. The draft is left as-is.
func (s *FormService) Submit(ctx context.Context, id string) (*domain.Report, *domain.Alert, error) {
	ctx, span := tracer.Start(ctx, "FormService.Submit")
	defer span.End()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	report, err := d.Report()
	if err != nil {
		metrics.ReportsSubmitted.WithLabelValues("rejected").Inc()
		return nil, &domain.Alert{Kind: domain.AlertError, Message: domain.MsgMissingFields}, err
	}

	stored, err := s.reports.insert(ctx, report)
	if err != nil {
		slog.ErrorContext(ctx, "report submission failed", "draft_id", id, "error", err)
		return nil, &domain.Alert{Kind: domain.AlertError, Message: domain.MsgSubmitFailed}, err
	}

	return stored, &domain.Alert{Kind: domain.AlertSuccess, Message: domain.MsgSubmitted}, nil
}

// Discard removes a draft.
func (s *FormService) Discard(ctx context.Context, id string) error {
	return s.drafts.Delete(ctx, id)
}

func (s *FormService) mutate(ctx context.Context, id string, fn func(d *domain.ReportDraft)) (*domain.ReportDraft, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(d)
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}
