package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/ports"
	"github.com/samirrijal/crimereport/internal/pkg/geospatial"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// ReportService handles report submission and listing.
type ReportService struct {
	reports   ports.ReportRepository
	publisher ports.EventPublisher
}

// NewReportService creates a new ReportService. publisher may be nil.
func NewReportService(reports ports.ReportRepository, publisher ports.EventPublisher) *ReportService {
	return &ReportService{reports: reports, publisher: publisher}
}

// Create validates the four fields and performs exactly one insert. The call is
// not retried; a repeated call stores a second record.
func (s *ReportService) Create(ctx context.Context, userID string, at domain.Coordinate, description string) (*domain.Report, error) {
	report, err := domain.NewReport(userID, at, description)
	if err != nil {
		metrics.ReportsSubmitted.WithLabelValues("rejected").Inc()
		return nil, err
	}
	return s.insert(ctx, report)
}

func (s *ReportService) insert(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "ReportService.Insert")
	defer span.End()

	if err := s.reports.Insert(ctx, report); err != nil {
		metrics.ReportsSubmitted.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("insert report: %w", err)
	}
	metrics.ReportsSubmitted.WithLabelValues("stored").Inc()

	// Best-effort: the submit outcome only depends on the insert.
	if s.publisher != nil {
		event := &domain.ReportSubmitted{Report: *report, SubmittedAt: time.Now().UTC()}
		if err := s.publisher.PublishReportSubmitted(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish report submitted failed", "report_id", report.ID, "error", err)
		}
	}

	return report, nil
}

// List returns a page of reports, newest first, and the total count.
func (s *ReportService) List(ctx context.Context, limit, offset int) ([]domain.Report, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.reports.List(ctx, limit, offset)
}

// ListNear returns reports within radiusMeters of center, nearest first.
func (s *ReportService) ListNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, limit int) ([]domain.Report, error) {
	if radiusMeters <= 0 {
		return nil, errors.New("radius must be positive")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(center.Lat, center.Lng, radiusMeters)
	box := domain.Bounds{MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng}

	// Candidates come nearest first. The box over-selects at the corners, so
	// trim with the exact distance.
	candidates, err := s.reports.ListWithin(ctx, box, limit*2)
	if err != nil {
		return nil, err
	}

	near := make([]domain.Report, 0, len(candidates))
	for _, r := range candidates {
		d := geospatial.Haversine(center.Lat, center.Lng, r.Lat, r.Lng)
		if d > radiusMeters {
			continue
		}
		r.Distance = &d
		near = append(near, r)
	}
	sort.SliceStable(near, func(i, j int) bool { return *near[i].Distance < *near[j].Distance })
	if len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}

// SetAreaLabel stores the reverse-geocoded label of a report.
func (s *ReportService) SetAreaLabel(ctx context.Context, id, label string) error {
	if err := s.reports.UpdateAreaLabel(ctx, id, label); err != nil {
		return fmt.Errorf("update area label: %w", err)
	}
	return nil
}
