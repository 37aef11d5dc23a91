package ports

import (
	"context"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// ReportRepository is the record store receiving submitted reports.
type ReportRepository interface {
	// Insert stores a new report and fills in its ID and creation time.
	Insert(ctx context.Context, report *domain.Report) error
	List(ctx context.Context, limit, offset int) ([]domain.Report, int, error)
	// ListWithin returns up to limit reports inside the box, nearest to the
	// box center first.
	ListWithin(ctx context.Context, box domain.Bounds, limit int) ([]domain.Report, error)
	UpdateAreaLabel(ctx context.Context, id, label string) error
}

// DraftRepository keeps report drafts between form interactions.
type DraftRepository interface {
	Get(ctx context.Context, id string) (*domain.ReportDraft, error)
	Save(ctx context.Context, draft *domain.ReportDraft) error
	Delete(ctx context.Context, id string) error
}
