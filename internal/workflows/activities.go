package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/ports"
)

// AreaLabeler reverse-geocodes a coordinate. Satisfied by *usecases.PlaceService.
type AreaLabeler interface {
	AreaLabel(ctx context.Context, at domain.Coordinate) (string, error)
}

// LabelStore persists an area label. Satisfied by *usecases.ReportService.
type LabelStore interface {
	SetAreaLabel(ctx context.Context, id, label string) error
}

// Broadcast is the message sent to live pages.
type Broadcast struct {
	Type   string        `json:"type"`
	Report domain.Report `json:"report"`
}

// DispatchActivities holds the activity implementations for the dispatch workflow.
type DispatchActivities struct {
	Labeler   AreaLabeler
	Labels    LabelStore
	Publisher ports.EventPublisher
}

// LookupAreaLabel returns the display name of the place nearest to the report.
func (a *DispatchActivities) LookupAreaLabel(ctx context.Context, lat, lng float64) (string, error) {
	label, err := a.Labeler.AreaLabel(ctx, domain.Coordinate{Lat: lat, Lng: lng})
	if err != nil {
		return "", fmt.Errorf("lookup area label: %w", err)
	}
	return label, nil
}

// SaveAreaLabel stores the label on the report.
func (a *DispatchActivities) SaveAreaLabel(ctx context.Context, reportID, label string) error {
	return a.Labels.SetAreaLabel(ctx, reportID, label)
}

// BroadcastReport pushes the report to live pages.
func (a *DispatchActivities) BroadcastReport(ctx context.Context, report domain.Report) error {
	if a.Publisher == nil {
		slog.InfoContext(ctx, "broadcast skipped, no publisher", "report_id", report.ID)
		return nil
	}
	data, err := json.Marshal(Broadcast{Type: "report", Report: report})
	if err != nil {
		return err
	}
	return a.Publisher.PublishBroadcast(ctx, data)
}
