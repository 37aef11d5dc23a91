package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/ports"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// PlaceService handles place-search lookups.
type PlaceService struct {
	places ports.PlaceSearcher
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(places ports.PlaceSearcher) *PlaceService {
	return &PlaceService{places: places}
}

// Search sends the raw query to the place-search service and returns its
// response as-is. No pagination, de-duplication or caching is applied.
func (s *PlaceService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	ctx, span := tracer.Start(ctx, "PlaceService.Search")
	defer span.End()

	results, err := s.places.Search(ctx, query)
	if err != nil {
		metrics.PlaceSearches.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("place search: %w", err)
	}
	metrics.PlaceSearches.WithLabelValues("ok").Inc()
	return results, nil
}

// AreaLabel returns a human-readable name for a coordinate.
func (s *PlaceService) AreaLabel(ctx context.Context, at domain.Coordinate) (string, error) {
	label, err := s.places.Reverse(ctx, at)
	if err != nil {
		return "", fmt.Errorf("reverse lookup: %w", err)
	}
	return label, nil
}
