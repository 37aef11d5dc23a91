package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// PlaceSearcher maps free-text queries to candidate locations.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	Reverse(ctx context.Context, at domain.Coordinate) (string, error)
}

// Geolocator yields the device position or a failure signal
// (domain.ErrGeolocationUnsupported, domain.ErrGeolocationFailed).
type Geolocator interface {
	CurrentPosition(ctx context.Context) (domain.Coordinate, error)
}

// EventPublisher publishes report events to a message broker.
type EventPublisher interface {
	PublishReportSubmitted(ctx context.Context, event *domain.ReportSubmitted) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to report events from a message broker.
type EventSubscriber interface {
	SubscribeReportSubmitted(ctx context.Context, handler func(ctx context.Context, event *domain.ReportSubmitted) error) error
}

// ErrCacheMiss is returned by CacheService.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// CacheService is a TTL'd key/value store.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
