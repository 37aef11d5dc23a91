// Package drafts stores report drafts as JSON in a TTL'd cache (Valkey in
// production, memory otherwise).
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/ports"
)

const keyPrefix = "drafts:"

// Repo implements ports.DraftRepository on a ports.CacheService.
type Repo struct {
	cache      ports.CacheService
	ttlSeconds int
}

// New creates a draft repository. Each save refreshes the ttl.
func New(cache ports.CacheService, ttlSeconds int) *Repo {
	return &Repo{cache: cache, ttlSeconds: ttlSeconds}
}

func (r *Repo) Get(ctx context.Context, id string) (*domain.ReportDraft, error) {
	b, err := r.cache.Get(ctx, keyPrefix+id)
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft %s: %w", id, err)
	}

	var d domain.ReportDraft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	if d.SearchResults == nil {
		d.SearchResults = []domain.SearchResult{}
	}
	return &d, nil
}

func (r *Repo) Save(ctx context.Context, d *domain.ReportDraft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.ID, err)
	}
	return r.cache.Set(ctx, keyPrefix+d.ID, b, r.ttlSeconds)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, keyPrefix+id)
}
