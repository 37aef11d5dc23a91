// Package store opens the record store selected by store.driver.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/crimereport/internal/adapters/postgres"
	"github.com/samirrijal/crimereport/internal/adapters/supabase"
	"github.com/samirrijal/crimereport/internal/core/ports"
	"github.com/samirrijal/crimereport/internal/pkg/config"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// Store is an opened record store. DB is only set for the postgres driver.
type Store struct {
	Reports ports.ReportRepository
	DB      *postgres.DB
}

// Open connects to the configured record store.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case "supabase":
		timeout := time.Duration(cfg.Store.Timeout) * time.Second
		return &Store{Reports: supabase.NewReportRepo(cfg.Store.URL, cfg.Store.Key, cfg.Store.Table, timeout)}, nil
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		return &Store{Reports: postgres.NewReportRepo(db, cfg.Store.Table), DB: db}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// ReportPoolMetrics publishes pool gauges every interval until ctx is done.
// It is a no-op for the hosted store.
func (s *Store) ReportPoolMetrics(ctx context.Context, interval time.Duration) {
	if s.DB == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(s.DB.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close releases the connection pool, if any.
func (s *Store) Close() {
	if s.DB != nil {
		s.DB.Close()
		slog.Info("database pool closed")
	}
}
