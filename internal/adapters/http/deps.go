package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/crimereport/internal/adapters/postgres"
	"github.com/samirrijal/crimereport/internal/adapters/valkey"
	"github.com/samirrijal/crimereport/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Forms   *usecases.FormService
	Reports *usecases.ReportService
	Places  *usecases.PlaceService

	// StoreDriver is "supabase" or "postgres"; DB is only set for postgres.
	StoreDriver string
	DB          *postgres.DB
	Cache       *valkey.Cache
	NATS        *nats.Conn
}
