package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/crimereport/internal/adapters/drafts"
	"github.com/samirrijal/crimereport/internal/adapters/http"
	"github.com/samirrijal/crimereport/internal/adapters/memory"
	natsadapter "github.com/samirrijal/crimereport/internal/adapters/nats"
	"github.com/samirrijal/crimereport/internal/adapters/nominatim"
	"github.com/samirrijal/crimereport/internal/adapters/store"
	"github.com/samirrijal/crimereport/internal/adapters/valkey"
	"github.com/samirrijal/crimereport/internal/core/ports"
	"github.com/samirrijal/crimereport/internal/core/usecases"
	"github.com/samirrijal/crimereport/internal/pkg/config"
	"github.com/samirrijal/crimereport/internal/pkg/logging"
	"github.com/samirrijal/crimereport/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("crimereport-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Record store
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("record store: %v", err)
	}
	defer st.Close()
	st.ReportPoolMetrics(ctx, 15*time.Second)

	// Drafts live in Valkey; fall back to process memory for single-node runs.
	var draftCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, keeping drafts in memory", "error", err)
		draftCache = memory.NewCache()
	} else {
		defer cache.Close()
		draftCache = cache
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, report events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, time.Duration(cfg.Geocoder.Timeout)*time.Second)

	// Use cases
	placeSvc := usecases.NewPlaceService(geocoder)
	reportSvc := usecases.NewReportService(st.Reports, publisher)
	formSvc := usecases.NewFormService(drafts.New(draftCache, cfg.Form.DraftTTL), placeSvc, reportSvc, cfg.Form.DefaultUserID)

	deps := &http.Dependencies{
		Forms:       formSvc,
		Reports:     reportSvc,
		Places:      placeSvc,
		StoreDriver: cfg.Store.Driver,
		DB:          st.DB,
		Cache:       cache,
		NATS:        natsConn,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Crime Report API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps, http.DefaultRouterConfig())

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Store.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
