package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/crimereport/internal/adapters/nats"
	"github.com/samirrijal/crimereport/internal/adapters/nominatim"
	"github.com/samirrijal/crimereport/internal/adapters/store"
	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/core/usecases"
	"github.com/samirrijal/crimereport/internal/pkg/config"
	"github.com/samirrijal/crimereport/internal/pkg/logging"
	"github.com/samirrijal/crimereport/internal/pkg/telemetry"
	"github.com/samirrijal/crimereport/internal/workflows"
)

func main() {
	cfg, err := config.Load("crimereport-dispatcher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("record store: %v", err)
	}
	defer st.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	geocoder := nominatim.New(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, time.Duration(cfg.Geocoder.Timeout)*time.Second)
	placeSvc := usecases.NewPlaceService(geocoder)
	reportSvc := usecases.NewReportService(st.Reports, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
		Logger:   temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ReportDispatchWorkflow)
	w.RegisterActivity(&workflows.DispatchActivities{
		Labeler:   placeSvc,
		Labels:    reportSvc,
		Publisher: pub,
	})

	// One workflow per stored report
	err = sub.SubscribeReportSubmitted(ctx, func(ctx context.Context, event *domain.ReportSubmitted) error {
		return workflows.StartDispatch(ctx, c, cfg.Temporal.TaskQueue, event)
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("dispatcher worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
