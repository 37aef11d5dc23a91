package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimereport",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimereport",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Report intake metrics
	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimereport",
		Subsystem: "reports",
		Name:      "submissions_total",
		Help:      "Report submissions by outcome (stored, failed, rejected)",
	}, []string{"outcome"})

	DraftsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crimereport",
		Subsystem: "reports",
		Name:      "drafts_opened_total",
		Help:      "Total report forms opened",
	})

	PlaceSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimereport",
		Subsystem: "geocoder",
		Name:      "searches_total",
		Help:      "Place-search lookups by outcome",
	}, []string{"outcome"})

	GeocoderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimereport",
		Subsystem: "geocoder",
		Name:      "request_duration_seconds",
		Help:      "Duration of outbound geocoder requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	GeolocationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimereport",
		Subsystem: "reports",
		Name:      "geolocation_fallbacks_total",
		Help:      "Forms that fell back to the default map center",
	}, []string{"reason"})

	StoreRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimereport",
		Subsystem: "store",
		Name:      "request_duration_seconds",
		Help:      "Duration of record store calls",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"driver", "operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimereport",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimereport",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimereport",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "crimereport",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveStore records the duration of a record store call started at start.
func ObserveStore(driver, operation string, start time.Time) {
	StoreRequestDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool.Stat.
func UpdateDBPoolMetrics(stat interface{}) {
	// Kept as an interface so this package does not import pgxpool.
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
