package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// RouterConfig tunes SetupRoutes.
type RouterConfig struct {
	// RateLimit is the number of requests per minute per IP; 0 disables it.
	RateLimit   int
	OpenAPIPath string
}

// DefaultRouterConfig is used by the API server.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{RateLimit: 120, OpenAPIPath: "api/openapi.yaml"}
}

// SetupRoutes registers the form page and all REST, GraphQL and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Report form
	app.Get("/", FormPageHandler())

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// 15s per-request timeout; outbound calls inherit it.
	withTimeout := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, 15*time.Second)
	}

	v1 := app.Group("/v1")

	// Drafts: the form controller
	v1.Post("/drafts", withTimeout(OpenDraftHandler(deps)))
	v1.Get("/drafts/:id", withTimeout(GetDraftHandler(deps)))
	v1.Delete("/drafts/:id", withTimeout(DiscardDraftHandler(deps)))
	v1.Post("/drafts/:id/locate", withTimeout(LocateHandler(deps)))
	v1.Post("/drafts/:id/search", withTimeout(SearchDraftHandler(deps)))
	v1.Post("/drafts/:id/select", withTimeout(SelectResultHandler(deps)))
	v1.Put("/drafts/:id/coordinate", withTimeout(SelectOnMapHandler(deps)))
	v1.Put("/drafts/:id/description", withTimeout(SetDescriptionHandler(deps)))
	v1.Post("/drafts/:id/submit", withTimeout(SubmitDraftHandler(deps)))

	// Stateless API
	v1.Get("/places/search", withTimeout(SearchPlacesHandler(deps)))
	v1.Get("/reports", withTimeout(ListReportsHandler(deps)))
	v1.Post("/reports", withTimeout(CreateReportHandler(deps)))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, cfg.OpenAPIPath)

	// WebSocket live feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return errUnavailable(c, "live feed not configured")
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		WebSocketHandler(deps.NATS)(c)
	}))
}
