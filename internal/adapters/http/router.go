package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/pedrofarias/storefinder/internal/pkg/metrics"
)

const handlerTimeout = 15 * time.Second

// SetupRoutes registers middleware and all REST routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Stores. Literal segments before :id so "states" never matches as an ID.
	v1.Post("/stores", timeout.NewWithContext(CreateStoreHandler(deps), handlerTimeout))
	v1.Get("/stores", timeout.NewWithContext(ListStoresHandler(deps), handlerTimeout))
	v1.Get("/stores/states", timeout.NewWithContext(StoresGroupedByStateHandler(deps), handlerTimeout))
	v1.Get("/stores/nearby", timeout.NewWithContext(NearbyStoresHandler(deps), handlerTimeout))
	v1.Get("/stores/state/:uf", timeout.NewWithContext(StoresByStateHandler(deps), handlerTimeout))
	v1.Get("/stores/cep/:cep", timeout.NewWithContext(StoresByCEPHandler(deps), handlerTimeout))
	v1.Get("/stores/:id", timeout.NewWithContext(GetStoreHandler(deps), handlerTimeout))
	v1.Put("/stores/:id", timeout.NewWithContext(UpdateStoreHandler(deps), handlerTimeout))
	v1.Delete("/stores/:id", timeout.NewWithContext(DeleteStoreHandler(deps), handlerTimeout))

	// PDVs
	v1.Post("/pdvs", timeout.NewWithContext(CreatePDVHandler(deps), handlerTimeout))
	v1.Get("/pdvs", timeout.NewWithContext(ListPDVsHandler(deps), handlerTimeout))
	v1.Get("/pdvs/state/:uf", timeout.NewWithContext(PDVsByStateHandler(deps), handlerTimeout))
	v1.Get("/pdvs/cep/:cep", timeout.NewWithContext(PDVsByCEPHandler(deps), handlerTimeout))
	v1.Get("/pdvs/:id", timeout.NewWithContext(GetPDVHandler(deps), handlerTimeout))
	v1.Put("/pdvs/:id", timeout.NewWithContext(UpdatePDVHandler(deps), handlerTimeout))
	v1.Delete("/pdvs/:id", timeout.NewWithContext(DeletePDVHandler(deps), handlerTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)
}
