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

	"github.com/pedrofarias/storefinder/internal/adapters/googlemaps"
	"github.com/pedrofarias/storefinder/internal/adapters/http"
	"github.com/pedrofarias/storefinder/internal/adapters/melhorenvio"
	natsadapter "github.com/pedrofarias/storefinder/internal/adapters/nats"
	"github.com/pedrofarias/storefinder/internal/adapters/postgres"
	"github.com/pedrofarias/storefinder/internal/adapters/valkey"
	"github.com/pedrofarias/storefinder/internal/adapters/viacep"
	"github.com/pedrofarias/storefinder/internal/cache"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/core/usecases"
	"github.com/pedrofarias/storefinder/internal/pkg/config"
	"github.com/pedrofarias/storefinder/internal/pkg/logging"
	"github.com/pedrofarias/storefinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("storefinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("storefinder-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), 50)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	db.StartPoolMetrics(ctx, 15*time.Second)

	// Cache store. The service degrades to live provider calls without it.
	var cacheStore ports.CacheStore
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vk.Close()
		cacheStore = vk
	}
	if cacheStore == nil {
		cacheStore = noopCache{}
	}

	// NATS change events, best-effort
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// External providers
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	postal := viacep.New(cfg.Providers.ViaCEPURL, timeout)
	geocoder := googlemaps.NewGeocoder(cfg.Providers.GeocodingURL, cfg.Providers.GoogleAPIKey, timeout)
	distances := googlemaps.NewDistanceMatrix(cfg.Providers.DistanceURL, cfg.Providers.GoogleAPIKey, timeout)
	shipping := melhorenvio.New(cfg.Providers.MelhorEnvioURL, cfg.Providers.MelhorEnvioToken, timeout)

	// Cache-aside wrappers
	cachedGeocoder := cache.NewGeocoder(geocoder, cacheStore, cfg.Cache.GeocodingTTL)
	cachedDistances := cache.NewDistanceCache(distances, cacheStore, cfg.Cache.DistanceTTL, cfg.Proximity.DistanceBatchLimit)
	cachedShipping := cache.NewShippingCache(shipping, cacheStore, cfg.Cache.ShippingTTL)

	// Repos
	storeRepo := postgres.NewStoreRepo(db)
	pdvRepo := postgres.NewPDVRepo(db)

	// Use cases
	resolver := usecases.NewLocationResolver(postal, cachedGeocoder, cacheStore, cfg.Cache.LocationTTL)
	proximity := usecases.NewProximityService(resolver, cachedDistances, cachedShipping, cfg.Proximity.PDVRadiusKm)
	storeSvc := usecases.NewStoreService(storeRepo, pdvRepo, proximity, events)
	pdvSvc := usecases.NewPDVService(pdvRepo, storeRepo, proximity, events)

	deps := http.NewDependencies(storeSvc, pdvSvc)
	deps.DB = db
	deps.Cache = vk
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "StoreFinder API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// noopCache stands in when Valkey is down at startup; every Get is a miss
// and writes vanish, so the service runs purely against live providers.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ports.ErrCacheMiss
}

func (noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, key string) error { return nil }
