package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Proximity ProximityConfig `mapstructure:"proximity"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ProvidersConfig configures the external lookup/geocoding/distance/shipping
// HTTP APIs. URLs are overridable so tests can point at local stubs.
type ProvidersConfig struct {
	ViaCEPURL        string `mapstructure:"viacep_url"`
	GoogleAPIKey     string `mapstructure:"google_api_key"`
	GeocodingURL     string `mapstructure:"geocoding_url"`
	DistanceURL      string `mapstructure:"distance_url"`
	MelhorEnvioURL   string `mapstructure:"melhorenvio_url"`
	MelhorEnvioToken string `mapstructure:"melhorenvio_token"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

// CacheConfig carries the per-operation TTLs. Each cache type is tunable on
// its own: geocoded addresses rarely move, shipping prices change hourly.
type CacheConfig struct {
	LocationTTL  time.Duration `mapstructure:"location_ttl"`
	GeocodingTTL time.Duration `mapstructure:"geocoding_ttl"`
	DistanceTTL  time.Duration `mapstructure:"distance_ttl"`
	ShippingTTL  time.Duration `mapstructure:"shipping_ttl"`
}

// ProximityConfig carries the proximity-search policy constants. Both values
// are business-policy choices, not derived from any algorithmic constraint.
type ProximityConfig struct {
	// DistanceBatchLimit is the destination count above which per-pair
	// distance caching is bypassed in favor of one uncached batched call.
	DistanceBatchLimit int `mapstructure:"distance_batch_limit"`
	// PDVRadiusKm is the short-haul radius within which PDVs get the fixed
	// local shipping rate.
	PDVRadiusKm float64 `mapstructure:"pdv_radius_km"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "storefinder")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "storefinder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("providers.viacep_url", "https://viacep.com.br/ws")
	v.SetDefault("providers.geocoding_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("providers.distance_url", "https://maps.googleapis.com/maps/api/distancematrix/json")
	v.SetDefault("providers.melhorenvio_url", "https://www.melhorenvio.com.br/api/v2/me/shipment/calculate")
	v.SetDefault("providers.timeout_seconds", 10)
	v.SetDefault("cache.location_ttl", 30*time.Minute)
	v.SetDefault("cache.geocoding_ttl", 30*24*time.Hour)
	v.SetDefault("cache.distance_ttl", 12*time.Hour)
	v.SetDefault("cache.shipping_ttl", time.Hour)
	v.SetDefault("proximity.distance_batch_limit", 10)
	v.SetDefault("proximity.pdv_radius_km", 50.0)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: STOREFINDER_DATABASE_HOST → database.host
	v.SetEnvPrefix("STOREFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Providers.ViaCEPURL == "" {
		errs = append(errs, "providers.viacep_url is required")
	}
	if c.Providers.TimeoutSeconds <= 0 {
		errs = append(errs, "providers.timeout_seconds must be positive")
	}
	if c.Cache.LocationTTL <= 0 || c.Cache.GeocodingTTL <= 0 ||
		c.Cache.DistanceTTL <= 0 || c.Cache.ShippingTTL <= 0 {
		errs = append(errs, "cache TTLs must be positive")
	}
	if c.Proximity.DistanceBatchLimit <= 0 {
		errs = append(errs, "proximity.distance_batch_limit must be positive")
	}
	if c.Proximity.PDVRadiusKm <= 0 {
		errs = append(errs, "proximity.pdv_radius_km must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
