package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/metrics"
)

// Geocoder adds cache-aside behaviour to a GeocodingClient. Addresses rarely
// change coordinates, so entries live long (default 30 days).
type Geocoder struct {
	client ports.GeocodingClient
	store  ports.CacheStore
	ttl    time.Duration
}

var _ ports.GeocodingClient = (*Geocoder)(nil)

// NewGeocoder creates a caching geocoder.
func NewGeocoder(client ports.GeocodingClient, store ports.CacheStore, ttl time.Duration) *Geocoder {
	return &Geocoder{client: client, store: store, ttl: ttl}
}

// Geocode resolves an address to coordinates, consulting the cache first.
func (g *Geocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := GeocodingKey(address)

	data, err := g.store.Get(ctx, key)
	if err == nil {
		var coords domain.Coordinates
		if jsonErr := json.Unmarshal(data, &coords); jsonErr == nil {
			metrics.CacheHits.WithLabelValues("geocoding").Inc()
			return coords, nil
		}
		// Undecodable entry: recompute and overwrite below.
	} else if !errors.Is(err, ports.ErrCacheMiss) {
		// Cache store failure: answer from the live client, skip the write.
		metrics.CacheErrors.WithLabelValues("geocoding").Inc()
		slog.Warn("geocoding cache unavailable", "error", err)
		return g.client.Geocode(ctx, address)
	}

	metrics.CacheMisses.WithLabelValues("geocoding").Inc()

	coords, err := g.client.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if data, err := json.Marshal(coords); err == nil {
		_ = g.store.Set(ctx, key, data, g.ttl)
	}

	return coords, nil
}
