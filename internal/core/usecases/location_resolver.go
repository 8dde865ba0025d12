package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pedrofarias/storefinder/internal/cache"
	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/metrics"
)

// LocationResolver turns a raw postal code into a fully resolved user
// location: structured address plus geocoded coordinates. The combined result
// is cached as one unit keyed by the normalized code, so a repeat lookup
// skips both the postal provider and the geocoder.
type LocationResolver struct {
	lookup   ports.PostalLookupClient
	geocoder ports.GeocodingClient
	store    ports.CacheStore
	ttl      time.Duration
}

// NewLocationResolver creates a LocationResolver. geocoder is normally the
// caching wrapper, giving the address→coordinates step its own longer-lived
// cache entry underneath the combined one.
func NewLocationResolver(lookup ports.PostalLookupClient, geocoder ports.GeocodingClient, store ports.CacheStore, ttl time.Duration) *LocationResolver {
	return &LocationResolver{lookup: lookup, geocoder: geocoder, store: store, ttl: ttl}
}

// Resolve resolves a raw postal code to the user's location. The code is
// normalized to digits before anything else, so "01310-200" and "01310200"
// hit the same cache entry.
func (r *LocationResolver) Resolve(ctx context.Context, rawPostalCode string) (*domain.UserLocationInfo, error) {
	normalized := domain.NormalizePostalCode(rawPostalCode)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty postal code", domain.ErrAddressResolution)
	}

	key := cache.LocationKey(normalized)

	data, err := r.store.Get(ctx, key)
	if err == nil {
		var info domain.UserLocationInfo
		if json.Unmarshal(data, &info) == nil {
			metrics.CacheHits.WithLabelValues("location").Inc()
			return &info, nil
		}
	} else if !errors.Is(err, ports.ErrCacheMiss) {
		metrics.CacheErrors.WithLabelValues("location").Inc()
		slog.Warn("location cache unavailable", "error", err)
		return r.resolve(ctx, normalized)
	}

	metrics.CacheMisses.WithLabelValues("location").Inc()

	info, err := r.resolve(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(info); err == nil {
		_ = r.store.Set(ctx, key, data, r.ttl)
	}

	return info, nil
}

func (r *LocationResolver) resolve(ctx context.Context, normalized string) (*domain.UserLocationInfo, error) {
	addr, err := r.lookup.Lookup(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAddressResolution, err)
	}
	if addr.Street == "" || addr.Locality == "" || addr.Region == "" {
		return nil, fmt.Errorf("%w: incomplete address for %q", domain.ErrAddressResolution, normalized)
	}

	fullAddress := strings.Join([]string{addr.Street, addr.Locality, addr.Region}, ", ")

	coords, err := r.geocoder.Geocode(ctx, fullAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrGeocoding, err)
	}

	return &domain.UserLocationInfo{
		FullAddress: fullAddress,
		PostalCode:  normalized,
		Coordinates: coords,
		Address:     *addr,
	}, nil
}
