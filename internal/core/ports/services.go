package ports

import (
	"context"
	"errors"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

// PostalLookupClient resolves a normalized (digits-only) postal code to a
// structured address. Fails when the code is invalid or unknown upstream, or
// when the provider returns an address missing street/locality/region.
type PostalLookupClient interface {
	Lookup(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error)
}

// GeocodingClient resolves a free-text address to coordinates.
type GeocodingClient interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// DistanceClient computes driving distances from one origin to N destinations
// in a single batched call. Implementations must return exactly one result
// per destination, in destination order.
type DistanceClient interface {
	ComputeDistances(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.DistanceResult, error)
}

// ShippingClient quotes shipping between two postal codes (from → to, the
// direction matters). Implementations return an error on provider failure;
// callers degrade to a placeholder quote so failed quotes never get cached
// and never drop the location from results.
type ShippingClient interface {
	Quote(ctx context.Context, fromPostalCode, toPostalCode string) ([]domain.ShippingQuote, error)
}

// ErrCacheMiss is returned by CacheStore.Get for absent keys. Any other error
// means the store itself failed; cache wrappers treat that as a signal to
// fall through to the live client (fail-open).
var ErrCacheMiss = errors.New("cache miss")

// CacheStore is a shared get/set-with-TTL key-value store. Entries expire on
// their own; nothing evicts them explicitly.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes store/PDV change events to a message broker.
type EventPublisher interface {
	PublishStoreChange(ctx context.Context, action string, store *domain.Store) error
	PublishPDVChange(ctx context.Context, action string, pdv *domain.PDV) error
}
