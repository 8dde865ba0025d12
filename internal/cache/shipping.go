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

// ShippingCache adds cache-aside behaviour to a ShippingClient. Quotes are
// directional, so the key keeps the from/to order. Prices change often;
// entries default to a one hour TTL.
type ShippingCache struct {
	client ports.ShippingClient
	store  ports.CacheStore
	ttl    time.Duration
}

var _ ports.ShippingClient = (*ShippingCache)(nil)

// NewShippingCache creates a caching shipping client.
func NewShippingCache(client ports.ShippingClient, store ports.CacheStore, ttl time.Duration) *ShippingCache {
	return &ShippingCache{client: client, store: store, ttl: ttl}
}

// Quote returns shipping options between two postal codes, consulting the
// cache first.
func (s *ShippingCache) Quote(ctx context.Context, fromPostalCode, toPostalCode string) ([]domain.ShippingQuote, error) {
	key := ShippingKey(fromPostalCode, toPostalCode)

	data, err := s.store.Get(ctx, key)
	if err == nil {
		var quotes []domain.ShippingQuote
		if jsonErr := json.Unmarshal(data, &quotes); jsonErr == nil {
			metrics.CacheHits.WithLabelValues("shipping").Inc()
			return quotes, nil
		}
	} else if !errors.Is(err, ports.ErrCacheMiss) {
		metrics.CacheErrors.WithLabelValues("shipping").Inc()
		slog.Warn("shipping cache unavailable", "error", err)
		return s.client.Quote(ctx, fromPostalCode, toPostalCode)
	}

	metrics.CacheMisses.WithLabelValues("shipping").Inc()

	quotes, err := s.client.Quote(ctx, fromPostalCode, toPostalCode)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(quotes); err == nil {
		_ = s.store.Set(ctx, key, data, s.ttl)
	}

	return quotes, nil
}
