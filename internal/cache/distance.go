package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/metrics"
)

// DistanceCache adds per-pair cache-aside behaviour to a DistanceClient.
//
// For batches of up to batchLimit destinations each origin→destination pair
// is cached individually; all missed pairs are fetched in one batched
// upstream call. Above the limit the cache is bypassed entirely and the
// whole batch goes upstream uncached; one big call beats dozens of cache
// round trips at that size.
type DistanceCache struct {
	client     ports.DistanceClient
	store      ports.CacheStore
	ttl        time.Duration
	batchLimit int
}

var _ ports.DistanceClient = (*DistanceCache)(nil)

// NewDistanceCache creates a caching distance client.
func NewDistanceCache(client ports.DistanceClient, store ports.CacheStore, ttl time.Duration, batchLimit int) *DistanceCache {
	return &DistanceCache{client: client, store: store, ttl: ttl, batchLimit: batchLimit}
}

// ComputeDistances returns one result per destination, in destination order.
func (d *DistanceCache) ComputeDistances(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.DistanceResult, error) {
	if len(destinations) == 0 {
		return nil, nil
	}
	if len(destinations) > d.batchLimit {
		return d.client.ComputeDistances(ctx, origin, destinations)
	}

	results := make([]domain.DistanceResult, len(destinations))
	var missed []int
	storeDown := false

	for i, dest := range destinations {
		data, err := d.store.Get(ctx, DistanceKey(origin, dest))
		if err == nil {
			var r domain.DistanceResult
			if json.Unmarshal(data, &r) == nil {
				metrics.CacheHits.WithLabelValues("distance").Inc()
				results[i] = r
				continue
			}
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			// Store failure, not a miss; count only the error.
			storeDown = true
			metrics.CacheErrors.WithLabelValues("distance").Inc()
			slog.Warn("distance cache unavailable", "error", err)
			missed = append(missed, i)
			continue
		}
		metrics.CacheMisses.WithLabelValues("distance").Inc()
		missed = append(missed, i)
	}

	if len(missed) == 0 {
		return results, nil
	}

	missedDests := make([]domain.Coordinates, len(missed))
	for j, i := range missed {
		missedDests[j] = destinations[i]
	}

	fetched, err := d.client.ComputeDistances(ctx, origin, missedDests)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missedDests) {
		return nil, fmt.Errorf("%w: got %d for %d destinations",
			domain.ErrDistanceMismatch, len(fetched), len(missedDests))
	}

	for j, i := range missed {
		results[i] = fetched[j]
		if storeDown {
			continue
		}
		if data, err := json.Marshal(fetched[j]); err == nil {
			_ = d.store.Set(ctx, DistanceKey(origin, destinations[i]), data, d.ttl)
		}
	}

	return results, nil
}
