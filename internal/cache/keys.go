// Package cache provides cache-aside wrappers for the expensive external
// lookups (geocoding, distance matrix, shipping quotes). Every wrapper is
// fail-open: a broken cache store degrades to a live client call, it never
// breaks the response.
package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

// GeocodingKey builds the cache key for a free-text address. The address is
// normalized (lowercase, trimmed, internal whitespace collapsed) so that
// semantically identical addresses share an entry.
func GeocodingKey(address string) string {
	return "geocoding:" + NormalizeAddress(address)
}

// LocationKey builds the cache key for a resolved user location, keyed by
// the normalized (digits-only) postal code.
func LocationKey(postalCode string) string {
	return "location:" + domain.NormalizePostalCode(postalCode)
}

// ShippingKey builds the cache key for a shipping quote. The pair is
// order-sensitive: quotes are directional.
func ShippingKey(fromPostalCode, toPostalCode string) string {
	return "shipping:" + domain.NormalizePostalCode(fromPostalCode) +
		":" + domain.NormalizePostalCode(toPostalCode)
}

// DistanceKey builds the cache key for a distance lookup. Coordinates are
// rounded to 6 decimal places and destinations sorted canonically, so the
// same destination set produces the same key regardless of order.
func DistanceKey(origin domain.Coordinates, destinations ...domain.Coordinates) string {
	parts := make([]string, len(destinations))
	for i, d := range destinations {
		parts[i] = fmt.Sprintf("%.6f,%.6f", d.Lat, d.Lng)
	}
	sort.Strings(parts)

	return fmt.Sprintf("distance:%.6f,%.6f:to:%s",
		origin.Lat, origin.Lng, strings.Join(parts, "|"))
}

// NormalizeAddress lowercases, trims, and collapses internal whitespace.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
