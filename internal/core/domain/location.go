package domain

import (
	"math"
)

// LocationKind distinguishes stores from pickup points.
type LocationKind string

const (
	KindStore LocationKind = "STORE"
	KindPDV   LocationKind = "PDV"
)

// Coordinates is an immutable lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and within range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ResolvedAddress is the structured result of a postal-code lookup.
// Street, Locality, and Region are guaranteed non-empty; a lookup that
// cannot fill all three is treated as failed.
type ResolvedAddress struct {
	Street       string         `json:"street"`
	Locality     string         `json:"locality"`
	Region       string         `json:"region"`
	Neighborhood string         `json:"neighborhood,omitempty"`
	PostalCode   string         `json:"postal_code"`
	Raw          map[string]any `json:"raw,omitempty"`
}

// UserLocationInfo bundles everything derived from a user's postal code.
// Cached as a single unit keyed by the normalized code.
type UserLocationInfo struct {
	FullAddress string          `json:"full_address"`
	PostalCode  string          `json:"postal_code"` // normalized, digits only
	Coordinates Coordinates     `json:"coordinates"`
	Address     ResolvedAddress `json:"address"`
}

// DistanceResult is one origin→destination driving distance.
type DistanceResult struct {
	DistanceText   string `json:"distance_text"`
	DurationText   string `json:"duration_text"`
	DistanceMeters int    `json:"distance_meters"`
}

// DistanceKm returns the distance in kilometers.
func (d DistanceResult) DistanceKm() float64 {
	return float64(d.DistanceMeters) / 1000
}

// ShippingQuote is a single shipping option between two postal codes.
// A provider-side failure is represented as a fallback quote, not an error.
type ShippingQuote struct {
	LeadTimeDays  int    `json:"lead_time_days"`
	LeadTimeLabel string `json:"lead_time_label"`
	Price         string `json:"price"`
	Carrier       string `json:"carrier,omitempty"`
	Service       string `json:"service,omitempty"`
	Description   string `json:"description"`
}

// CandidateLocation is the proximity engine's input: a store or PDV that
// may or may not carry coordinates. Locations without coordinates are
// excluded from distance ranking.
type CandidateLocation struct {
	ID          string       `json:"id"`
	Kind        LocationKind `json:"kind"`
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	PostalCode  string       `json:"postal_code"`
	City        string       `json:"city"`
	StoreID     string       `json:"store_id,omitempty"` // parent store, PDVs only
}

// EnrichedLocation is a candidate annotated with distance and shipping data.
type EnrichedLocation struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	City        string          `json:"city"`
	PostalCode  string          `json:"postal_code"`
	Kind        LocationKind    `json:"type"`
	Distance    string          `json:"distance"`
	Shipping    []ShippingQuote `json:"value"`
	Coordinates Coordinates     `json:"coordinates"`
}

// MapPin is a marker for client-side map display.
type MapPin struct {
	Position Coordinates `json:"position"`
	Title    string      `json:"title"`
}

// ProximityResult is a sorted, paginated proximity search response.
// Total counts the full sorted sequence before pagination; Pins covers the
// full sequence too, with the user's own location as the last entry.
type ProximityResult struct {
	Items  []EnrichedLocation `json:"items"`
	Pins   []MapPin           `json:"pins"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}
