// Package googlemaps wraps the Google Maps geocoding and distance-matrix
// HTTP APIs.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/httpclient"
)

// Geocoder implements ports.GeocodingClient against the geocoding API.
type Geocoder struct {
	baseURL string
	apiKey  string
	cfg     httpclient.Config
	cb      *gobreaker.CircuitBreaker
}

var _ ports.GeocodingClient = (*Geocoder)(nil)

// NewGeocoder creates a geocoding client.
func NewGeocoder(baseURL, apiKey string, timeout time.Duration) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		apiKey:  apiKey,
		cfg:     httpclient.DefaultConfig(timeout),
		cb:      httpclient.NewBreaker("geocoding"),
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves a free-text address to coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	reqURL := g.baseURL + "?" + q.Encode()

	resp, err := httpclient.Do(ctx, g.cfg, g.cb, "geocoding", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode decode: %w", err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: status %s", address, body.Status)
	}

	loc := body.Results[0].Geometry.Location
	coords := domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}
	if !coords.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: out-of-range coordinates", address)
	}
	return coords, nil
}
