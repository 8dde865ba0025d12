package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/pkg/httpclient"
)

// DistanceMatrix implements ports.DistanceClient against the distance-matrix
// API. One call covers all destinations.
type DistanceMatrix struct {
	baseURL string
	apiKey  string
	cfg     httpclient.Config
	cb      *gobreaker.CircuitBreaker
}

var _ ports.DistanceClient = (*DistanceMatrix)(nil)

// NewDistanceMatrix creates a distance-matrix client.
func NewDistanceMatrix(baseURL, apiKey string, timeout time.Duration) *DistanceMatrix {
	return &DistanceMatrix{
		baseURL: baseURL,
		apiKey:  apiKey,
		cfg:     httpclient.DefaultConfig(timeout),
		cb:      httpclient.NewBreaker("distance"),
	}
}

type distanceResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// ComputeDistances returns one driving-distance result per destination, in
// destination order. A destination the provider cannot route to yields an
// "N/A" result rather than failing the whole batch.
func (d *DistanceMatrix) ComputeDistances(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]domain.DistanceResult, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	dests := make([]string, len(destinations))
	for i, c := range destinations {
		dests[i] = fmt.Sprintf("%f,%f", c.Lat, c.Lng)
	}

	q := url.Values{}
	q.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destinations", strings.Join(dests, "|"))
	q.Set("mode", "driving")
	q.Set("key", d.apiKey)
	reqURL := d.baseURL + "?" + q.Encode()

	resp, err := httpclient.Do(ctx, d.cfg, d.cb, "distance", func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}
	defer resp.Body.Close()

	var body distanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("distance matrix decode: %w", err)
	}
	if body.Status != "OK" || len(body.Rows) == 0 {
		return nil, fmt.Errorf("distance matrix: status %s", body.Status)
	}

	elements := body.Rows[0].Elements
	if len(elements) != len(destinations) {
		return nil, fmt.Errorf("%w: got %d for %d destinations",
			domain.ErrDistanceMismatch, len(elements), len(destinations))
	}

	results := make([]domain.DistanceResult, len(elements))
	for i, el := range elements {
		if el.Status != "OK" {
			results[i] = domain.DistanceResult{DistanceText: "N/A", DurationText: "N/A"}
			continue
		}
		results[i] = domain.DistanceResult{
			DistanceText:   el.Distance.Text,
			DurationText:   el.Duration.Text,
			DistanceMeters: el.Distance.Value,
		}
	}
	return results, nil
}
