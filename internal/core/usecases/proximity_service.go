package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ProximityService enriches candidate locations with driving distance and
// shipping options relative to a user's postal code, then ranks them
// closest first.
type ProximityService struct {
	resolver    *LocationResolver
	distances   ports.DistanceClient
	shipping    ports.ShippingClient
	pdvRadiusKm float64
}

// NewProximityService creates a ProximityService. PDVs within pdvRadiusKm of
// the user get a fixed local-delivery quote instead of a carrier quote.
func NewProximityService(resolver *LocationResolver, distances ports.DistanceClient, shipping ports.ShippingClient, pdvRadiusKm float64) *ProximityService {
	return &ProximityService{
		resolver:    resolver,
		distances:   distances,
		shipping:    shipping,
		pdvRadiusKm: pdvRadiusKm,
	}
}

// Nearby resolves the user's postal code, computes one batched distance
// lookup over every candidate that has coordinates, attaches shipping
// quotes, sorts by distance, and paginates. Total and the map pins always
// cover the full sorted sequence, not just the returned page; the last pin
// is the user's own location.
func (s *ProximityService) Nearby(ctx context.Context, candidates []domain.CandidateLocation, postalCode string, limit, offset int) (*domain.ProximityResult, error) {
	limit, offset = clampPage(limit, offset)

	loc, err := s.resolver.Resolve(ctx, postalCode)
	if err != nil {
		return nil, err
	}

	located := make([]domain.CandidateLocation, 0, len(candidates))
	dests := make([]domain.Coordinates, 0, len(candidates))
	for _, c := range candidates {
		if c.Coordinates == nil {
			continue
		}
		located = append(located, c)
		dests = append(dests, *c.Coordinates)
	}

	if len(located) == 0 {
		return &domain.ProximityResult{
			Items:  []domain.EnrichedLocation{},
			Pins:   []domain.MapPin{userPin(loc)},
			Limit:  limit,
			Offset: offset,
		}, nil
	}

	distances, err := s.distances.ComputeDistances(ctx, loc.Coordinates, dests)
	if err != nil {
		return nil, err
	}
	if len(distances) != len(dests) {
		return nil, fmt.Errorf("%w: got %d for %d destinations",
			domain.ErrDistanceMismatch, len(distances), len(dests))
	}

	enriched := make([]domain.EnrichedLocation, 0, len(located))
	for i, c := range located {
		dist := distances[i]
		distText := dist.DistanceText
		if distText == "" {
			distText = "N/A"
		}
		enriched = append(enriched, domain.EnrichedLocation{
			ID:          c.ID,
			Name:        c.Name,
			City:        c.City,
			PostalCode:  c.PostalCode,
			Kind:        c.Kind,
			Distance:    distText,
			Shipping:    s.quotesFor(ctx, c, dist, loc.PostalCode),
			Coordinates: *c.Coordinates,
		})
	}

	sortByDistance(enriched)

	pins := make([]domain.MapPin, 0, len(enriched)+1)
	for _, e := range enriched {
		pins = append(pins, domain.MapPin{Position: e.Coordinates, Title: e.Name})
	}
	pins = append(pins, userPin(loc))

	return &domain.ProximityResult{
		Items:  paginate(enriched, limit, offset),
		Pins:   pins,
		Total:  len(enriched),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// quotesFor picks the shipping options for one candidate. A PDV within the
// local radius gets the fixed store-delivery quote and the carrier is never
// asked; everything else is quoted by the shipping client, degrading to a
// placeholder so the candidate still appears in the results.
func (s *ProximityService) quotesFor(ctx context.Context, c domain.CandidateLocation, dist domain.DistanceResult, userPostalCode string) []domain.ShippingQuote {
	if c.Kind == domain.KindPDV && dist.DistanceKm() <= s.pdvRadiusKm {
		return []domain.ShippingQuote{{
			LeadTimeDays:  1,
			LeadTimeLabel: "1 dia útil",
			Price:         "R$ 15,00",
			Description:   "Fixed price for this distance",
		}}
	}

	quotes, err := s.shipping.Quote(ctx, c.PostalCode, userPostalCode)
	if err != nil || len(quotes) == 0 {
		if err != nil {
			slog.Warn("shipping quote failed",
				"location_id", c.ID, "from", c.PostalCode, "error", err)
		}
		return []domain.ShippingQuote{{
			LeadTimeLabel: "N/A",
			Price:         "N/A",
			Description:   "Shipping quote unavailable",
		}}
	}
	return quotes
}

func userPin(loc *domain.UserLocationInfo) domain.MapPin {
	return domain.MapPin{
		Position: loc.Coordinates,
		Title:    fmt.Sprintf("Current Location: %s, %s", loc.Address.Locality, loc.Address.Region),
	}
}

var distancePrefix = regexp.MustCompile(`^[0-9]+(?:[.,][0-9]+)?`)

// distanceValue parses the leading numeric portion of a formatted distance
// like "1.2 km" or "3,4 km". Unparsable text sorts last.
func distanceValue(text string) float64 {
	m := distancePrefix.FindString(strings.TrimSpace(text))
	if m == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// sortByDistance orders closest first. The sort is stable so candidates with
// equal or unparsable distances keep their input order.
func sortByDistance(items []domain.EnrichedLocation) {
	sort.SliceStable(items, func(i, j int) bool {
		return distanceValue(items[i].Distance) < distanceValue(items[j].Distance)
	})
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
