package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
)

// StoreService implements store CRUD, state filtering, and postal-code
// proximity search.
type StoreService struct {
	stores    ports.StoreRepository
	pdvs      ports.PDVRepository
	proximity *ProximityService
	events    ports.EventPublisher
}

// NewStoreService creates a StoreService. events may be nil; change events
// are best-effort either way.
func NewStoreService(stores ports.StoreRepository, pdvs ports.PDVRepository, proximity *ProximityService, events ports.EventPublisher) *StoreService {
	return &StoreService{stores: stores, pdvs: pdvs, proximity: proximity, events: events}
}

// Create registers a new store. Names are unique case-insensitively, and no
// two stores may share exact coordinates.
func (s *StoreService) Create(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	if strings.TrimSpace(store.Name) == "" {
		return nil, fmt.Errorf("store name is required")
	}

	if err := s.checkName(ctx, store.Name); err != nil {
		return nil, err
	}
	if err := s.checkCoordinates(ctx, store, ""); err != nil {
		return nil, err
	}

	store.ID = uuid.NewString()
	store.CreatedAt = time.Now().UTC()

	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}

	s.publish(ctx, "created", store)
	return store, nil
}

// Update replaces a store's mutable fields. The same uniqueness rules as
// Create apply, excluding the store itself.
func (s *StoreService) Update(ctx context.Context, id string, in *domain.Store) (*domain.Store, error) {
	existing, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" && !strings.EqualFold(in.Name, existing.Name) {
		if err := s.checkName(ctx, in.Name); err != nil {
			return nil, err
		}
		existing.Name = in.Name
	}

	if in.Latitude != nil && in.Longitude != nil {
		if err := s.checkCoordinates(ctx, in, id); err != nil {
			return nil, err
		}
		existing.Latitude = in.Latitude
		existing.Longitude = in.Longitude
	}

	existing.TakeOutInStore = in.TakeOutInStore
	if in.ShippingTimeDays > 0 {
		existing.ShippingTimeDays = in.ShippingTimeDays
	}
	if in.Address != "" {
		existing.Address = in.Address
	}
	if in.District != "" {
		existing.District = in.District
	}
	if in.City != "" {
		existing.City = in.City
	}
	if in.State != "" {
		existing.State = in.State
	}
	if in.Country != "" {
		existing.Country = in.Country
	}
	if in.PostalCode != "" {
		existing.PostalCode = domain.NormalizePostalCode(in.PostalCode)
	}
	if in.Telephone != "" {
		existing.Telephone = in.Telephone
	}
	if in.Email != "" {
		existing.Email = in.Email
	}

	if err := s.stores.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.publish(ctx, "updated", existing)
	return existing, nil
}

// Delete removes a store. A store that still has PDVs cannot be deleted.
func (s *StoreService) Delete(ctx context.Context, id string) error {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.pdvs.CountByStore(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d attached", domain.ErrStoreHasPDVs, count)
	}

	if err := s.stores.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "deleted", store)
	return nil
}

// GetByID fetches one store with its PDVs attached.
func (s *StoreService) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pdvs, err := s.pdvs.ListByStore(ctx, id)
	if err != nil {
		return nil, err
	}
	store.PDVs = pdvs

	return store, nil
}

// List returns a page of stores plus the total count.
func (s *StoreService) List(ctx context.Context, limit, offset int) ([]domain.Store, int, error) {
	limit, offset = clampPage(limit, offset)
	return s.stores.List(ctx, limit, offset)
}

// ListByState returns stores in the given state. The abbreviation is
// validated against the known Brazilian UFs and expanded to the full state
// name for the repository query; an empty result is a not-found condition.
func (s *StoreService) ListByState(ctx context.Context, abbr string, limit, offset int) ([]domain.Store, int, string, error) {
	limit, offset = clampPage(limit, offset)

	full, ok := domain.FullStateName(abbr)
	if !ok {
		return nil, 0, "", fmt.Errorf("%w: %q", domain.ErrInvalidState, abbr)
	}

	stores, err := s.stores.ListByState(ctx, full)
	if err != nil {
		return nil, 0, "", err
	}
	if len(stores) == 0 {
		return nil, 0, "", fmt.Errorf("%w: no stores in %s", domain.ErrNotFound, full)
	}

	return paginate(stores, limit, offset), len(stores), full, nil
}

// GroupedByState returns every store grouped by its state name.
func (s *StoreService) GroupedByState(ctx context.Context) (map[string][]domain.Store, error) {
	stores, err := s.stores.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Store)
	for _, st := range stores {
		key := st.State
		if key == "" {
			key = "unknown"
		}
		grouped[key] = append(grouped[key], st)
	}
	return grouped, nil
}

// defaultNearbyRadiusKm bounds a nearby query when the caller gives no radius.
const defaultNearbyRadiusKm = 50

// Nearby returns stores within radiusKm of the given point, closest first,
// straight from the repository's geo query.
func (s *StoreService) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]domain.Store, error) {
	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	limit, _ = clampPage(limit, 0)

	return s.stores.FindNearby(ctx, lat, lng, radiusKm*1000, limit)
}

// SearchByPostalCode runs the proximity search over every store.
func (s *StoreService) SearchByPostalCode(ctx context.Context, postalCode string, limit, offset int) (*domain.ProximityResult, error) {
	stores, err := s.stores.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.CandidateLocation, 0, len(stores))
	for i := range stores {
		candidates = append(candidates, stores[i].Candidate())
	}

	return s.proximity.Nearby(ctx, candidates, postalCode, limit, offset)
}

func (s *StoreService) checkName(ctx context.Context, name string) error {
	_, err := s.stores.GetByName(ctx, name)
	if err == nil {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *StoreService) checkCoordinates(ctx context.Context, store *domain.Store, excludeID string) error {
	if store.Latitude == nil || store.Longitude == nil {
		return nil
	}
	taken, err := s.stores.ExistsAtCoordinates(ctx, *store.Latitude, *store.Longitude, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrLocationConflict
	}
	return nil
}

func (s *StoreService) publish(ctx context.Context, action string, store *domain.Store) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishStoreChange(ctx, action, store); err != nil {
		slog.Warn("store event publish failed", "action", action, "store_id", store.ID, "error", err)
	}
}
