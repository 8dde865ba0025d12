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

// PDVService implements pickup-point CRUD, state filtering, and postal-code
// proximity search.
type PDVService struct {
	pdvs      ports.PDVRepository
	stores    ports.StoreRepository
	proximity *ProximityService
	events    ports.EventPublisher
}

// NewPDVService creates a PDVService.
func NewPDVService(pdvs ports.PDVRepository, stores ports.StoreRepository, proximity *ProximityService, events ports.EventPublisher) *PDVService {
	return &PDVService{pdvs: pdvs, stores: stores, proximity: proximity, events: events}
}

// Create registers a new PDV. The parent store must exist, and PDV names are
// unique case-insensitively.
func (s *PDVService) Create(ctx context.Context, pdv *domain.PDV) (*domain.PDV, error) {
	if strings.TrimSpace(pdv.Name) == "" {
		return nil, fmt.Errorf("pdv name is required")
	}

	if _, err := s.stores.GetByID(ctx, pdv.StoreID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidParentStore, pdv.StoreID)
		}
		return nil, err
	}

	if err := s.checkName(ctx, pdv.Name); err != nil {
		return nil, err
	}

	pdv.ID = uuid.NewString()
	pdv.CreatedAt = time.Now().UTC()

	if err := s.pdvs.Create(ctx, pdv); err != nil {
		return nil, err
	}

	s.publish(ctx, "created", pdv)
	return pdv, nil
}

// Update replaces a PDV's mutable fields.
func (s *PDVService) Update(ctx context.Context, id string, in *domain.PDV) (*domain.PDV, error) {
	existing, err := s.pdvs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" && !strings.EqualFold(in.Name, existing.Name) {
		if err := s.checkName(ctx, in.Name); err != nil {
			return nil, err
		}
		existing.Name = in.Name
	}

	if in.StoreID != "" && in.StoreID != existing.StoreID {
		if _, err := s.stores.GetByID(ctx, in.StoreID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %q", domain.ErrInvalidParentStore, in.StoreID)
			}
			return nil, err
		}
		existing.StoreID = in.StoreID
	}

	if in.Latitude != nil && in.Longitude != nil {
		existing.Latitude = in.Latitude
		existing.Longitude = in.Longitude
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

	if err := s.pdvs.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.publish(ctx, "updated", existing)
	return existing, nil
}

// Delete removes a PDV.
func (s *PDVService) Delete(ctx context.Context, id string) error {
	pdv, err := s.pdvs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.pdvs.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "deleted", pdv)
	return nil
}

// GetByID fetches one PDV.
func (s *PDVService) GetByID(ctx context.Context, id string) (*domain.PDV, error) {
	return s.pdvs.GetByID(ctx, id)
}

// List returns a page of PDVs plus the total count.
func (s *PDVService) List(ctx context.Context, limit, offset int) ([]domain.PDV, int, error) {
	limit, offset = clampPage(limit, offset)
	return s.pdvs.List(ctx, limit, offset)
}

// ListByState returns PDVs in the given state, validated and expanded like
// StoreService.ListByState.
func (s *PDVService) ListByState(ctx context.Context, abbr string, limit, offset int) ([]domain.PDV, int, string, error) {
	limit, offset = clampPage(limit, offset)

	full, ok := domain.FullStateName(abbr)
	if !ok {
		return nil, 0, "", fmt.Errorf("%w: %q", domain.ErrInvalidState, abbr)
	}

	pdvs, err := s.pdvs.ListByState(ctx, full)
	if err != nil {
		return nil, 0, "", err
	}
	if len(pdvs) == 0 {
		return nil, 0, "", fmt.Errorf("%w: no pdvs in %s", domain.ErrNotFound, full)
	}

	return paginate(pdvs, limit, offset), len(pdvs), full, nil
}

// SearchByPostalCode runs the proximity search over every PDV.
func (s *PDVService) SearchByPostalCode(ctx context.Context, postalCode string, limit, offset int) (*domain.ProximityResult, error) {
	pdvs, err := s.pdvs.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.CandidateLocation, 0, len(pdvs))
	for i := range pdvs {
		candidates = append(candidates, pdvs[i].Candidate())
	}

	return s.proximity.Nearby(ctx, candidates, postalCode, limit, offset)
}

func (s *PDVService) checkName(ctx context.Context, name string) error {
	_, err := s.pdvs.GetByName(ctx, name)
	if err == nil {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *PDVService) publish(ctx context.Context, action string, pdv *domain.PDV) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPDVChange(ctx, action, pdv); err != nil {
		slog.Warn("pdv event publish failed", "action", action, "pdv_id", pdv.ID, "error", err)
	}
}
