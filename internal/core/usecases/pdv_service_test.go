package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/usecases"
)

func TestPDVService_Create(t *testing.T) {
	stores := &mockStoreRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Store, error) {
			return &domain.Store{ID: id, Name: "Loja Matriz"}, nil
		},
	}
	var saved *domain.PDV
	pdvs := &mockPDVRepo{
		createFn: func(ctx context.Context, p *domain.PDV) error {
			saved = p
			return nil
		},
	}
	events := &mockPublisher{}
	svc := usecases.NewPDVService(pdvs, stores, nil, events)

	pdv, err := svc.Create(context.Background(), &domain.PDV{
		StoreID: "store-1",
		Name:    "PDV Shopping",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pdv.ID == "" {
		t.Error("expected a generated ID")
	}
	if saved == nil || saved.ID != pdv.ID {
		t.Error("pdv not persisted")
	}
	if len(events.pdvEvents) != 1 || events.pdvEvents[0] != "created" {
		t.Errorf("expected one created event, got %v", events.pdvEvents)
	}
}

func TestPDVService_Create_MissingParent(t *testing.T) {
	svc := usecases.NewPDVService(&mockPDVRepo{}, &mockStoreRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), &domain.PDV{
		StoreID: "nope",
		Name:    "PDV Órfão",
	})
	if !errors.Is(err, domain.ErrInvalidParentStore) {
		t.Fatalf("expected ErrInvalidParentStore, got %v", err)
	}
}

func TestPDVService_Create_DuplicateName(t *testing.T) {
	stores := &mockStoreRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Store, error) {
			return &domain.Store{ID: id}, nil
		},
	}
	pdvs := &mockPDVRepo{
		getByNameFn: func(ctx context.Context, name string) (*domain.PDV, error) {
			return &domain.PDV{ID: "existing", Name: name}, nil
		},
	}
	svc := usecases.NewPDVService(pdvs, stores, nil, nil)

	_, err := svc.Create(context.Background(), &domain.PDV{StoreID: "s1", Name: "PDV Centro"})
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestPDVService_Update_ReparentChecksStore(t *testing.T) {
	pdvs := &mockPDVRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.PDV, error) {
			return &domain.PDV{ID: id, StoreID: "old-store", Name: "PDV"}, nil
		},
	}
	svc := usecases.NewPDVService(pdvs, &mockStoreRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), "p1", &domain.PDV{StoreID: "new-store"})
	if !errors.Is(err, domain.ErrInvalidParentStore) {
		t.Fatalf("expected ErrInvalidParentStore, got %v", err)
	}
}

func TestPDVService_Delete(t *testing.T) {
	deleted := ""
	pdvs := &mockPDVRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.PDV, error) {
			return &domain.PDV{ID: id, Name: "PDV"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	events := &mockPublisher{}
	svc := usecases.NewPDVService(pdvs, &mockStoreRepo{}, nil, events)

	if err := svc.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "p1" {
		t.Errorf("wrong pdv deleted: %q", deleted)
	}
	if len(events.pdvEvents) != 1 || events.pdvEvents[0] != "deleted" {
		t.Errorf("expected one deleted event, got %v", events.pdvEvents)
	}
}

func TestPDVService_ListByState(t *testing.T) {
	var queried string
	pdvs := &mockPDVRepo{
		listByStateFn: func(ctx context.Context, state string) ([]domain.PDV, error) {
			queried = state
			return []domain.PDV{{ID: "1"}, {ID: "2"}}, nil
		},
	}
	svc := usecases.NewPDVService(pdvs, &mockStoreRepo{}, nil, nil)

	list, total, state, err := svc.ListByState(context.Background(), "RJ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "Rio de Janeiro" || state != "Rio de Janeiro" {
		t.Errorf("abbreviation not expanded: queried %q, returned %q", queried, state)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("unexpected page: total %d, len %d", total, len(list))
	}
}

func TestPDVService_SearchByPostalCode(t *testing.T) {
	pdvs := &mockPDVRepo{
		listAllFn: func(ctx context.Context) ([]domain.PDV, error) {
			lat, lng := -23.56, -46.65
			return []domain.PDV{
				{ID: "p1", StoreID: "s1", Name: "PDV Paulista", Latitude: &lat, Longitude: &lng, PostalCode: "01310-100", City: "São Paulo"},
			}, nil
		},
	}
	resolver := usecases.NewLocationResolver(&mockPostalClient{}, &mockGeocoder{}, newFakeStore(), time.Minute)
	distances := &mockDistanceClient{
		compute: func(ctx context.Context, origin domain.Coordinates, dests []domain.Coordinates) ([]domain.DistanceResult, error) {
			return []domain.DistanceResult{{DistanceText: "2 km", DistanceMeters: 2000}}, nil
		},
	}
	shipping := &mockShippingClient{}
	proximity := usecases.NewProximityService(resolver, distances, shipping, 50)
	svc := usecases.NewPDVService(pdvs, &mockStoreRepo{}, proximity, nil)

	result, err := svc.SearchByPostalCode(context.Background(), "01310-200", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Kind != domain.KindPDV {
		t.Errorf("expected PDV kind, got %s", item.Kind)
	}
	// 2 km is inside the local radius: fixed rate, no carrier call.
	if item.Shipping[0].Price != "R$ 15,00" {
		t.Errorf("expected fixed local rate, got %+v", item.Shipping[0])
	}
	if shipping.calls != 0 {
		t.Errorf("expected no carrier calls, got %d", shipping.calls)
	}
}
