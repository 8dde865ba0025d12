package usecases_test

import (
	"context"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
)

// --- Cache store ---

type fakeStore struct {
	data     map[string][]byte
	getErr   error
	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.setCalls++
	f.data[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

// --- Provider clients ---

type mockPostalClient struct {
	calls  int
	lookup func(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error)
}

func (m *mockPostalClient) Lookup(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error) {
	m.calls++
	if m.lookup != nil {
		return m.lookup(ctx, postalCode)
	}
	return &domain.ResolvedAddress{
		Street:     "Avenida Paulista",
		Locality:   "São Paulo",
		Region:     "SP",
		PostalCode: postalCode,
	}, nil
}

type mockGeocoder struct {
	calls   int
	geocode func(ctx context.Context, address string) (domain.Coordinates, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.calls++
	if m.geocode != nil {
		return m.geocode(ctx, address)
	}
	return domain.Coordinates{Lat: -23.5505, Lng: -46.6333}, nil
}

type mockDistanceClient struct {
	calls     int
	lastDests []domain.Coordinates
	compute   func(ctx context.Context, origin domain.Coordinates, dests []domain.Coordinates) ([]domain.DistanceResult, error)
}

func (m *mockDistanceClient) ComputeDistances(ctx context.Context, origin domain.Coordinates, dests []domain.Coordinates) ([]domain.DistanceResult, error) {
	m.calls++
	m.lastDests = dests
	if m.compute != nil {
		return m.compute(ctx, origin, dests)
	}
	results := make([]domain.DistanceResult, len(dests))
	for i := range dests {
		results[i] = domain.DistanceResult{DistanceText: "1 km", DurationText: "5 mins", DistanceMeters: 1000}
	}
	return results, nil
}

type mockShippingClient struct {
	calls int
	quote func(ctx context.Context, from, to string) ([]domain.ShippingQuote, error)
}

func (m *mockShippingClient) Quote(ctx context.Context, from, to string) ([]domain.ShippingQuote, error) {
	m.calls++
	if m.quote != nil {
		return m.quote(ctx, from, to)
	}
	return []domain.ShippingQuote{{LeadTimeDays: 3, LeadTimeLabel: "3 dias úteis", Price: "R$ 25,90", Description: "SEDEX"}}, nil
}

// --- Repositories ---

type mockStoreRepo struct {
	createFn      func(ctx context.Context, s *domain.Store) error
	updateFn      func(ctx context.Context, s *domain.Store) error
	deleteFn      func(ctx context.Context, id string) error
	getByIDFn     func(ctx context.Context, id string) (*domain.Store, error)
	getByNameFn   func(ctx context.Context, name string) (*domain.Store, error)
	listFn        func(ctx context.Context, limit, offset int) ([]domain.Store, int, error)
	listAllFn     func(ctx context.Context) ([]domain.Store, error)
	listByStateFn func(ctx context.Context, state string) ([]domain.Store, error)
	existsAtFn    func(ctx context.Context, lat, lng float64, excludeID string) (bool, error)
	findNearbyFn  func(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Store, error)
}

func (m *mockStoreRepo) Create(ctx context.Context, s *domain.Store) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStoreRepo) Update(ctx context.Context, s *domain.Store) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, s)
	}
	return nil
}

func (m *mockStoreRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStoreRepo) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStoreRepo) List(ctx context.Context, limit, offset int) ([]domain.Store, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockStoreRepo) ListAll(ctx context.Context) ([]domain.Store, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockStoreRepo) ListByState(ctx context.Context, state string) ([]domain.Store, error) {
	if m.listByStateFn != nil {
		return m.listByStateFn(ctx, state)
	}
	return nil, nil
}

func (m *mockStoreRepo) ExistsAtCoordinates(ctx context.Context, lat, lng float64, excludeID string) (bool, error) {
	if m.existsAtFn != nil {
		return m.existsAtFn(ctx, lat, lng, excludeID)
	}
	return false, nil
}

func (m *mockStoreRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Store, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lng, radiusMeters, limit)
	}
	return nil, nil
}

type mockPDVRepo struct {
	createFn       func(ctx context.Context, p *domain.PDV) error
	updateFn       func(ctx context.Context, p *domain.PDV) error
	deleteFn       func(ctx context.Context, id string) error
	getByIDFn      func(ctx context.Context, id string) (*domain.PDV, error)
	getByNameFn    func(ctx context.Context, name string) (*domain.PDV, error)
	listFn         func(ctx context.Context, limit, offset int) ([]domain.PDV, int, error)
	listAllFn      func(ctx context.Context) ([]domain.PDV, error)
	listByStateFn  func(ctx context.Context, state string) ([]domain.PDV, error)
	listByStoreFn  func(ctx context.Context, storeID string) ([]domain.PDV, error)
	countByStoreFn func(ctx context.Context, storeID string) (int, error)
}

func (m *mockPDVRepo) Create(ctx context.Context, p *domain.PDV) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockPDVRepo) Update(ctx context.Context, p *domain.PDV) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockPDVRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPDVRepo) GetByID(ctx context.Context, id string) (*domain.PDV, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPDVRepo) GetByName(ctx context.Context, name string) (*domain.PDV, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPDVRepo) List(ctx context.Context, limit, offset int) ([]domain.PDV, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockPDVRepo) ListAll(ctx context.Context) ([]domain.PDV, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockPDVRepo) ListByState(ctx context.Context, state string) ([]domain.PDV, error) {
	if m.listByStateFn != nil {
		return m.listByStateFn(ctx, state)
	}
	return nil, nil
}

func (m *mockPDVRepo) ListByStore(ctx context.Context, storeID string) ([]domain.PDV, error) {
	if m.listByStoreFn != nil {
		return m.listByStoreFn(ctx, storeID)
	}
	return nil, nil
}

func (m *mockPDVRepo) CountByStore(ctx context.Context, storeID string) (int, error) {
	if m.countByStoreFn != nil {
		return m.countByStoreFn(ctx, storeID)
	}
	return 0, nil
}

// --- Event publisher ---

type mockPublisher struct {
	storeEvents []string
	pdvEvents   []string
	err         error
}

func (m *mockPublisher) PublishStoreChange(ctx context.Context, action string, store *domain.Store) error {
	m.storeEvents = append(m.storeEvents, action)
	return m.err
}

func (m *mockPublisher) PublishPDVChange(ctx context.Context, action string, pdv *domain.PDV) error {
	m.pdvEvents = append(m.pdvEvents, action)
	return m.err
}
