package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	adapter "github.com/pedrofarias/storefinder/internal/adapters/http"
	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
	"github.com/pedrofarias/storefinder/internal/core/usecases"
	"github.com/pedrofarias/storefinder/internal/pkg/geospatial"
)

// In-memory repositories. Handlers go through the real services, so these
// tests cover routing, validation, and error mapping end to end.

type memStoreRepo struct {
	stores map[string]*domain.Store
}

func newMemStoreRepo() *memStoreRepo {
	return &memStoreRepo{stores: map[string]*domain.Store{}}
}

func (m *memStoreRepo) Create(ctx context.Context, s *domain.Store) error {
	cp := *s
	m.stores[s.ID] = &cp
	return nil
}

func (m *memStoreRepo) Update(ctx context.Context, s *domain.Store) error {
	if _, ok := m.stores[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	m.stores[s.ID] = &cp
	return nil
}

func (m *memStoreRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.stores[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.stores, id)
	return nil
}

func (m *memStoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	s, ok := m.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStoreRepo) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	for _, s := range m.stores {
		if strings.EqualFold(s.Name, name) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStoreRepo) List(ctx context.Context, limit, offset int) ([]domain.Store, int, error) {
	all, _ := m.ListAll(ctx)
	total := len(all)
	if offset >= len(all) {
		return []domain.Store{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memStoreRepo) ListAll(ctx context.Context) ([]domain.Store, error) {
	var out []domain.Store
	for _, s := range m.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStoreRepo) ListByState(ctx context.Context, state string) ([]domain.Store, error) {
	var out []domain.Store
	for _, s := range m.stores {
		if strings.EqualFold(s.State, state) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStoreRepo) ExistsAtCoordinates(ctx context.Context, lat, lng float64, excludeID string) (bool, error) {
	for _, s := range m.stores {
		if s.ID == excludeID || s.Latitude == nil || s.Longitude == nil {
			continue
		}
		if *s.Latitude == lat && *s.Longitude == lng {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStoreRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Store, error) {
	var out []domain.Store
	for _, s := range m.stores {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		if geospatial.HaversineMeters(lat, lng, *s.Latitude, *s.Longitude) <= radiusMeters {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return geospatial.HaversineMeters(lat, lng, *out[i].Latitude, *out[i].Longitude) <
			geospatial.HaversineMeters(lat, lng, *out[j].Latitude, *out[j].Longitude)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memPDVRepo struct {
	pdvs map[string]*domain.PDV
}

func newMemPDVRepo() *memPDVRepo {
	return &memPDVRepo{pdvs: map[string]*domain.PDV{}}
}

func (m *memPDVRepo) Create(ctx context.Context, p *domain.PDV) error {
	cp := *p
	m.pdvs[p.ID] = &cp
	return nil
}

func (m *memPDVRepo) Update(ctx context.Context, p *domain.PDV) error {
	if _, ok := m.pdvs[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.pdvs[p.ID] = &cp
	return nil
}

func (m *memPDVRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.pdvs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.pdvs, id)
	return nil
}

func (m *memPDVRepo) GetByID(ctx context.Context, id string) (*domain.PDV, error) {
	p, ok := m.pdvs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPDVRepo) GetByName(ctx context.Context, name string) (*domain.PDV, error) {
	for _, p := range m.pdvs {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPDVRepo) List(ctx context.Context, limit, offset int) ([]domain.PDV, int, error) {
	all, _ := m.ListAll(ctx)
	total := len(all)
	if offset >= len(all) {
		return []domain.PDV{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memPDVRepo) ListAll(ctx context.Context) ([]domain.PDV, error) {
	var out []domain.PDV
	for _, p := range m.pdvs {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPDVRepo) ListByState(ctx context.Context, state string) ([]domain.PDV, error) {
	var out []domain.PDV
	for _, p := range m.pdvs {
		if strings.EqualFold(p.State, state) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPDVRepo) ListByStore(ctx context.Context, storeID string) ([]domain.PDV, error) {
	var out []domain.PDV
	for _, p := range m.pdvs {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPDVRepo) CountByStore(ctx context.Context, storeID string) (int, error) {
	n := 0
	for _, p := range m.pdvs {
		if p.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

// Provider stubs for the proximity route.

type stubPostal struct{}

func (stubPostal) Lookup(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error) {
	return &domain.ResolvedAddress{
		Street: "Avenida Paulista", Locality: "São Paulo", Region: "SP", PostalCode: postalCode,
	}, nil
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return domain.Coordinates{Lat: -23.5505, Lng: -46.6333}, nil
}

type stubDistance struct{}

func (stubDistance) ComputeDistances(ctx context.Context, origin domain.Coordinates, dests []domain.Coordinates) ([]domain.DistanceResult, error) {
	out := make([]domain.DistanceResult, len(dests))
	for i := range dests {
		out[i] = domain.DistanceResult{DistanceText: "3 km", DurationText: "10 mins", DistanceMeters: 3000}
	}
	return out, nil
}

type stubShipping struct{}

func (stubShipping) Quote(ctx context.Context, from, to string) ([]domain.ShippingQuote, error) {
	return []domain.ShippingQuote{{LeadTimeDays: 3, LeadTimeLabel: "3 dias úteis", Price: "R$ 25,90", Description: "SEDEX"}}, nil
}

type noopStore struct{}

func (noopStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, ports.ErrCacheMiss }
func (noopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (noopStore) Delete(ctx context.Context, key string) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *memStoreRepo, *memPDVRepo) {
	t.Helper()

	storeRepo := newMemStoreRepo()
	pdvRepo := newMemPDVRepo()

	resolver := usecases.NewLocationResolver(stubPostal{}, stubGeocoder{}, noopStore{}, time.Minute)
	proximity := usecases.NewProximityService(resolver, stubDistance{}, stubShipping{}, 50)
	storeSvc := usecases.NewStoreService(storeRepo, pdvRepo, proximity, nil)
	pdvSvc := usecases.NewPDVService(pdvRepo, storeRepo, proximity, nil)

	app := fiber.New()
	adapter.SetupRoutes(app, adapter.NewDependencies(storeSvc, pdvSvc))
	return app, storeRepo, pdvRepo
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(data) > 0 {
		_ = json.Unmarshal(data, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestCreateAndGetStore(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, created := doJSON(t, app, "POST", "/v1/stores", `{
		"name": "Loja Centro",
		"take_out_in_store": true,
		"shipping_time_days": 2,
		"latitude": -23.5505,
		"longitude": -46.6333,
		"city": "São Paulo",
		"state": "São Paulo",
		"postal_code": "01310-200"
	}`)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %v", status, created)
	}

	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected an id in the response")
	}
	if created["postal_code"] != "01310200" {
		t.Errorf("postal code not normalized: %v", created["postal_code"])
	}

	status, fetched := doJSON(t, app, "GET", "/v1/stores/"+id, "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if fetched["name"] != "Loja Centro" {
		t.Errorf("unexpected name: %v", fetched["name"])
	}
}

func TestCreateStore_ValidationFailure(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/v1/stores", `{"name": "", "email": "not-an-email"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d: %v", status, body)
	}
	if body["code"] != "bad_request" {
		t.Errorf("unexpected error code: %v", body["code"])
	}
}

func TestCreateStore_DuplicateName(t *testing.T) {
	app, _, _ := newTestApp(t)

	if status, _ := doJSON(t, app, "POST", "/v1/stores", `{"name": "Loja Centro"}`); status != 201 {
		t.Fatalf("setup create failed: %d", status)
	}

	status, body := doJSON(t, app, "POST", "/v1/stores", `{"name": "loja centro"}`)
	if status != 409 {
		t.Fatalf("expected 409, got %d: %v", status, body)
	}
}

func TestGetStore_NotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/v1/stores/does-not-exist", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d: %v", status, body)
	}
	if body["code"] != "not_found" {
		t.Errorf("unexpected error code: %v", body["code"])
	}
}

func TestDeleteStore_BlockedByPDVs(t *testing.T) {
	app, storeRepo, pdvRepo := newTestApp(t)

	storeRepo.stores["s1"] = &domain.Store{ID: "s1", Name: "Loja"}
	pdvRepo.pdvs["p1"] = &domain.PDV{ID: "p1", StoreID: "s1", Name: "PDV"}

	status, body := doJSON(t, app, "DELETE", "/v1/stores/s1", "")
	if status != 409 {
		t.Fatalf("expected 409, got %d: %v", status, body)
	}
}

func TestCreatePDV_UnknownParent(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/v1/pdvs", `{
		"store_id": "6ba7b810-9dad-41d1-80b4-00c04fd430c8",
		"name": "PDV Shopping"
	}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d: %v", status, body)
	}
}

func TestStoresByState_UnknownAbbreviation(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/v1/stores/state/zz", "")
	if status != 400 {
		t.Fatalf("expected 400, got %d: %v", status, body)
	}
}

func TestStoresByCEP(t *testing.T) {
	app, storeRepo, _ := newTestApp(t)

	lat, lng := -23.5629, -46.6544
	storeRepo.stores["s1"] = &domain.Store{
		ID: "s1", Name: "Loja Paulista",
		Latitude: &lat, Longitude: &lng,
		PostalCode: "01310100", City: "São Paulo",
	}

	status, body := doJSON(t, app, "GET", "/v1/stores/cep/01310-200", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}

	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]any)
	if item["distance"] != "3 km" {
		t.Errorf("unexpected distance: %v", item["distance"])
	}

	pins, _ := body["pins"].([]any)
	if len(pins) != 2 {
		t.Fatalf("expected 2 pins, got %d", len(pins))
	}
	userPin := pins[1].(map[string]any)
	if userPin["title"] != "Current Location: São Paulo, SP" {
		t.Errorf("unexpected user pin: %v", userPin["title"])
	}
}

func TestNearbyStores(t *testing.T) {
	app, storeRepo, _ := newTestApp(t)

	spLat, spLng := -23.5629, -46.6544
	rioLat, rioLng := -22.9068, -43.1729
	storeRepo.stores["near"] = &domain.Store{ID: "near", Name: "Loja Paulista", Latitude: &spLat, Longitude: &spLng}
	storeRepo.stores["far"] = &domain.Store{ID: "far", Name: "Loja Rio", Latitude: &rioLat, Longitude: &rioLng}
	storeRepo.stores["nocoords"] = &domain.Store{ID: "nocoords", Name: "Loja Sem Endereço"}

	status, body := doJSON(t, app, "GET", "/v1/stores/nearby?lat=-23.5505&lng=-46.6333&radius_km=50", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}

	if body["count"] != float64(1) {
		t.Fatalf("expected count 1, got %v", body["count"])
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 store, got %d", len(data))
	}
	if data[0].(map[string]any)["id"] != "near" {
		t.Errorf("unexpected store: %v", data[0])
	}
}

func TestNearbyStores_InvalidCoordinates(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, query := range []string{
		"lat=abc&lng=-46.6",
		"lat=-23.5&lng=181",
		"lng=-46.6", // lat missing
	} {
		status, body := doJSON(t, app, "GET", "/v1/stores/nearby?"+query, "")
		if status != 400 {
			t.Errorf("%s: expected 400, got %d: %v", query, status, body)
		}
	}
}

func TestListStores_Pagination(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, name := range []string{"Loja A", "Loja B", "Loja C"} {
		if status, _ := doJSON(t, app, "POST", "/v1/stores", `{"name": "`+name+`"}`); status != 201 {
			t.Fatalf("setup create failed for %s", name)
		}
	}

	status, body := doJSON(t, app, "GET", "/v1/stores?limit=2&offset=0", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	pagination, _ := body["pagination"].(map[string]any)
	if pagination["total"] != float64(3) {
		t.Errorf("expected total 3, got %v", pagination["total"])
	}
	data, _ := body["data"].([]any)
	if len(data) != 2 {
		t.Errorf("expected 2 stores on the page, got %d", len(data))
	}
}
