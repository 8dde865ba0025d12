package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/usecases"
)

func TestLocationResolver_Resolve(t *testing.T) {
	postal := &mockPostalClient{}
	geocoder := &mockGeocoder{}
	store := newFakeStore()
	r := usecases.NewLocationResolver(postal, geocoder, store, 30*time.Minute)

	info, err := r.Resolve(context.Background(), "01310-200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.FullAddress != "Avenida Paulista, São Paulo, SP" {
		t.Errorf("unexpected full address: %q", info.FullAddress)
	}
	if info.PostalCode != "01310200" {
		t.Errorf("postal code not normalized: %q", info.PostalCode)
	}
	if info.Coordinates.Lat != -23.5505 || info.Coordinates.Lng != -46.6333 {
		t.Errorf("unexpected coordinates: %+v", info.Coordinates)
	}
	if store.setCalls != 1 {
		t.Errorf("resolved location should be cached once, got %d writes", store.setCalls)
	}
}

func TestLocationResolver_SecondLookupHitsCache(t *testing.T) {
	postal := &mockPostalClient{}
	geocoder := &mockGeocoder{}
	store := newFakeStore()
	r := usecases.NewLocationResolver(postal, geocoder, store, 30*time.Minute)

	ctx := context.Background()
	if _, err := r.Resolve(ctx, "01310-200"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same code without the hyphen.
	if _, err := r.Resolve(ctx, "01310200"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if postal.calls != 1 {
		t.Errorf("expected 1 postal lookup, got %d", postal.calls)
	}
	if geocoder.calls != 1 {
		t.Errorf("expected 1 geocode, got %d", geocoder.calls)
	}
}

func TestLocationResolver_IncompleteAddress(t *testing.T) {
	postal := &mockPostalClient{
		lookup: func(ctx context.Context, postalCode string) (*domain.ResolvedAddress, error) {
			return &domain.ResolvedAddress{Street: "Rua X", Locality: "", Region: "SP"}, nil
		},
	}
	geocoder := &mockGeocoder{}
	r := usecases.NewLocationResolver(postal, geocoder, newFakeStore(), time.Minute)

	_, err := r.Resolve(context.Background(), "99999999")
	if !errors.Is(err, domain.ErrAddressResolution) {
		t.Fatalf("expected ErrAddressResolution, got %v", err)
	}
	if geocoder.calls != 0 {
		t.Error("incomplete address must not reach the geocoder")
	}
}

func TestLocationResolver_EmptyPostalCode(t *testing.T) {
	r := usecases.NewLocationResolver(&mockPostalClient{}, &mockGeocoder{}, newFakeStore(), time.Minute)

	_, err := r.Resolve(context.Background(), "---")
	if !errors.Is(err, domain.ErrAddressResolution) {
		t.Fatalf("expected ErrAddressResolution, got %v", err)
	}
}

func TestLocationResolver_GeocodeFailure(t *testing.T) {
	geocoder := &mockGeocoder{
		geocode: func(ctx context.Context, address string) (domain.Coordinates, error) {
			return domain.Coordinates{}, errors.New("zero results")
		},
	}
	store := newFakeStore()
	r := usecases.NewLocationResolver(&mockPostalClient{}, geocoder, store, time.Minute)

	_, err := r.Resolve(context.Background(), "01310200")
	if !errors.Is(err, domain.ErrGeocoding) {
		t.Fatalf("expected ErrGeocoding, got %v", err)
	}
	if len(store.data) != 0 {
		t.Error("failed resolutions must not be cached")
	}
}

func TestLocationResolver_StoreFailureFallsOpen(t *testing.T) {
	postal := &mockPostalClient{}
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	r := usecases.NewLocationResolver(postal, &mockGeocoder{}, store, time.Minute)

	info, err := r.Resolve(context.Background(), "01310200")
	if err != nil {
		t.Fatalf("a broken cache store must not fail resolution: %v", err)
	}
	if info.FullAddress == "" {
		t.Error("expected a live result")
	}
	if postal.calls != 1 {
		t.Errorf("expected 1 live lookup, got %d", postal.calls)
	}
	if store.setCalls != 0 {
		t.Errorf("must not write to a broken store, got %d writes", store.setCalls)
	}
}
