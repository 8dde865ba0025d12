package ports

import (
	"context"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

// StoreRepository persists stores.
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	GetByName(ctx context.Context, name string) (*domain.Store, error)
	List(ctx context.Context, limit, offset int) ([]domain.Store, int, error)
	ListAll(ctx context.Context) ([]domain.Store, error)
	ListByState(ctx context.Context, state string) ([]domain.Store, error)
	// ExistsAtCoordinates reports whether a store other than excludeID sits at
	// exactly these coordinates.
	ExistsAtCoordinates(ctx context.Context, lat, lng float64, excludeID string) (bool, error)
	// FindNearby returns stores within radiusMeters of the given point,
	// closest first.
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Store, error)
}

// PDVRepository persists pickup points.
type PDVRepository interface {
	Create(ctx context.Context, pdv *domain.PDV) error
	Update(ctx context.Context, pdv *domain.PDV) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.PDV, error)
	GetByName(ctx context.Context, name string) (*domain.PDV, error)
	List(ctx context.Context, limit, offset int) ([]domain.PDV, int, error)
	ListAll(ctx context.Context) ([]domain.PDV, error)
	ListByState(ctx context.Context, state string) ([]domain.PDV, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.PDV, error)
	CountByStore(ctx context.Context, storeID string) (int, error)
}
