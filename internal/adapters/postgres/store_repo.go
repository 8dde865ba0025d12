package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/pkg/geospatial"
)

// StoreRepo implements ports.StoreRepository with pgx.
type StoreRepo struct {
	db *DB
}

// NewStoreRepo creates a new StoreRepo.
func NewStoreRepo(db *DB) *StoreRepo {
	return &StoreRepo{db: db}
}

const storeColumns = `
	id, name, take_out_in_store, shipping_time_days,
	latitude, longitude,
	COALESCE(address, ''), COALESCE(district, ''), COALESCE(city, ''),
	COALESCE(state, ''), COALESCE(country, ''), COALESCE(postal_code, ''),
	COALESCE(telephone, ''), COALESCE(email, ''), created_at`

func scanStore(row pgx.Row) (*domain.Store, error) {
	var s domain.Store
	err := row.Scan(
		&s.ID, &s.Name, &s.TakeOutInStore, &s.ShippingTimeDays,
		&s.Latitude, &s.Longitude,
		&s.Address, &s.District, &s.City,
		&s.State, &s.Country, &s.PostalCode,
		&s.Telephone, &s.Email, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectStores(rows pgx.Rows) ([]domain.Store, error) {
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, *s)
	}
	return stores, rows.Err()
}

// Create inserts a store.
func (r *StoreRepo) Create(ctx context.Context, s *domain.Store) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO stores (
			id, name, take_out_in_store, shipping_time_days,
			latitude, longitude, address, district, city, state, country,
			postal_code, telephone, email, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.ID, s.Name, s.TakeOutInStore, s.ShippingTimeDays,
		s.Latitude, s.Longitude, s.Address, s.District, s.City, s.State, s.Country,
		s.PostalCode, s.Telephone, s.Email, s.CreatedAt)
	return err
}

// Update replaces a store's mutable columns.
func (r *StoreRepo) Update(ctx context.Context, s *domain.Store) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE stores
		SET name = $2, take_out_in_store = $3, shipping_time_days = $4,
		    latitude = $5, longitude = $6, address = $7, district = $8,
		    city = $9, state = $10, country = $11, postal_code = $12,
		    telephone = $13, email = $14
		WHERE id = $1
	`, s.ID, s.Name, s.TakeOutInStore, s.ShippingTimeDays,
		s.Latitude, s.Longitude, s.Address, s.District,
		s.City, s.State, s.Country, s.PostalCode,
		s.Telephone, s.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a store by ID.
func (r *StoreRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns one store.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return scanStore(r.db.Pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1`, id))
}

// GetByName returns one store matched case-insensitively on name.
func (r *StoreRepo) GetByName(ctx context.Context, name string) (*domain.Store, error) {
	return scanStore(r.db.Pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE LOWER(name) = LOWER($1)`, name))
}

// List returns one page of stores plus the total count.
func (r *StoreRepo) List(ctx context.Context, limit, offset int) ([]domain.Store, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+storeColumns+` FROM stores ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}

	stores, err := collectStores(rows)
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// ListAll returns every store, name order.
func (r *StoreRepo) ListAll(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+storeColumns+` FROM stores ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectStores(rows)
}

// ListByState returns stores whose state matches, case-insensitively.
func (r *StoreRepo) ListByState(ctx context.Context, state string) ([]domain.Store, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE LOWER(state) = LOWER($1) ORDER BY name`,
		state)
	if err != nil {
		return nil, err
	}
	return collectStores(rows)
}

// ExistsAtCoordinates reports whether a store other than excludeID sits at
// exactly these coordinates.
func (r *StoreRepo) ExistsAtCoordinates(ctx context.Context, lat, lng float64, excludeID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stores
			WHERE latitude = $1 AND longitude = $2 AND id <> $3
		)
	`, lat, lng, excludeID).Scan(&exists)
	return exists, err
}

// FindNearby returns stores within radiusMeters of the point, closest first.
// A bounding box narrows the scan in SQL; the exact great-circle distance is
// computed and ordered here.
func (r *StoreRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]domain.Store, error) {
	minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(lat, lng, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE latitude BETWEEN $1 AND $3
		  AND longitude BETWEEN $2 AND $4
	`, minLat, minLng, maxLat, maxLng)
	if err != nil {
		return nil, err
	}

	candidates, err := collectStores(rows)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		store domain.Store
		dist  float64
	}
	within := make([]ranked, 0, len(candidates))
	for _, s := range candidates {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		d := geospatial.HaversineMeters(lat, lng, *s.Latitude, *s.Longitude)
		if d <= radiusMeters {
			within = append(within, ranked{store: s, dist: d})
		}
	}
	sort.Slice(within, func(i, j int) bool { return within[i].dist < within[j].dist })

	if limit > 0 && len(within) > limit {
		within = within[:limit]
	}

	stores := make([]domain.Store, len(within))
	for i, w := range within {
		stores[i] = w.store
	}
	return stores, nil
}
