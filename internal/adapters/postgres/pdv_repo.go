package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

// PDVRepo implements ports.PDVRepository with pgx.
type PDVRepo struct {
	db *DB
}

// NewPDVRepo creates a new PDVRepo.
func NewPDVRepo(db *DB) *PDVRepo {
	return &PDVRepo{db: db}
}

const pdvColumns = `
	id, store_id, name, latitude, longitude,
	COALESCE(address, ''), COALESCE(district, ''), COALESCE(city, ''),
	COALESCE(state, ''), COALESCE(country, ''), COALESCE(postal_code, ''),
	created_at`

func scanPDV(row pgx.Row) (*domain.PDV, error) {
	var p domain.PDV
	err := row.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Latitude, &p.Longitude,
		&p.Address, &p.District, &p.City,
		&p.State, &p.Country, &p.PostalCode,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collectPDVs(rows pgx.Rows) ([]domain.PDV, error) {
	defer rows.Close()

	var pdvs []domain.PDV
	for rows.Next() {
		p, err := scanPDV(rows)
		if err != nil {
			return nil, err
		}
		pdvs = append(pdvs, *p)
	}
	return pdvs, rows.Err()
}

// Create inserts a PDV.
func (r *PDVRepo) Create(ctx context.Context, p *domain.PDV) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO pdvs (
			id, store_id, name, latitude, longitude,
			address, district, city, state, country, postal_code, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.StoreID, p.Name, p.Latitude, p.Longitude,
		p.Address, p.District, p.City, p.State, p.Country, p.PostalCode, p.CreatedAt)
	return err
}

// Update replaces a PDV's mutable columns.
func (r *PDVRepo) Update(ctx context.Context, p *domain.PDV) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE pdvs
		SET store_id = $2, name = $3, latitude = $4, longitude = $5,
		    address = $6, district = $7, city = $8, state = $9,
		    country = $10, postal_code = $11
		WHERE id = $1
	`, p.ID, p.StoreID, p.Name, p.Latitude, p.Longitude,
		p.Address, p.District, p.City, p.State,
		p.Country, p.PostalCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a PDV by ID.
func (r *PDVRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM pdvs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns one PDV.
func (r *PDVRepo) GetByID(ctx context.Context, id string) (*domain.PDV, error) {
	return scanPDV(r.db.Pool.QueryRow(ctx,
		`SELECT `+pdvColumns+` FROM pdvs WHERE id = $1`, id))
}

// GetByName returns one PDV matched case-insensitively on name.
func (r *PDVRepo) GetByName(ctx context.Context, name string) (*domain.PDV, error) {
	return scanPDV(r.db.Pool.QueryRow(ctx,
		`SELECT `+pdvColumns+` FROM pdvs WHERE LOWER(name) = LOWER($1)`, name))
}

// List returns one page of PDVs plus the total count.
func (r *PDVRepo) List(ctx context.Context, limit, offset int) ([]domain.PDV, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM pdvs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+pdvColumns+` FROM pdvs ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}

	pdvs, err := collectPDVs(rows)
	if err != nil {
		return nil, 0, err
	}
	return pdvs, total, nil
}

// ListAll returns every PDV, name order.
func (r *PDVRepo) ListAll(ctx context.Context) ([]domain.PDV, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+pdvColumns+` FROM pdvs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectPDVs(rows)
}

// ListByState returns PDVs whose state matches, case-insensitively.
func (r *PDVRepo) ListByState(ctx context.Context, state string) ([]domain.PDV, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+pdvColumns+` FROM pdvs WHERE LOWER(state) = LOWER($1) ORDER BY name`,
		state)
	if err != nil {
		return nil, err
	}
	return collectPDVs(rows)
}

// ListByStore returns the PDVs attached to one store.
func (r *PDVRepo) ListByStore(ctx context.Context, storeID string) ([]domain.PDV, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+pdvColumns+` FROM pdvs WHERE store_id = $1 ORDER BY name`,
		storeID)
	if err != nil {
		return nil, err
	}
	return collectPDVs(rows)
}

// CountByStore counts the PDVs attached to one store.
func (r *PDVRepo) CountByStore(ctx context.Context, storeID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pdvs WHERE store_id = $1`, storeID).Scan(&count)
	return count, err
}
