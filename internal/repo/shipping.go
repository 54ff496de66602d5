package repo

import (
	"context"

	"github.com/google/uuid"
)

// ShippingRepo persists shipping methods.
type ShippingRepo struct {
	DB DBTX
}

// ListByCountry returns shipping methods deliverable to the given country.
func (r ShippingRepo) ListByCountry(ctx context.Context, countryCode string) ([]ShippingMethod, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, courier, country_code, price
		FROM shipping_methods
		WHERE country_code = $1
		ORDER BY price`, countryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ShippingMethod
	for rows.Next() {
		var m ShippingMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Courier, &m.CountryCode, &m.Price); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID loads a shipping method.
func (r ShippingRepo) GetByID(ctx context.Context, id uuid.UUID) (ShippingMethod, error) {
	var m ShippingMethod
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, courier, country_code, price
		FROM shipping_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Courier, &m.CountryCode, &m.Price)
	return m, err
}

// Create inserts a shipping method.
func (r ShippingRepo) Create(ctx context.Context, m ShippingMethod) (ShippingMethod, error) {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO shipping_methods (name, courier, country_code, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, m.Name, m.Courier, m.CountryCode, m.Price).Scan(&m.ID)
	return m, err
}
