package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VoucherRepo persists voucher rules.
type VoucherRepo struct {
	DB DBTX
}

const voucherColumns = `id, code, name, kind, discount_type, value, percent_bps, apply_to_country,
	product_id, category_id, min_spend, usage_limit, used_count, valid_from, valid_to, created_at, updated_at`

// VoucherParams carries the writable voucher fields.
type VoucherParams struct {
	Code           string
	Name           string
	Kind           string
	DiscountType   string
	Value          int64
	PercentBps     *int32
	ApplyToCountry *string
	ProductID      *uuid.UUID
	CategoryID     *uuid.UUID
	MinSpend       int64
	UsageLimit     *int32
	ValidFrom      *time.Time
	ValidTo        *time.Time
}

// Create inserts a voucher and returns the stored row.
func (r VoucherRepo) Create(ctx context.Context, p VoucherParams) (Voucher, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO vouchers (code, name, kind, discount_type, value, percent_bps, apply_to_country,
			product_id, category_id, min_spend, usage_limit, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+voucherColumns,
		p.Code, p.Name, p.Kind, p.DiscountType, p.Value, p.PercentBps, p.ApplyToCountry,
		p.ProductID, p.CategoryID, p.MinSpend, p.UsageLimit, p.ValidFrom, p.ValidTo)
	return scanVoucher(row)
}

// Update replaces the rule fields of the voucher identified by code.
func (r VoucherRepo) Update(ctx context.Context, code string, p VoucherParams) (Voucher, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE vouchers
		SET name = $2, kind = $3, discount_type = $4, value = $5, percent_bps = $6,
			apply_to_country = $7, product_id = $8, category_id = $9, min_spend = $10,
			usage_limit = $11, valid_from = $12, valid_to = $13, updated_at = now()
		WHERE code = $1
		RETURNING `+voucherColumns,
		code, p.Name, p.Kind, p.DiscountType, p.Value, p.PercentBps,
		p.ApplyToCountry, p.ProductID, p.CategoryID, p.MinSpend,
		p.UsageLimit, p.ValidFrom, p.ValidTo)
	return scanVoucher(row)
}

// Delete removes the voucher identified by code.
func (r VoucherRepo) Delete(ctx context.Context, code string) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM vouchers WHERE code = $1`, code)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetByCode returns a voucher regardless of its active window.
func (r VoucherRepo) GetByCode(ctx context.Context, code string) (Voucher, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = $1`, code)
	return scanVoucher(row)
}

// List returns vouchers ordered by creation date, newest first.
func (r VoucherRepo) List(ctx context.Context, limit, offset int) ([]Voucher, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+voucherColumns+`
		FROM vouchers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Count returns the total number of vouchers.
func (r VoucherRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRow(ctx, `SELECT count(*) FROM vouchers`).Scan(&n)
	return n, err
}

// IncrementUsedCount bumps the usage counter after a completed checkout.
func (r VoucherRepo) IncrementUsedCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `UPDATE vouchers SET used_count = used_count + 1, updated_at = now() WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucher(row rowScanner) (Voucher, error) {
	var v Voucher
	err := row.Scan(
		&v.ID, &v.Code, &v.Name, &v.Kind, &v.DiscountType, &v.Value, &v.PercentBps, &v.ApplyToCountry,
		&v.ProductID, &v.CategoryID, &v.MinSpend, &v.UsageLimit, &v.UsedCount, &v.ValidFrom, &v.ValidTo,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
}
