package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepo persists carts and their items.
type CartRepo struct {
	DB DBTX
}

const cartColumns = `id, user_id, anon_id, voucher_code, discount_amount, discount_name,
	shipping_method_id, shipping_address, billing_address, expires_at, created_at, updated_at`

// Create inserts a cart for the provided owner.
func (r CartRepo) Create(ctx context.Context, userID *uuid.UUID, anonID *string, expiresAt time.Time) (Cart, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO carts (user_id, anon_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+cartColumns, userID, anonID, expiresAt)
	return scanCart(row)
}

// GetByID loads a cart by its identifier.
func (r CartRepo) GetByID(ctx context.Context, id uuid.UUID) (Cart, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	return scanCart(row)
}

// GetActiveByUser returns the user's newest unexpired cart.
func (r CartRepo) GetActiveByUser(ctx context.Context, userID uuid.UUID) (Cart, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+cartColumns+`
		FROM carts
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1`, userID)
	return scanCart(row)
}

// GetActiveByAnon returns the guest's newest unexpired cart.
func (r CartRepo) GetActiveByAnon(ctx context.Context, anonID string) (Cart, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+cartColumns+`
		FROM carts
		WHERE anon_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1`, anonID)
	return scanCart(row)
}

// Touch extends the cart expiry window.
func (r CartRepo) Touch(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	_, err := r.DB.Exec(ctx, `UPDATE carts SET expires_at = $2, updated_at = now() WHERE id = $1`, id, expiresAt)
	return err
}

// SetVoucherCode attaches or detaches a voucher code without touching the discount fields.
func (r CartRepo) SetVoucherCode(ctx context.Context, id uuid.UUID, code *string) error {
	_, err := r.DB.Exec(ctx, `UPDATE carts SET voucher_code = $2, updated_at = now() WHERE id = $1`, id, code)
	return err
}

// UpdateDiscount persists the computed discount amount and display name.
func (r CartRepo) UpdateDiscount(ctx context.Context, id uuid.UUID, amount int64, name string) (Cart, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE carts
		SET discount_amount = $2, discount_name = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+cartColumns, id, amount, name)
	return scanCart(row)
}

// ClearDiscount resets the discount fields and detaches the voucher code in one write.
func (r CartRepo) ClearDiscount(ctx context.Context, id uuid.UUID) (Cart, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE carts
		SET discount_amount = 0, discount_name = '', voucher_code = NULL, updated_at = now()
		WHERE id = $1
		RETURNING `+cartColumns, id)
	return scanCart(row)
}

// SetShippingMethod records the selected shipping method.
func (r CartRepo) SetShippingMethod(ctx context.Context, id uuid.UUID, methodID *uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `UPDATE carts SET shipping_method_id = $2, updated_at = now() WHERE id = $1`, id, methodID)
	return err
}

// SetAddresses stores the shipping and billing addresses as JSON documents.
func (r CartRepo) SetAddresses(ctx context.Context, id uuid.UUID, shipping, billing []byte) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE carts
		SET shipping_address = $2, billing_address = $3, updated_at = now()
		WHERE id = $1`, id, shipping, billing)
	return err
}

// DeleteExpired removes carts whose expiry is in the past.
func (r CartRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListIDsWithStaleVoucher returns carts holding a voucher that is no longer inside its active window.
func (r CartRepo) ListIDsWithStaleVoucher(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id
		FROM carts c
		LEFT JOIN vouchers v ON v.code = c.voucher_code
		WHERE c.voucher_code IS NOT NULL
		  AND (v.id IS NULL OR (v.valid_to IS NOT NULL AND v.valid_to < $1)
			OR (v.valid_from IS NOT NULL AND v.valid_from > $1))
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const cartItemColumns = `id, cart_id, product_id, variant_id, title, qty, unit_price, subtotal`

// ListItems returns all items belonging to the cart.
func (r CartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartItem
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetItemByID loads a single cart item.
func (r CartRepo) GetItemByID(ctx context.Context, id uuid.UUID) (CartItem, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id)
	return scanCartItem(row)
}

// FindItem looks up an item by product/variant within a cart.
func (r CartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (CartItem, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+cartItemColumns+`
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
		  AND variant_id IS NOT DISTINCT FROM $3`, cartID, productID, variantID)
	return scanCartItem(row)
}

// CreateItem inserts a cart item.
func (r CartRepo) CreateItem(ctx context.Context, it CartItem) (CartItem, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, variant_id, title, qty, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+cartItemColumns,
		it.CartID, it.ProductID, it.VariantID, it.Title, it.Qty, it.UnitPrice, it.Subtotal)
	return scanCartItem(row)
}

// UpdateItemQty updates the quantity and subtotal for an item.
func (r CartRepo) UpdateItemQty(ctx context.Context, id uuid.UUID, qty int32, subtotal int64) (CartItem, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE cart_items SET qty = $2, subtotal = $3 WHERE id = $1
		RETURNING `+cartItemColumns, id, qty, subtotal)
	return scanCartItem(row)
}

// DeleteItem removes an item scoped to its cart.
func (r CartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	return err
}

func scanCart(row rowScanner) (Cart, error) {
	var c Cart
	err := row.Scan(
		&c.ID, &c.UserID, &c.AnonID, &c.VoucherCode, &c.DiscountAmount, &c.DiscountName,
		&c.ShippingMethodID, &c.ShippingAddress, &c.BillingAddress, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanCartItem(row rowScanner) (CartItem, error) {
	var it CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Title, &it.Qty, &it.UnitPrice, &it.Subtotal)
	return it, err
}
