package repo

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepo exposes the minimal product reads the cart flow needs.
type CatalogRepo struct {
	DB DBTX
}

// GetProductForCart loads the pricing and scoping fields of a product.
func (r CatalogRepo) GetProductForCart(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, title, slug, price, category_id, requires_shipping
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Slug, &p.Price, &p.CategoryID, &p.RequiresShipping)
	return p, err
}

// GetVariantForCart loads a product variant.
func (r CatalogRepo) GetVariantForCart(ctx context.Context, id uuid.UUID) (Variant, error) {
	var v Variant
	err := r.DB.QueryRow(ctx, `
		SELECT id, product_id, sku, price, stock
		FROM product_variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.Stock)
	return v, err
}
