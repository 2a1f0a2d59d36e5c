package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepo is the read-only product view this service needs: existence,
// listing, and the effective unit price checkout freezes into order items.
// Catalog CRUD lives elsewhere.
type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, price_cents, sale_price_cents, created_at, updated_at
		FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.SalePriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) Exists(ctx context.Context, productID string) (bool, error) {
	var one int
	err := r.DB.QueryRow(ctx, `SELECT 1 FROM products WHERE id=$1`, productID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetPricing resolves name + effective unit price for one product at one
// branch: branch price override first, then sale price, then list price.
func (r *CatalogRepo) GetPricing(ctx context.Context, productID string, branchID int64) (Pricing, error) {
	var p Pricing
	err := r.DB.QueryRow(ctx, `
		SELECT p.id, p.name, COALESCE(bs.price_override_cents, p.sale_price_cents, p.price_cents)
		FROM products p
		LEFT JOIN branch_stock bs ON bs.product_id = p.id AND bs.branch_id = $2
		WHERE p.id = $1`,
		productID, branchID).Scan(&p.ProductID, &p.Name, &p.UnitPriceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return Pricing{}, ErrProductNotFound
		}
		return Pricing{}, err
	}
	return p, nil
}
