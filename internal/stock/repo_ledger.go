package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepo persists committed quantity per (product, branch).
type LedgerRepo struct{ DB *pgxpool.Pool }

func (r *LedgerRepo) GetQuantity(ctx context.Context, productID string, branchID int64) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx,
		`SELECT quantity FROM branch_stock WHERE product_id=$1 AND branch_id=$2`,
		productID, branchID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotStocked
		}
		if isInvalidUUID(err) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return qty, nil
}

// SetQuantity upserts the ledger row. Negative input is a caller error and is
// rejected, not clamped; clamping would mask bugs in admin tooling.
func (r *LedgerRepo) SetQuantity(ctx context.Context, productID string, branchID int64, quantity int) (int, error) {
	if quantity < 0 {
		return 0, ErrInvalidQuantity
	}
	var newQty int
	err := r.DB.QueryRow(ctx, `
		INSERT INTO branch_stock (product_id, branch_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		RETURNING quantity`,
		productID, branchID, quantity).Scan(&newQty)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return newQty, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
