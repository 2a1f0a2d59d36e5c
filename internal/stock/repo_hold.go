package stock

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HoldRepo persists session-scoped stock holds. One row per
// (product, branch, session_key): re-holding the same triple refreshes
// quantity and expiry instead of duplicating.
type HoldRepo struct{ DB *pgxpool.Pool }

func (r *HoldRepo) Upsert(ctx context.Context, h StockHold) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO stock_holds (product_id, branch_id, session_key, quantity, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id, branch_id, session_key)
		DO UPDATE SET quantity = EXCLUDED.quantity, expires_at = EXCLUDED.expires_at`,
		h.ProductID, h.BranchID, h.SessionKey, h.Quantity, h.ExpiresAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

// Delete removes one triple's row. Used to unwind a partially written batch.
func (r *HoldRepo) Delete(ctx context.Context, productID string, branchID int64, sessionKey string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM stock_holds WHERE product_id=$1 AND branch_id=$2 AND session_key=$3`,
		productID, branchID, sessionKey)
	return err
}

func (r *HoldRepo) DeleteBySessionKey(ctx context.Context, sessionKey string) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM stock_holds WHERE session_key=$1`, sessionKey)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// SumActive totals non-expired holds on (product, branch), skipping one
// session's own hold. Expiry is evaluated here, at read time; rows the
// sweeper has not reclaimed yet never count.
func (r *HoldRepo) SumActive(ctx context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error) {
	var total int
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_holds
		WHERE product_id=$1 AND branch_id=$2 AND session_key<>$3 AND expires_at > $4`,
		productID, branchID, excludeSessionKey, now).Scan(&total)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return total, nil
}

// DeleteExpired physically removes lapsed rows. Hygiene only; correctness
// never depends on it because every reader filters on expires_at.
func (r *HoldRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM stock_holds WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
