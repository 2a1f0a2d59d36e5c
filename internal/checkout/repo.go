package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-branch-stock.git/internal/stock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo runs the commit sequence against Postgres. Every call routes through
// the transaction carried in ctx when one is open, so the whole
// validate -> commit -> decrement -> consume sequence shares one tx and rolls
// back together.
type Repo struct{ DB *pgxpool.Pool }

type txKey struct{}

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

func (r *Repo) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.DB.QueryRow(ctx, sql, args...)
}

func (r *Repo) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.DB.Exec(ctx, sql, args...)
}

// GetStockForUpdate locks the ledger row for the rest of the transaction.
// This closes the race where two checkouts pass validation against the same
// row and both decrement.
func (r *Repo) GetStockForUpdate(ctx context.Context, productID string, branchID int64) (int, error) {
	var qty int
	err := r.queryRow(ctx,
		`SELECT quantity FROM branch_stock WHERE product_id=$1 AND branch_id=$2 FOR UPDATE`,
		productID, branchID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, stock.ErrNotStocked
		}
		return 0, err
	}
	return qty, nil
}

func (r *Repo) SumActiveHolds(ctx context.Context, productID string, branchID int64, excludeSessionKey string, now time.Time) (int, error) {
	var total int
	err := r.queryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_holds
		WHERE product_id=$1 AND branch_id=$2 AND session_key<>$3 AND expires_at > $4`,
		productID, branchID, excludeSessionKey, now).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repo) GetPricing(ctx context.Context, productID string, branchID int64) (stock.Pricing, error) {
	var p stock.Pricing
	err := r.queryRow(ctx, `
		SELECT p.id, p.name, COALESCE(bs.price_override_cents, p.sale_price_cents, p.price_cents)
		FROM products p
		LEFT JOIN branch_stock bs ON bs.product_id = p.id AND bs.branch_id = $2
		WHERE p.id = $1`,
		productID, branchID).Scan(&p.ProductID, &p.Name, &p.UnitPriceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return stock.Pricing{}, stock.ErrProductNotFound
		}
		return stock.Pricing{}, err
	}
	return p, nil
}

func (r *Repo) InsertOrder(ctx context.Context, o Order, items []OrderItem) error {
	_, err := r.exec(ctx, `
		INSERT INTO orders (id, number, user_id, shipping_name, shipping_address, shipping_phone,
		                    branch_id, total_cents, delivery_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.Number, o.UserID, o.ShippingName, o.ShippingAddress, o.ShippingPhone,
		o.BranchID, o.TotalCents, o.DeliveryDate, o.CreatedAt)
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := r.exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, qty, unit_price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, it.ProductID, it.ProductName, it.Qty, it.UnitPriceCents); err != nil {
			return err
		}
	}
	return nil
}

// DecrementStock floors at 0. The availability check ran under the same row
// lock, so the floor only matters if the ledger was already inconsistent.
func (r *Repo) DecrementStock(ctx context.Context, productID string, branchID int64, amount int) (int, error) {
	var newQty int
	err := r.queryRow(ctx, `
		UPDATE branch_stock
		SET quantity = GREATEST(quantity - $3, 0), updated_at = NOW()
		WHERE product_id=$1 AND branch_id=$2
		RETURNING quantity`,
		productID, branchID, amount).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, stock.ErrNotStocked
		}
		return 0, err
	}
	return newQty, nil
}

func (r *Repo) DeleteHolds(ctx context.Context, sessionKey string) (int64, error) {
	ct, err := r.exec(ctx, `DELETE FROM stock_holds WHERE session_key=$1`, sessionKey)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
