// Package pg is the Postgres-backed Repository.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

var _ port.Repository = (*Repository)(nil)

// Repository is the Postgres-backed store of users, orders, and trades.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository dials dsn and returns a Repository. Call Close when done.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

const activeOrdersQuery = `
SELECT id, side, asset, price, original_amount, remaining, matched, status,
       user_id, counterparty_id, created_at
FROM orders
WHERE status = 'ACTIVE' AND remaining > 0
`

func (r *Repository) FindActiveOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, activeOrdersQuery+` ORDER BY asset ASC, price DESC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *Repository) FindActiveOrdersForAsset(ctx context.Context, asset string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, activeOrdersQuery+` AND asset = $1 ORDER BY price DESC, created_at ASC`, asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *Repository) FindOrderByID(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, side, asset, price, original_amount, remaining, matched, status,
       user_id, counterparty_id, created_at
FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *Repository) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, `SELECT id, username, secondary_address FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.SecondaryAddress)
	return u, err
}

func (r *Repository) UpdateOrderPrice(ctx context.Context, id string, newPrice decimal.Decimal) error {
	res, err := r.pool.Exec(ctx, `UPDATE orders SET price = $1 WHERE id = $2 AND status = 'ACTIVE'`, newPrice, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errors.New("order not found or not active")
	}
	return nil
}

func (r *Repository) UpdateOrderAmount(ctx context.Context, id string, newAmount int64) error {
	res, err := r.pool.Exec(ctx, `
UPDATE orders SET original_amount = $1, remaining = $1
WHERE id = $2 AND status = 'ACTIVE'`, newAmount, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errors.New("order not found or not active")
	}
	return nil
}

// CommitTrade runs as one pgx transaction: insert the Trade, then update
// both orders' remaining/matched/counterparty/status.
func (r *Repository) CommitTrade(ctx context.Context, bid, offer domain.Order, amount int64, price, commission decimal.Decimal) (domain.Trade, domain.Order, domain.Order, error) {
	var trade domain.Trade
	var postBid, postOffer domain.Order

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		tradeID := fmt.Sprintf("%s-%d", bid.ID[:minInt(8, len(bid.ID))], now.UnixNano())

		if _, err := tx.Exec(ctx, `
INSERT INTO trades(id, asset, price, amount, buyer_order_id, seller_order_id, buyer_id, seller_id, commission, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			tradeID, bid.Asset, price, amount, bid.ID, offer.ID, bid.UserID, offer.UserID, commission, now); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}

		bidRow := tx.QueryRow(ctx, `
UPDATE orders SET remaining = remaining - $1,
  matched = (remaining - $1 = 0),
  status = CASE WHEN remaining - $1 = 0 THEN 'MATCHED' ELSE status END,
  counterparty_id = CASE WHEN remaining - $1 = 0 THEN $2 ELSE counterparty_id END
WHERE id = $3
RETURNING id, side, asset, price, original_amount, remaining, matched, status, user_id, counterparty_id, created_at`,
			amount, offer.UserID, bid.ID)
		var err error
		postBid, err = scanOrder(bidRow)
		if err != nil {
			return fmt.Errorf("update bid: %w", err)
		}

		offerRow := tx.QueryRow(ctx, `
UPDATE orders SET remaining = remaining - $1,
  matched = (remaining - $1 = 0),
  status = CASE WHEN remaining - $1 = 0 THEN 'MATCHED' ELSE status END,
  counterparty_id = CASE WHEN remaining - $1 = 0 THEN $2 ELSE counterparty_id END
WHERE id = $3
RETURNING id, side, asset, price, original_amount, remaining, matched, status, user_id, counterparty_id, created_at`,
			amount, bid.UserID, offer.ID)
		postOffer, err = scanOrder(offerRow)
		if err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		trade = domain.Trade{
			ID: tradeID, Asset: bid.Asset, Price: price, Amount: amount,
			BuyerOrderID: bid.ID, SellerOrderID: offer.ID,
			BuyerID: bid.UserID, SellerID: offer.UserID,
			Commission: commission, CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return domain.Trade{}, domain.Order{}, domain.Order{}, err
	}
	return trade, postBid, postOffer, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	var side, status string
	var counterparty *string
	if err := row.Scan(&o.ID, &side, &o.Asset, &o.Price, &o.OriginalAmount, &o.Remaining, &o.Matched, &status, &o.UserID, &counterparty, &o.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	o.Side = domain.Side(side)
	o.Status = domain.OrderStatus(status)
	if counterparty != nil {
		o.CounterpartyID = *counterparty
	}
	return o, nil
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
