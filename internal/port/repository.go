package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// Repository is the persistent store of users, orders, and trades. It is an
// external collaborator — only its interface is specified here.
type Repository interface {
	// FindActiveOrders returns all Orders with status ACTIVE and remaining > 0,
	// sorted (asset asc, price desc, createdAt asc).
	FindActiveOrders(ctx context.Context) ([]domain.Order, error)

	// FindActiveOrdersForAsset is FindActiveOrders filtered to one asset.
	FindActiveOrdersForAsset(ctx context.Context, asset string) ([]domain.Order, error)

	FindOrderByID(ctx context.Context, id string) (domain.Order, error)
	FindUserByID(ctx context.Context, id string) (domain.User, error)

	UpdateOrderPrice(ctx context.Context, id string, newPrice decimal.Decimal) error

	// UpdateOrderAmount sets both originalAmount and remaining to newAmount.
	// Used only when the smaller party upsizes to accept a larger fill.
	UpdateOrderAmount(ctx context.Context, id string, newAmount int64) error

	// CommitTrade creates the Trade and updates both orders'
	// remaining/matched/counterparty/status in one transaction. Returns the
	// persisted Trade and the two orders as they stand after commit.
	CommitTrade(ctx context.Context, bid, offer domain.Order, amount int64, price, commission decimal.Decimal) (domain.Trade, domain.Order, domain.Order, error)
}
