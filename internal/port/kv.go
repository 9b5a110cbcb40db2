package port

import (
	"context"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// KVStore is the shared key/value store used for flags, the last-run
// heartbeat, and pub/sub. All values are advisory — loss of any key must
// not corrupt matching.
type KVStore interface {
	// Heartbeat writes matching:last_run with a ~10 minute expiry.
	Heartbeat(ctx context.Context) error

	// SetActiveOrdersFlag writes matching:has_active_orders with a 5 minute
	// expiry.
	SetActiveOrdersFlag(ctx context.Context, active bool) error

	// ActiveOrdersFlag reads matching:has_active_orders. Its value is a hint
	// only; callers must not skip a refresh based on it.
	ActiveOrdersFlag(ctx context.Context) (bool, error)

	// PublishTradeExecuted publishes on the trade:executed pub/sub topic.
	PublishTradeExecuted(ctx context.Context, evt domain.TradeExecutedEvent) error
}
