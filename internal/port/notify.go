package port

import (
	"context"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// Realtime is the per-user addressed push channel plus the broadcast
// channel used for market updates. Fire-and-forget.
type Realtime interface {
	NotifyUser(ctx context.Context, userID, topic string, payload any)
	Broadcast(ctx context.Context, topic string, payload any)
}

// Secondary is the out-of-band notification channel used to message users
// on a transport other than the realtime push channel. Best-effort; callers
// must never await it inline on the engine's serialization goroutine.
type Secondary interface {
	Send(ctx context.Context, user domain.User, message string) error
}

// Projection is the order-book projection service. The core only ever
// asks it to refresh one asset; everything else about it is out of scope.
type Projection interface {
	RefreshAsset(ctx context.Context, asset string)
}
