package inmemory

import (
	"context"
	"sync"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// KVStore is an in-memory stand-in for the shared key/value store.
type KVStore struct {
	mu             sync.Mutex
	active         bool
	heartbeats     int
	published      []domain.TradeExecutedEvent
}

var _ port.KVStore = (*KVStore)(nil)

func NewKVStore() *KVStore { return &KVStore{} }

func (k *KVStore) Heartbeat(ctx context.Context) error {
	k.mu.Lock()
	k.heartbeats++
	k.mu.Unlock()
	return nil
}

func (k *KVStore) SetActiveOrdersFlag(ctx context.Context, active bool) error {
	k.mu.Lock()
	k.active = active
	k.mu.Unlock()
	return nil
}

func (k *KVStore) ActiveOrdersFlag(ctx context.Context) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active, nil
}

func (k *KVStore) PublishTradeExecuted(ctx context.Context, evt domain.TradeExecutedEvent) error {
	k.mu.Lock()
	k.published = append(k.published, evt)
	k.mu.Unlock()
	return nil
}

// Published returns every event passed to PublishTradeExecuted, for test
// assertions.
func (k *KVStore) Published() []domain.TradeExecutedEvent {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]domain.TradeExecutedEvent, len(k.published))
	copy(out, k.published)
	return out
}
