// Package redis is the go-redis-backed KVStore.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

const (
	heartbeatKey   = "matching:last_run"
	activeFlagKey  = "matching:has_active_orders"
	tradeTopic     = "trade:executed"
	heartbeatTTL   = 10 * time.Minute
	activeFlagTTL  = 5 * time.Minute
)

var _ port.KVStore = (*KVStore)(nil)

// KVStore is the shared flag/heartbeat/pub-sub store.
type KVStore struct {
	client *redis.Client
}

func New(addr, password string, db int) *KVStore {
	return &KVStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (k *KVStore) Heartbeat(ctx context.Context) error {
	return k.client.Set(ctx, heartbeatKey, time.Now().Format(time.RFC3339), heartbeatTTL).Err()
}

func (k *KVStore) SetActiveOrdersFlag(ctx context.Context, active bool) error {
	return k.client.Set(ctx, activeFlagKey, active, activeFlagTTL).Err()
}

func (k *KVStore) ActiveOrdersFlag(ctx context.Context) (bool, error) {
	v, err := k.client.Get(ctx, activeFlagKey).Bool()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v, nil
}

func (k *KVStore) PublishTradeExecuted(ctx context.Context, evt domain.TradeExecutedEvent) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return k.client.Publish(ctx, tradeTopic, b).Err()
}
