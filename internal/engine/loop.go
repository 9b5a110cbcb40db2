package engine

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// runLoop drives the periodic scan: a startup grace, then a fixed-cadence
// ticker. The loop is cooperative with itself — each tick
// runs to completion on the serialization goroutine before the ticker can
// deliver the next one, because tick() itself is submitted through submit().
func (e *Engine) runLoop(ctx context.Context) {
	defer e.wg.Done()

	timer := time.NewTimer(e.cfg.StartupGrace)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-e.stopCh:
		return
	}

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	e.tick(ctx)
	for {
		select {
		case <-ticker.C:
			e.tick(ctx)
		case <-e.stopCh:
			return
		}
	}
}

// tick is one pass of the scan loop, run on the serialization goroutine.
func (e *Engine) tick(ctx context.Context) {
	e.submit(func() {
		if err := e.kv.Heartbeat(ctx); err != nil {
			e.log.Warn("tick: heartbeat failed", zap.Error(err))
		}

		// The hint flag is read for completeness but its value never gates
		// the refresh: the snapshot is refreshed regardless of what it says.
		if _, err := e.kv.ActiveOrdersFlag(ctx); err != nil {
			e.log.Debug("tick: active-orders flag read failed", zap.Error(err))
		}

		orders := e.cache.get(ctx)

		hasActive := len(orders) > 0
		if err := e.kv.SetActiveOrdersFlag(ctx, hasActive); err != nil {
			e.log.Warn("tick: active-orders flag write failed", zap.Error(err))
		}
		if !hasActive {
			return
		}

		byAsset := partitionByAsset(orders)
		assets := busiestFirst(byAsset)

		for _, asset := range assets {
			func() {
				defer func() {
					if r := recover(); r != nil {
						e.log.Error("tick: asset panicked", zap.String("asset", asset), zap.Any("panic", r))
					}
				}()
				e.decideAsset(ctx, asset, byAsset[asset])
			}()
		}
	})
}

func partitionByAsset(orders []domain.Order) map[string][]domain.Order {
	byAsset := make(map[string][]domain.Order)
	for _, o := range orders {
		byAsset[o.Asset] = append(byAsset[o.Asset], o)
	}
	return byAsset
}

// busiestFirst sorts assets by descending order count, so a tick that runs
// out of time still made progress on the busiest books first.
func busiestFirst(byAsset map[string][]domain.Order) []string {
	assets := make([]string, 0, len(byAsset))
	for asset := range byAsset {
		assets = append(assets, asset)
	}
	sort.SliceStable(assets, func(i, j int) bool {
		return len(byAsset[assets[i]]) > len(byAsset[assets[j]])
	})
	return assets
}
