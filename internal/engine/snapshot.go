package engine

import (
	"context"
	"sync"
	"time"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// snapshotValidity is the bounded-freshness window for the cached order
// vector.
const snapshotValidity = 30 * time.Second

// snapshotCache is a bounded-freshness, process-local view of active orders.
// It is never mutated in place — get() either returns the cached vector
// unchanged or replaces it wholesale.
type snapshotCache struct {
	repo port.Repository

	mu        sync.Mutex
	orders    []domain.Order
	fetchedAt time.Time
}

func newSnapshotCache(repo port.Repository) *snapshotCache {
	return &snapshotCache{repo: repo}
}

// get returns the cached vector if it is still within the validity window,
// otherwise refreshes from the store. On store failure it returns the
// previous vector rather than an empty one, so a transient outage doesn't
// look like an empty book.
func (c *snapshotCache) get(ctx context.Context) []domain.Order {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < snapshotValidity {
		return c.orders
	}

	fresh, err := c.repo.FindActiveOrders(ctx)
	if err != nil {
		return c.orders
	}
	c.orders = fresh
	c.fetchedAt = time.Now()
	return c.orders
}

// invalidate wipes fetchedAt, forcing the next get() to refresh.
func (c *snapshotCache) invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
