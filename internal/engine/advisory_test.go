package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/olyamironova/exchange-engine/internal/adapter/inmemory"
	"github.com/olyamironova/exchange-engine/internal/domain"
)

func newTestEngine(t *testing.T) (*Engine, *inmemory.Repository, *inmemory.Secondary) {
	repo := inmemory.NewRepository()
	kv := inmemory.NewKVStore()
	rt := inmemory.NewRealtime()
	sec := inmemory.NewSecondary()
	proj := inmemory.NewProjection()
	e := New(Config{}, repo, kv, rt, sec, proj, zaptest.NewLogger(t))
	return e, repo, sec
}

// a spread within the configured threshold reaches both parties' secondary
// channel, and a second call inside the dedup window is suppressed.
func TestSendCompetitiveAdvisoryDedupsWithinWindow(t *testing.T) {
	e, repo, sec := newTestEngine(t)
	repo.PutUser(domain.User{ID: "buyer", SecondaryAddress: "buyer@example.com"})
	repo.PutUser(domain.User{ID: "seller", SecondaryAddress: "seller@example.com"})

	bid := domain.Order{ID: "b", Asset: "NICKEL", Side: domain.Bid, Price: decimal.NewFromInt(95), UserID: "buyer"}
	offer := domain.Order{ID: "o", Asset: "NICKEL", Side: domain.Offer, Price: decimal.NewFromInt(100), UserID: "seller"}

	ctx := context.Background()
	e.sendCompetitiveAdvisory(ctx, "NICKEL", bid, offer)
	// Secondary-channel delivery runs on its own goroutine.
	assert.Eventually(t, func() bool { return len(sec.Messages()) == 2 }, time.Second, 5*time.Millisecond)

	e.sendCompetitiveAdvisory(ctx, "NICKEL", bid, offer)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, sec.Messages(), 2, "second call within the dedup window must be suppressed")
}

// a spread beyond the threshold is never advised.
func TestSendCompetitiveAdvisorySkipsWideSpread(t *testing.T) {
	e, repo, sec := newTestEngine(t)
	repo.PutUser(domain.User{ID: "buyer", SecondaryAddress: "buyer@example.com"})
	repo.PutUser(domain.User{ID: "seller", SecondaryAddress: "seller@example.com"})

	bid := domain.Order{ID: "b", Asset: "ZINC", Side: domain.Bid, Price: decimal.NewFromInt(50), UserID: "buyer"}
	offer := domain.Order{ID: "o", Asset: "ZINC", Side: domain.Offer, Price: decimal.NewFromInt(1000), UserID: "seller"}

	e.sendCompetitiveAdvisory(context.Background(), "ZINC", bid, offer)
	assert.Empty(t, sec.Messages())
}

func TestOppositeSide(t *testing.T) {
	assert.Equal(t, domain.Offer, oppositeSide(domain.Bid))
	assert.Equal(t, domain.Bid, oppositeSide(domain.Offer))
}
