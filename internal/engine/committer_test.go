package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/olyamironova/exchange-engine/internal/adapter/inmemory"
	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/engine"
)

type EngineTestSuite struct {
	suite.Suite
	repo   *inmemory.Repository
	kv     *inmemory.KVStore
	rt     *inmemory.Realtime
	sec    *inmemory.Secondary
	proj   *inmemory.Projection
	eng    *engine.Engine
	ctx    context.Context
}

func (s *EngineTestSuite) SetupTest() {
	s.repo = inmemory.NewRepository()
	s.kv = inmemory.NewKVStore()
	s.rt = inmemory.NewRealtime()
	s.sec = inmemory.NewSecondary()
	s.proj = inmemory.NewProjection()
	s.ctx = context.Background()

	s.eng = engine.New(engine.Config{
		TickInterval:               10 * time.Millisecond,
		StartupGrace:               0,
		NegotiationResponseWindow:  50 * time.Millisecond,
		ConfirmationResponseWindow: 50 * time.Millisecond,
	}, s.repo, s.kv, s.rt, s.sec, s.proj, zaptest.NewLogger(s.T()))
	s.eng.Start(s.ctx)
}

func (s *EngineTestSuite) TearDownTest() {
	s.eng.Stop()
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) seedUser(id string) {
	s.repo.PutUser(domain.User{ID: id, Username: id, SecondaryAddress: id + "@example.com"})
}

// exact match: same price, same remaining quantity commits immediately.
func (s *EngineTestSuite) TestExactMatchCommitsOnProcessAsset() {
	s.seedUser("buyer")
	s.seedUser("seller")

	bid := domain.Order{ID: "bid-1", Side: domain.Bid, Asset: "GOLD", Price: decimal.NewFromInt(100),
		OriginalAmount: 10, Remaining: 10, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "offer-1", Side: domain.Offer, Asset: "GOLD", Price: decimal.NewFromInt(100),
		OriginalAmount: 10, Remaining: 10, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)

	s.eng.ProcessAsset(s.ctx, "GOLD")

	require.Eventually(s.T(), func() bool {
		return len(s.kv.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	evt := s.kv.Published()[0]
	s.Equal(domain.FullMatch, evt.MatchType)
	s.Equal(int64(10), evt.Amount)

	got, err := s.repo.FindOrderByID(s.ctx, "bid-1")
	s.Require().NoError(err)
	s.Equal(domain.StatusMatched, got.Status)
}

// smaller buyer upsizes to accept the larger seller's full quantity.
func (s *EngineTestSuite) TestSmallerBuyerAcceptsUpsize() {
	s.seedUser("buyer")
	s.seedUser("seller")

	bid := domain.Order{ID: "bid-2", Side: domain.Bid, Asset: "SILVER", Price: decimal.NewFromInt(50),
		OriginalAmount: 5, Remaining: 5, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "offer-2", Side: domain.Offer, Asset: "SILVER", Price: decimal.NewFromInt(50),
		OriginalAmount: 8, Remaining: 8, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)

	s.eng.ProcessAsset(s.ctx, "SILVER")

	require.Eventually(s.T(), func() bool {
		return len(s.rt.Notified()) > 0
	}, time.Second, 5*time.Millisecond)

	key, ok := s.eng.ResolvePrefix(domain.Order{ID: "bid-2"}.IDPrefix())
	s.Require().True(ok)

	s.eng.HandleQuantityConfirmationResponse(s.ctx, key, true, nil)

	require.Eventually(s.T(), func() bool {
		return len(s.kv.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	evt := s.kv.Published()[0]
	s.Equal(int64(8), evt.Amount)
}

// smaller declines, larger accepts a partial fill at the smaller quantity.
func (s *EngineTestSuite) TestSmallerDeclinesLargerAcceptsPartial() {
	s.seedUser("buyer")
	s.seedUser("seller")

	bid := domain.Order{ID: "bid-3", Side: domain.Bid, Asset: "COPPER", Price: decimal.NewFromInt(20),
		OriginalAmount: 4, Remaining: 4, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "offer-3", Side: domain.Offer, Asset: "COPPER", Price: decimal.NewFromInt(20),
		OriginalAmount: 9, Remaining: 9, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)

	s.eng.ProcessAsset(s.ctx, "COPPER")

	require.Eventually(s.T(), func() bool {
		return len(s.rt.Notified()) > 0
	}, time.Second, 5*time.Millisecond)

	key, ok := s.eng.ResolvePrefix(domain.Order{ID: "bid-3"}.IDPrefix())
	s.Require().True(ok)

	s.eng.HandleQuantityConfirmationResponse(s.ctx, key, false, nil)

	require.Eventually(s.T(), func() bool {
		return len(s.rt.Notified()) >= 2
	}, time.Second, 5*time.Millisecond)

	s.eng.HandleQuantityConfirmationResponse(s.ctx, key, true, nil)

	require.Eventually(s.T(), func() bool {
		return len(s.kv.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	evt := s.kv.Published()[0]
	s.Equal(int64(4), evt.Amount)
}

// smaller declines, larger also declines: the pair is recorded as declined
// and must never be retried.
func (s *EngineTestSuite) TestBothDeclineSuppressesRetry() {
	s.seedUser("buyer")
	s.seedUser("seller")

	bid := domain.Order{ID: "bid-4", Side: domain.Bid, Asset: "TIN", Price: decimal.NewFromInt(15),
		OriginalAmount: 3, Remaining: 3, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "offer-4", Side: domain.Offer, Asset: "TIN", Price: decimal.NewFromInt(15),
		OriginalAmount: 7, Remaining: 7, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)

	s.eng.ProcessAsset(s.ctx, "TIN")
	require.Eventually(s.T(), func() bool { return len(s.rt.Notified()) > 0 }, time.Second, 5*time.Millisecond)

	key, ok := s.eng.ResolvePrefix(domain.Order{ID: "bid-4"}.IDPrefix())
	s.Require().True(ok)

	s.eng.HandleQuantityConfirmationResponse(s.ctx, key, false, nil)
	require.Eventually(s.T(), func() bool { return len(s.rt.Notified()) >= 2 }, time.Second, 5*time.Millisecond)
	s.eng.HandleQuantityConfirmationResponse(s.ctx, key, false, nil)

	time.Sleep(30 * time.Millisecond)
	s.eng.ProcessAsset(s.ctx, "TIN")
	time.Sleep(30 * time.Millisecond)

	s.Empty(s.kv.Published())
	s.Empty(s.eng.PendingForUser("buyer"), "a declined pair must not reopen a confirmation")
}
