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

type OrderBookTestSuite struct {
	suite.Suite
	repo *inmemory.Repository
	eng  *engine.Engine
	ctx  context.Context
}

func (s *OrderBookTestSuite) SetupTest() {
	s.repo = inmemory.NewRepository()
	kv := inmemory.NewKVStore()
	rt := inmemory.NewRealtime()
	sec := inmemory.NewSecondary()
	proj := inmemory.NewProjection()
	s.ctx = context.Background()
	s.eng = engine.New(engine.Config{}, s.repo, kv, rt, sec, proj, zaptest.NewLogger(s.T()))
}

func TestOrderBookSuite(t *testing.T) {
	suite.Run(t, new(OrderBookTestSuite))
}

// bids sort highest price first, offers sort lowest price first, and totals
// sum every resting order's remaining quantity, not just the levels shown.
func (s *OrderBookTestSuite) TestGetOrderBookSortsAndTotals() {
	base := time.Now()
	orders := []domain.Order{
		{ID: "b1", Side: domain.Bid, Asset: "LEAD", Price: decimal.NewFromInt(10), Remaining: 3, Status: domain.StatusActive, CreatedAt: base},
		{ID: "b2", Side: domain.Bid, Asset: "LEAD", Price: decimal.NewFromInt(12), Remaining: 4, Status: domain.StatusActive, CreatedAt: base.Add(time.Millisecond)},
		{ID: "o1", Side: domain.Offer, Asset: "LEAD", Price: decimal.NewFromInt(20), Remaining: 5, Status: domain.StatusActive, CreatedAt: base},
		{ID: "o2", Side: domain.Offer, Asset: "LEAD", Price: decimal.NewFromInt(18), Remaining: 6, Status: domain.StatusActive, CreatedAt: base.Add(time.Millisecond)},
	}
	for _, o := range orders {
		s.repo.PutOrder(o)
	}

	view, err := s.eng.GetOrderBook(s.ctx, "LEAD")
	s.Require().NoError(err)

	s.Require().Len(view.Bids, 2)
	s.Equal("b2", view.Bids[0].OrderID)
	s.Equal("b1", view.Bids[1].OrderID)

	s.Require().Len(view.Offers, 2)
	s.Equal("o2", view.Offers[0].OrderID)
	s.Equal("o1", view.Offers[1].OrderID)

	s.Equal(int64(7), view.TotalBids)
	s.Equal(int64(11), view.TotalOffers)
}

// only the top 10 levels per side are returned even when more orders rest.
func (s *OrderBookTestSuite) TestGetOrderBookTruncatesToDepth10() {
	base := time.Now()
	for i := 0; i < 15; i++ {
		s.repo.PutOrder(domain.Order{
			ID:        "bid-" + string(rune('a'+i)),
			Side:      domain.Bid,
			Asset:     "ZINC2",
			Price:     decimal.NewFromInt(int64(100 + i)),
			Remaining: 1,
			Status:    domain.StatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		})
	}
	s.repo.PutOrder(domain.Order{ID: "only-offer", Side: domain.Offer, Asset: "ZINC2", Price: decimal.NewFromInt(1000), Remaining: 1, Status: domain.StatusActive, CreatedAt: base})

	view, err := s.eng.GetOrderBook(s.ctx, "ZINC2")
	require.NoError(s.T(), err)
	s.Len(view.Bids, 10)
	s.Equal(int64(15), view.TotalBids)
}

// PendingForUser only lists confirmations currently awaiting a response from
// that user, narrowed to whichever stage is active.
func (s *OrderBookTestSuite) TestPendingForUserFiltersByAwaitingSide() {
	s.repo.PutUser(domain.User{ID: "buyer", Username: "buyer"})
	s.repo.PutUser(domain.User{ID: "seller", Username: "seller"})

	bid := domain.Order{ID: "bid-pf", Side: domain.Bid, Asset: "BRASS", Price: decimal.NewFromInt(40),
		OriginalAmount: 2, Remaining: 2, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "offer-pf", Side: domain.Offer, Asset: "BRASS", Price: decimal.NewFromInt(40),
		OriginalAmount: 6, Remaining: 6, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)

	s.eng.Start(s.ctx)
	defer s.eng.Stop()
	s.eng.ProcessAsset(s.ctx, "BRASS")

	require.Eventually(s.T(), func() bool {
		return len(s.eng.PendingForUser("buyer")) == 1
	}, time.Second, 5*time.Millisecond)

	s.Empty(s.eng.PendingForUser("seller"))
}
