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

type NegotiationTestSuite struct {
	suite.Suite
	repo *inmemory.Repository
	kv   *inmemory.KVStore
	rt   *inmemory.Realtime
	sec  *inmemory.Secondary
	proj *inmemory.Projection
	eng  *engine.Engine
	ctx  context.Context
}

func (s *NegotiationTestSuite) SetupTest() {
	s.repo = inmemory.NewRepository()
	s.kv = inmemory.NewKVStore()
	s.rt = inmemory.NewRealtime()
	s.sec = inmemory.NewSecondary()
	s.proj = inmemory.NewProjection()
	s.ctx = context.Background()

	s.eng = engine.New(engine.Config{
		TickInterval:               10 * time.Millisecond,
		StartupGrace:               0,
		NegotiationResponseWindow:  40 * time.Millisecond,
		ConfirmationResponseWindow: 40 * time.Millisecond,
	}, s.repo, s.kv, s.rt, s.sec, s.proj, zaptest.NewLogger(s.T()))

	s.repo.PutUser(domain.User{ID: "buyer", Username: "buyer"})
	s.repo.PutUser(domain.User{ID: "seller", Username: "seller"})
	s.eng.Start(s.ctx)
}

func (s *NegotiationTestSuite) TearDownTest() {
	s.eng.Stop()
}

func TestNegotiationSuite(t *testing.T) {
	suite.Run(t, new(NegotiationTestSuite))
}

func (s *NegotiationTestSuite) seedSpreadBook(asset string) {
	bid := domain.Order{ID: "nbid", Side: domain.Bid, Asset: asset, Price: decimal.NewFromInt(90),
		OriginalAmount: 5, Remaining: 5, Status: domain.StatusActive, UserID: "buyer", CreatedAt: time.Now()}
	offer := domain.Order{ID: "noffer", Side: domain.Offer, Asset: asset, Price: decimal.NewFromInt(100),
		OriginalAmount: 5, Remaining: 5, Status: domain.StatusActive, UserID: "seller", CreatedAt: time.Now()}
	s.repo.PutOrder(bid)
	s.repo.PutOrder(offer)
}

// a timed-out negotiation broadcasts a market update.
func (s *NegotiationTestSuite) TestNegotiationTimeoutBroadcasts() {
	s.seedSpreadBook("PLATINUM")
	s.eng.ProcessAsset(s.ctx, "PLATINUM")

	require.Eventually(s.T(), func() bool {
		return len(s.rt.Broadcasts()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	found := false
	for _, b := range s.rt.Broadcasts() {
		if b.Topic == domain.TopicMarketUpdate {
			found = true
		}
	}
	s.True(found)
}

// the offer side improving its price to cross the bid resolves the
// negotiation and commits a trade on the next decision pass.
func (s *NegotiationTestSuite) TestNegotiationImproveToCross() {
	s.seedSpreadBook("PALLADIUM")
	s.eng.ProcessAsset(s.ctx, "PALLADIUM")

	require.Eventually(s.T(), func() bool {
		return len(s.rt.Notified()) > 0
	}, time.Second, 5*time.Millisecond)

	newPrice := decimal.NewFromInt(90)
	s.eng.HandleNegotiationResponse(s.ctx, "PALLADIUM", "seller", true, &newPrice)

	require.Eventually(s.T(), func() bool {
		return len(s.kv.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	evt := s.kv.Published()[0]
	s.True(evt.Price.Equal(newPrice))
}
