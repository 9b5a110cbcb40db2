package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// commit executes a single match atomically against the store and publishes
// the resulting event. bid and offer are the value snapshots the decision
// was made against; callers that have just refreshed either order (e.g.
// after a quantity upsize) must pass the refreshed copies.
func (e *Engine) commit(ctx context.Context, bid, offer domain.Order) {
	amount := min64(bid.Remaining, offer.Remaining)
	price := offer.Price
	commission := calcCommission(amount, price)

	trade, postBid, postOffer, err := e.repo.CommitTrade(ctx, bid, offer, amount, price, commission)
	if err != nil {
		// Abort, log, and let the next tick re-examine the pair unless it
		// is already recorded as declined.
		e.log.Error("commit: store transaction aborted", zap.String("asset", bid.Asset),
			zap.String("bid", bid.ID), zap.String("offer", offer.ID), zap.Error(err))
		return
	}

	matchType := domain.ClassifyMatchType(bid.OriginalAmount, offer.OriginalAmount)

	e.cache.invalidate()

	go e.projection.RefreshAsset(ctx, bid.Asset)
	go func() {
		if pubErr := e.kv.PublishTradeExecuted(ctx, tradeExecutedEvent(trade, postBid, postOffer, matchType)); pubErr != nil {
			e.log.Warn("commit: publish trade:executed failed", zap.Error(pubErr))
		}
	}()
	go e.notifyTrade(ctx, trade, postBid, postOffer, matchType)
}

func tradeExecutedEvent(trade domain.Trade, bid, offer domain.Order, matchType domain.MatchType) domain.TradeExecutedEvent {
	return domain.TradeExecutedEvent{
		TradeID:           trade.ID,
		Asset:             trade.Asset,
		Price:             trade.Price,
		Amount:            trade.Amount,
		BuyerID:           trade.BuyerID,
		SellerID:          trade.SellerID,
		Timestamp:         trade.CreatedAt.Unix(),
		BidFullyMatched:   bid.Remaining == 0,
		OfferFullyMatched: offer.Remaining == 0,
		BidOrderID:        bid.ID,
		OfferOrderID:      offer.ID,
		MatchType:         matchType,
		PartialFill:       matchType != domain.FullMatch,
	}
}

// notifyTrade informs both parties of the execution. Failures here never
// affect the already-committed state.
func (e *Engine) notifyTrade(ctx context.Context, trade domain.Trade, bid, offer domain.Order, matchType domain.MatchType) {
	base := tradeExecutedEvent(trade, bid, offer, matchType)

	bidEvt := base
	bidEvt.OrderID = bid.ID
	bidEvt.Side = domain.Bid
	bidEvt.IsFullyFilled = bid.Remaining == 0
	bidEvt.IsPartialFill = matchType != domain.FullMatch
	bidEvt.RemainingAmount = bid.Remaining
	bidEvt.OriginalAmount = bid.OriginalAmount
	e.realtime.NotifyUser(ctx, bid.UserID, domain.TopicTradeExecuted, bidEvt)

	offerEvt := base
	offerEvt.OrderID = offer.ID
	offerEvt.Side = domain.Offer
	offerEvt.IsFullyFilled = offer.Remaining == 0
	offerEvt.IsPartialFill = matchType != domain.FullMatch
	offerEvt.RemainingAmount = offer.Remaining
	offerEvt.OriginalAmount = offer.OriginalAmount
	e.realtime.NotifyUser(ctx, offer.UserID, domain.TopicTradeExecuted, offerEvt)

	if matchType == domain.FullMatch {
		e.realtime.NotifyUser(ctx, bid.UserID, domain.TopicOrderMatched, domain.OrderMatchedEvent{
			OrderID: bid.ID, TradeID: trade.ID, Asset: trade.Asset, Price: trade.Price, Amount: trade.Amount, Side: domain.Bid,
		})
		e.realtime.NotifyUser(ctx, offer.UserID, domain.TopicOrderMatched, domain.OrderMatchedEvent{
			OrderID: offer.ID, TradeID: trade.ID, Asset: trade.Asset, Price: trade.Price, Amount: trade.Amount, Side: domain.Offer,
		})
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
