package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// decideAsset makes the per-asset matching decision: find the best bid and
// offer, then commit, open a confirmation, or open a negotiation depending
// on how their prices and quantities compare. It must run on the
// serialization goroutine.
func (e *Engine) decideAsset(ctx context.Context, asset string, orders []domain.Order) {
	bids, offers := splitSides(orders)
	if len(bids) == 0 || len(offers) == 0 {
		return
	}

	bestBid := bestOf(bids, true)
	bestOffer := bestOf(offers, false)

	switch {
	case bestBid.Price.Equal(bestOffer.Price):
		e.handlePriceMatch(ctx, asset, bestBid, bestOffer)

	case bestBid.Price.LessThan(bestOffer.Price):
		e.sendCompetitiveAdvisory(ctx, asset, bestBid, bestOffer)
		e.driveNegotiation(ctx, asset, bestBid, bestOffer)

	default:
		// bestBid.Price > bestOffer.Price cannot occur given invariants; if
		// observed, treat as a crossing book and commit directly at the
		// offer price — the passive order sets the trade price.
		// handlePriceMatch is not used here: it may route through
		// openOrSkipConfirmation, which quotes a PendingConfirmation at
		// bid.Price and requires bid.Price == offer.Price.
		e.log.Warn("decideAsset: crossing book observed", zap.String("asset", asset),
			zap.String("bid", bestBid.ID), zap.String("offer", bestOffer.ID))
		e.commit(ctx, bestBid, bestOffer)
	}
}

func (e *Engine) handlePriceMatch(ctx context.Context, asset string, bestBid, bestOffer domain.Order) {
	if bestBid.Remaining == bestOffer.Remaining {
		e.commit(ctx, bestBid, bestOffer)
		return
	}
	e.openOrSkipConfirmation(ctx, asset, bestBid, bestOffer)
}

// splitSides partitions an asset's active orders into bids and offers.
func splitSides(orders []domain.Order) (bids, offers []domain.Order) {
	for _, o := range orders {
		switch o.Side {
		case domain.Bid:
			bids = append(bids, o)
		case domain.Offer:
			offers = append(offers, o)
		}
	}
	return
}

// bestOf picks the best bid (highest price) or best offer (lowest price)
// among orders, ties broken by earliest createdAt.
func bestOf(orders []domain.Order, wantHighest bool) domain.Order {
	best := orders[0]
	for _, o := range orders[1:] {
		better := false
		if wantHighest {
			better = o.Price.GreaterThan(best.Price) ||
				(o.Price.Equal(best.Price) && o.CreatedAt.Before(best.CreatedAt))
		} else {
			better = o.Price.LessThan(best.Price) ||
				(o.Price.Equal(best.Price) && o.CreatedAt.Before(best.CreatedAt))
		}
		if better {
			best = o
		}
	}
	return best
}
