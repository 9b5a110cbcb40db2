package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// advisoryDedupWindow rate-limits competitive-bidding advisories per asset,
// so a book that sits at the same spread for several ticks doesn't re-send
// the same advisory every cycle. See DESIGN.md for the reasoning.
const advisoryDedupWindow = 30 * time.Second

// sendCompetitiveAdvisory notifies both sides of an asset with a spread
// when that spread is narrow enough to be worth acting on. Advisory only:
// it never changes orders or state.
func (e *Engine) sendCompetitiveAdvisory(ctx context.Context, asset string, bestBid, bestOffer domain.Order) {
	if last, ok := e.lastAdvisory[asset]; ok && time.Since(last) < advisoryDedupWindow {
		return
	}

	spread := bestOffer.Price.Sub(bestBid.Price)
	if bestBid.Price.IsZero() {
		return
	}
	spreadPct := spread.Div(bestBid.Price).Mul(decimal.NewFromInt(100))

	maxPct, _ := decimal.NewFromString(e.cfg.AdvisoryMaxSpreadPct)
	if spreadPct.GreaterThan(maxPct) {
		return
	}

	e.lastAdvisory[asset] = time.Now()

	e.sendAdvisoryTo(ctx, bestBid, bestOffer.Price, spread, spreadPct)
	e.sendAdvisoryTo(ctx, bestOffer, bestBid.Price, spread, spreadPct)
}

func (e *Engine) sendAdvisoryTo(ctx context.Context, own domain.Order, counterpartyPrice, spread, spreadPct decimal.Decimal) {
	evt := domain.CompetitiveAdvisoryEvent{
		Asset:             own.Asset,
		YourOrderID:       own.ID,
		YourPrice:         own.Price,
		CounterpartyPrice: counterpartyPrice,
		Spread:            spread,
		SpreadPct:         spreadPct,
		Message:           fmt.Sprintf("%s: your %s at %s is %s%% away from the best %s at %s. Consider improving.", own.Asset, string(own.Side), own.Price.String(), spreadPct.StringFixed(2), string(oppositeSide(own.Side)), counterpartyPrice.String()),
	}
	e.sendSecondary(ctx, own.UserID, evt.Message)
}

func oppositeSide(s domain.Side) domain.Side {
	if s == domain.Bid {
		return domain.Offer
	}
	return domain.Bid
}
