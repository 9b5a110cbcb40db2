package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// driveNegotiation opens or advances the per-asset price-improvement
// negotiation whenever bestBid.Price < bestOffer.Price.
func (e *Engine) driveNegotiation(ctx context.Context, asset string, bestBid, bestOffer domain.Order) {
	state, exists := e.negotiations[asset]
	if !exists {
		state = &domain.NegotiationState{
			Asset:     asset,
			BestBid:   bestBid,
			BestOffer: bestOffer,
			Turn:      domain.TurnOffer,
		}
		e.negotiations[asset] = state
		e.rearmAndNotify(ctx, state)
		return
	}

	changed := false
	if state.BestBid.ID != bestBid.ID {
		state.BestBid = bestBid
		state.Turn = domain.TurnOffer
		changed = true
	}
	if state.BestOffer.ID != bestOffer.ID {
		state.BestOffer = bestOffer
		state.Turn = domain.TurnBid
		changed = true
	}
	if changed {
		e.rearmAndNotify(ctx, state)
	}
	// Neither best changed — leave the state undisturbed and let the timer
	// run.
}

func (e *Engine) rearmAndNotify(ctx context.Context, state *domain.NegotiationState) {
	state.TimeoutDeadline = time.Now().Add(e.cfg.NegotiationResponseWindow)
	e.notifyTurn(ctx, state)
	e.timers.arm("negotiation", state.Asset, e.cfg.NegotiationResponseWindow, func() {
		e.submit(func() { e.onNegotiationTimeout(ctx, state.Asset) })
	})
}

func (e *Engine) notifyTurn(ctx context.Context, state *domain.NegotiationState) {
	turnOrder := state.BestOffer
	if state.Turn == domain.TurnBid {
		turnOrder = state.BestBid
	}

	bidUser, _ := e.repo.FindUserByID(ctx, state.BestBid.UserID)
	offerUser, _ := e.repo.FindUserByID(ctx, state.BestOffer.UserID)

	evt := domain.NegotiationYourTurnEvent{
		Asset:             state.Asset,
		BestBid:           state.BestBid.Price,
		BestOffer:         state.BestOffer.Price,
		BestBidUserID:     state.BestBid.UserID,
		BestOfferUserID:   state.BestOffer.UserID,
		BestBidUsername:   bidUser.Username,
		BestOfferUsername: offerUser.Username,
		Turn:              state.Turn,
		Message:           fmt.Sprintf("%s: bid %s / offer %s. Improve your price or pass within 30s.", state.Asset, state.BestBid.Price.String(), state.BestOffer.Price.String()),
	}
	e.realtime.NotifyUser(ctx, turnOrder.UserID, domain.TopicNegotiationYourTurn, evt)
}

// HandleNegotiationResponse is the administrative surface entry point for
// negotiation replies.
func (e *Engine) HandleNegotiationResponse(ctx context.Context, asset, userID string, improved bool, newPrice *decimal.Decimal) {
	e.submit(func() {
		state, ok := e.negotiations[asset]
		if !ok {
			return
		}

		turnOrder := state.BestOffer
		if state.Turn == domain.TurnBid {
			turnOrder = state.BestBid
		}
		if turnOrder.UserID != userID {
			// Response from the wrong side is ignored.
			return
		}

		if !improved {
			e.passNegotiation(ctx, asset, state)
			return
		}

		if newPrice != nil {
			if err := e.repo.UpdateOrderPrice(ctx, turnOrder.ID, *newPrice); err != nil {
				e.log.Error("negotiation: update price failed", zap.Error(err))
				return
			}
			e.timers.cancel("negotiation", asset)
			delete(e.negotiations, asset)
			e.cache.invalidate()

			orders, err := e.repo.FindActiveOrdersForAsset(ctx, asset)
			if err != nil {
				e.log.Warn("negotiation: reload orders failed", zap.Error(err))
				return
			}
			e.decideAsset(ctx, asset, orders)
			return
		}

		// "improved" without a newPrice: toggle turn and re-notify.
		if state.Turn == domain.TurnBid {
			state.Turn = domain.TurnOffer
		} else {
			state.Turn = domain.TurnBid
		}
		e.rearmAndNotify(ctx, state)
	})
}

func (e *Engine) passNegotiation(ctx context.Context, asset string, state *domain.NegotiationState) {
	e.timers.cancel("negotiation", asset)
	delete(e.negotiations, asset)
	e.realtime.Broadcast(ctx, domain.TopicMarketUpdate, domain.MarketUpdateEvent{
		Asset:     asset,
		BestBid:   state.BestBid.Price,
		BestOffer: state.BestOffer.Price,
		Message:   fmt.Sprintf("%s: bid %s / offer %s", asset, state.BestBid.Price.String(), state.BestOffer.Price.String()),
	})
}

func (e *Engine) onNegotiationTimeout(ctx context.Context, asset string) {
	state, ok := e.negotiations[asset]
	if !ok {
		// Late fire after resolution; no-op.
		return
	}
	e.passNegotiation(ctx, asset, state)
}
