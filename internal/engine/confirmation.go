package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

// openOrSkipConfirmation handles the case where bid and offer price match
// but quantities differ. A previously declined pair is never retried; an
// already-open pair is never duplicated.
func (e *Engine) openOrSkipConfirmation(ctx context.Context, asset string, bid, offer domain.Order) {
	key := domain.ConfirmationKey{Asset: asset, BidOrderID: bid.ID, OfferOrderID: offer.ID}
	ks := key.String()

	if _, declined := e.declined[ks]; declined {
		return
	}
	if _, exists := e.pending[ks]; exists {
		return
	}

	smallerParty, smallerQty, largerQty := classifySizes(bid, offer)
	pc := &domain.PendingConfirmation{
		Key:             key,
		BidOrder:        bid,
		OfferOrder:      offer,
		SmallerParty:    smallerParty,
		SmallerQty:      smallerQty,
		LargerQty:       largerQty,
		AdditionalQty:   largerQty - smallerQty,
		State:           domain.AwaitingSmaller,
		TimeoutDeadline: time.Now().Add(e.cfg.ConfirmationResponseWindow),
		CreatedAt:       time.Now(),
	}
	e.pending[ks] = pc
	e.notifySmallerParty(ctx, pc)
	e.armConfirmationTimer(ctx, ks)
}

// classifySizes identifies the smaller and larger party of a price-matched
// pair.
func classifySizes(bid, offer domain.Order) (party domain.SmallerParty, smaller, larger int64) {
	if bid.Remaining < offer.Remaining {
		return domain.SmallerBuyer, bid.Remaining, offer.Remaining
	}
	return domain.SmallerSeller, offer.Remaining, bid.Remaining
}

func (e *Engine) armConfirmationTimer(ctx context.Context, ks string) {
	e.timers.arm("confirmation", ks, e.cfg.ConfirmationResponseWindow, func() {
		e.submit(func() { e.onConfirmationTimeout(ctx, ks) })
	})
}

func (e *Engine) notifySmallerParty(ctx context.Context, pc *domain.PendingConfirmation) {
	userID, order, counterparty := pc.BidOrder.UserID, pc.BidOrder, pc.OfferOrder
	if pc.SmallerParty == domain.SmallerSeller {
		userID, order, counterparty = pc.OfferOrder.UserID, pc.OfferOrder, pc.BidOrder
	}

	evt := domain.QuantityConfirmationRequestEvent{
		ConfirmationKey:      pc.Key.String(),
		Asset:                pc.Key.Asset,
		YourOrderID:          order.ID,
		CounterpartyOrderID:  counterparty.ID,
		YourQuantity:         pc.SmallerQty,
		CounterpartyQuantity: pc.LargerQty,
		AdditionalQuantity:   pc.AdditionalQty,
		Price:                pc.BidOrder.Price,
		Side:                 order.Side,
		Message:              fmt.Sprintf("Counterparty wants %d more lots of %s at %s. Reply within 60s.", pc.AdditionalQty, pc.Key.Asset, pc.BidOrder.Price.String()),
	}
	e.realtime.NotifyUser(ctx, userID, domain.TopicQuantityConfirmationRequest, evt)
	e.sendSecondary(ctx, userID, fmt.Sprintf("%s YES %s to accept %d more lots of %s at %s, or NO %s to decline.",
		evt.Message, order.IDPrefix(), pc.AdditionalQty, pc.Key.Asset, pc.BidOrder.Price.String(), order.IDPrefix()))
}

func (e *Engine) notifyLargerParty(ctx context.Context, pc *domain.PendingConfirmation) {
	userID, order := pc.OfferOrder.UserID, pc.OfferOrder
	if pc.SmallerParty == domain.SmallerSeller {
		userID, order = pc.BidOrder.UserID, pc.BidOrder
	}

	evt := domain.QuantityPartialFillApprovalEvent{
		ConfirmationKey:     pc.Key.String(),
		Asset:               pc.Key.Asset,
		YourOrderID:         order.ID,
		CounterpartyOrderID: otherOrder(pc, order.ID).ID,
		YourQuantity:        pc.LargerQty,
		PartialFillQuantity: pc.SmallerQty,
		Price:               pc.BidOrder.Price,
		Side:                order.Side,
		Message:             fmt.Sprintf("Counterparty declined to upsize. Accept a partial fill of %d lots of %s at %s?", pc.SmallerQty, pc.Key.Asset, pc.BidOrder.Price.String()),
	}
	e.realtime.NotifyUser(ctx, userID, domain.TopicQuantityPartialFillApproval, evt)
	e.sendSecondary(ctx, userID, fmt.Sprintf("%s Reply YES %s or NO %s.", evt.Message, order.IDPrefix(), order.IDPrefix()))
}

func otherOrder(pc *domain.PendingConfirmation, orderID string) domain.Order {
	if pc.BidOrder.ID == orderID {
		return pc.OfferOrder
	}
	return pc.BidOrder
}

// sendSecondary dispatches the out-of-band reply on its own goroutine: it
// runs off the engine's serialization goroutine so a slow or hanging send
// can never stall a tick, a timer fire, or an administrative call.
func (e *Engine) sendSecondary(ctx context.Context, userID string, message string) {
	go func() {
		user, err := e.repo.FindUserByID(ctx, userID)
		if err != nil || user.SecondaryAddress == "" {
			// Absent contact info is logged and the realtime path proceeds
			// independently.
			if err != nil {
				e.log.Debug("sendSecondary: user lookup failed", zap.String("userId", userID), zap.Error(err))
			}
			return
		}
		if err := e.secondary.Send(ctx, user, message); err != nil {
			e.log.Warn("sendSecondary: send failed", zap.String("userId", userID), zap.Error(err))
		}
	}()
}

// HandleQuantityConfirmationResponse is the administrative surface entry
// point for both confirmation stages.
func (e *Engine) HandleQuantityConfirmationResponse(ctx context.Context, confirmationKey string, accepted bool, newQuantity *int64) {
	e.submit(func() {
		pc, ok := e.pending[confirmationKey]
		if !ok {
			// Late or unknown confirmationKey in a response is ignored.
			return
		}
		switch pc.State {
		case domain.AwaitingSmaller:
			e.resolveSmaller(ctx, confirmationKey, pc, accepted, newQuantity)
		case domain.AwaitingLarger:
			e.resolveLarger(ctx, confirmationKey, pc, accepted)
		}
	})
}

func (e *Engine) resolveSmaller(ctx context.Context, ks string, pc *domain.PendingConfirmation, accepted bool, newQuantity *int64) {
	e.timers.cancel("confirmation", ks)

	if accepted {
		smallerOrder := pc.BidOrder
		if pc.SmallerParty == domain.SmallerSeller {
			smallerOrder = pc.OfferOrder
		}
		newQty := pc.LargerQty
		if newQuantity != nil {
			newQty = *newQuantity
		}
		if err := e.repo.UpdateOrderAmount(ctx, smallerOrder.ID, newQty); err != nil {
			e.log.Error("resolveSmaller: update amount failed", zap.String("orderId", smallerOrder.ID), zap.Error(err))
			delete(e.pending, ks)
			return
		}

		refreshedBid, errB := e.repo.FindOrderByID(ctx, pc.BidOrder.ID)
		refreshedOffer, errO := e.repo.FindOrderByID(ctx, pc.OfferOrder.ID)
		delete(e.pending, ks)
		if errB != nil || errO != nil {
			e.log.Error("resolveSmaller: reload orders failed", zap.Error(errB), zap.Error(errO))
			return
		}
		// The commit must use the refreshed snapshots, not the stale ones.
		e.commit(ctx, refreshedBid, refreshedOffer)
		return
	}

	// Smaller declines: move to AWAITING_LARGER and ask the larger party to
	// accept a partial fill.
	pc.State = domain.AwaitingLarger
	pc.TimeoutDeadline = time.Now().Add(e.cfg.ConfirmationResponseWindow)
	e.notifyLargerParty(ctx, pc)
	e.armConfirmationTimer(ctx, ks)
}

func (e *Engine) resolveLarger(ctx context.Context, ks string, pc *domain.PendingConfirmation, accepted bool) {
	e.timers.cancel("confirmation", ks)
	delete(e.pending, ks)

	if !accepted {
		e.declined[ks] = struct{}{}
		return
	}

	refreshedBid, errB := e.repo.FindOrderByID(ctx, pc.BidOrder.ID)
	refreshedOffer, errO := e.repo.FindOrderByID(ctx, pc.OfferOrder.ID)
	if errB != nil || errO != nil {
		e.log.Error("resolveLarger: reload orders failed", zap.Error(errB), zap.Error(errO))
		return
	}
	e.commit(ctx, refreshedBid, refreshedOffer)
}

// onConfirmationTimeout fires after either stage's deadline. A timeout is
// equivalent to a decline at whichever stage is currently pending.
func (e *Engine) onConfirmationTimeout(ctx context.Context, ks string) {
	pc, ok := e.pending[ks]
	if !ok {
		// Late fire after resolution; no-op.
		return
	}
	switch pc.State {
	case domain.AwaitingSmaller:
		e.resolveSmaller(ctx, ks, pc, false, nil)
	case domain.AwaitingLarger:
		e.resolveLarger(ctx, ks, pc, false)
	}
}
