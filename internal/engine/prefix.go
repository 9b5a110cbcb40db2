package engine

import "github.com/olyamironova/exchange-engine/internal/domain"

// ResolvePrefix resolves an 8-character order-id prefix carried by a
// secondary-channel reply to the confirmationKey it belongs to, by scanning
// pending confirmations and matching either side's id prefix.
func (e *Engine) ResolvePrefix(prefix string) (string, bool) {
	var found string
	e.submit(func() {
		for ks, pc := range e.pending {
			if pc.BidOrder.IDPrefix() == prefix || pc.OfferOrder.IDPrefix() == prefix {
				found = ks
				return
			}
		}
	})
	return found, found != ""
}

// PendingForUser lists every confirmation currently soliciting a response
// from the given user.
func (e *Engine) PendingForUser(userID string) []domain.PendingConfirmation {
	var out []domain.PendingConfirmation
	e.submit(func() {
		for _, pc := range e.pending {
			if pc.State == domain.AwaitingSmaller {
				askedSide := pc.BidOrder
				if pc.SmallerParty == domain.SmallerSeller {
					askedSide = pc.OfferOrder
				}
				if askedSide.UserID == userID {
					out = append(out, *pc)
				}
			} else {
				askedSide := pc.OfferOrder
				if pc.SmallerParty == domain.SmallerSeller {
					askedSide = pc.BidOrder
				}
				if askedSide.UserID == userID {
					out = append(out, *pc)
				}
			}
		}
	})
	return out
}
