package domain

import (
	"fmt"
	"time"
)

// SmallerParty names which side of a price-matched pair holds the smaller
// remaining quantity.
type SmallerParty string

const (
	SmallerBuyer  SmallerParty = "BUYER"
	SmallerSeller SmallerParty = "SELLER"
)

// ConfirmationState is the two-step state machine that asks the smaller
// party to upsize, then the larger party to accept a partial fill.
type ConfirmationState string

const (
	AwaitingSmaller ConfirmationState = "AWAITING_SMALLER"
	AwaitingLarger  ConfirmationState = "AWAITING_LARGER"
)

// ConfirmationKey uniquely identifies a quantity-confirmation interaction by
// the triple (asset, bidOrderID, offerOrderID). At most one confirmation is
// ever open for a given key at a time.
type ConfirmationKey struct {
	Asset        string
	BidOrderID   string
	OfferOrderID string
}

// String renders the key the way it is logged and used as a map key.
func (k ConfirmationKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Asset, k.BidOrderID, k.OfferOrderID)
}

// PendingConfirmation is the in-flight negotiation over a price-matched
// pair whose quantities differ. BidOrder.Price must equal OfferOrder.Price,
// and AdditionalQty must be greater than zero.
type PendingConfirmation struct {
	Key             ConfirmationKey
	BidOrder        Order
	OfferOrder      Order
	SmallerParty    SmallerParty
	SmallerQty      int64
	LargerQty       int64
	AdditionalQty   int64
	State           ConfirmationState
	SmallerResponse *bool
	TimeoutDeadline time.Time
	CreatedAt       time.Time
}
