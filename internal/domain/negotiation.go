package domain

import "time"

// Turn identifies which side of a NegotiationState is currently being
// asked to improve its price.
type Turn string

const (
	TurnBid   Turn = "BID"
	TurnOffer Turn = "OFFER"
)

// NegotiationState is the per-asset price-improvement negotiation opened
// whenever the best bid trades below the best offer. At most one exists
// per asset, and only while bestBid.Price < bestOffer.Price.
type NegotiationState struct {
	Asset           string
	BestBid         Order
	BestOffer       Order
	Turn            Turn
	TimeoutDeadline time.Time
}
