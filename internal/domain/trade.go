package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType classifies a commit by which side, if any, was only partially filled.
type MatchType string

const (
	FullMatch           MatchType = "FULL_MATCH"
	PartialFillBuyer    MatchType = "PARTIAL_FILL_BUYER"
	PartialFillSeller   MatchType = "PARTIAL_FILL_SELLER"
)

// Trade is the immutable record of a single committed match.
type Trade struct {
	ID             string
	Asset          string
	Price          decimal.Decimal
	Amount         int64
	BuyerOrderID   string
	SellerOrderID  string
	BuyerID        string
	SellerID       string
	Commission     decimal.Decimal
	CreatedAt      time.Time
}

// ClassifyMatchType derives the MatchType from the two orders' original
// sizes: FULL_MATCH when both sides rest exactly, otherwise the side whose
// original amount was smaller names the partial fill.
func ClassifyMatchType(bidOriginal, offerOriginal int64) MatchType {
	switch {
	case bidOriginal < offerOriginal:
		return PartialFillBuyer
	case bidOriginal > offerOriginal:
		return PartialFillSeller
	default:
		return FullMatch
	}
}
