package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	Bid   Side = "BID"
	Offer Side = "OFFER"
)

// OrderStatus is the lifecycle state of an Order.
type OrderStatus string

const (
	StatusActive    OrderStatus = "ACTIVE"
	StatusMatched   OrderStatus = "MATCHED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusExpired   OrderStatus = "EXPIRED"
)

// Order is a single resting buy or sell interest in an asset.
//
// Invariant: 0 <= Remaining <= OriginalAmount, and
// (Remaining == 0) <=> Matched <=> (Status == StatusMatched).
type Order struct {
	ID              string
	Side            Side
	Asset           string
	Price           decimal.Decimal
	OriginalAmount  int64
	Remaining       int64
	Matched         bool
	Status          OrderStatus
	UserID          string
	CounterpartyID  string
	CreatedAt       time.Time
}

// IDPrefix returns the 8-character prefix used to identify an order over
// the secondary channel.
func (o Order) IDPrefix() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[:8]
}
