// Package dto carries the administrative HTTP surface's request and
// response bodies.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderBookLevel struct {
	Price     decimal.Decimal `json:"price"`
	Remaining int64           `json:"remaining"`
	OrderID   string          `json:"order_id"`
}

type GetOrderBookResponse struct {
	Asset       string           `json:"asset"`
	Bids        []OrderBookLevel `json:"bids"`
	Offers      []OrderBookLevel `json:"offers"`
	TotalBids   int64            `json:"total_bids"`
	TotalOffers int64            `json:"total_offers"`
	Timestamp   time.Time        `json:"timestamp"`
}

type ProcessAssetRequest struct {
	Asset string `json:"asset" binding:"required"`
}

type MarkActiveOrdersResponse struct {
	Marked bool `json:"marked"`
}

type QuantityConfirmationResponseRequest struct {
	ConfirmationKey string `json:"confirmation_key" binding:"required"`
	Accepted        bool   `json:"accepted"`
	NewQuantity     *int64 `json:"new_quantity,omitempty"`
}

type NegotiationResponseRequest struct {
	Asset     string           `json:"asset" binding:"required"`
	UserID    string           `json:"user_id" binding:"required"`
	Improved  bool             `json:"improved"`
	NewPrice  *decimal.Decimal `json:"new_price,omitempty"`
}

type SecondaryReplyRequest struct {
	Prefix string `json:"prefix" binding:"required"`
	Reply  string `json:"reply" binding:"required"` // "YES" or "NO"
}

type SecondaryReplyResponse struct {
	ConfirmationKey string `json:"confirmation_key"`
	Resolved        bool   `json:"resolved"`
}

type PendingConfirmation struct {
	ConfirmationKey string          `json:"confirmation_key"`
	Asset           string          `json:"asset"`
	BidOrderID      string          `json:"bid_order_id"`
	OfferOrderID    string          `json:"offer_order_id"`
	State           string          `json:"state"`
	SmallerQty      int64           `json:"smaller_qty"`
	LargerQty       int64           `json:"larger_qty"`
	AdditionalQty   int64           `json:"additional_qty"`
	Price           decimal.Decimal `json:"price"`
	TimeoutDeadline time.Time       `json:"timeout_deadline"`
}

type PendingForUserResponse struct {
	Pending []PendingConfirmation `json:"pending"`
}
