package domain

import "github.com/shopspring/decimal"

// Realtime event and topic names. Payloads are named structs, not
// dictionaries, so adding a field never breaks existing consumers silently.
const (
	TopicNegotiationYourTurn          = "negotiation:your_turn"
	TopicQuantityConfirmationRequest  = "quantity:confirmation_request"
	TopicQuantityPartialFillApproval  = "quantity:partial_fill_approval"
	TopicTradeExecuted                = "trade:executed"
	TopicOrderMatched                 = "order:matched"
	TopicMarketUpdate                 = "market:update"
)

type NegotiationYourTurnEvent struct {
	Asset              string          `json:"asset"`
	BestBid            decimal.Decimal `json:"bestBid"`
	BestOffer          decimal.Decimal `json:"bestOffer"`
	BestBidUserID      string          `json:"bestBidUserId"`
	BestOfferUserID    string          `json:"bestOfferUserId"`
	BestBidUsername    string          `json:"bestBidUsername"`
	BestOfferUsername  string          `json:"bestOfferUsername"`
	Turn               Turn            `json:"turn"`
	Message            string          `json:"message"`
}

type QuantityConfirmationRequestEvent struct {
	ConfirmationKey     string          `json:"confirmationKey"`
	Asset               string          `json:"asset"`
	YourOrderID         string          `json:"yourOrderId"`
	CounterpartyOrderID string          `json:"counterpartyOrderId"`
	YourQuantity        int64           `json:"yourQuantity"`
	CounterpartyQuantity int64          `json:"counterpartyQuantity"`
	AdditionalQuantity  int64           `json:"additionalQuantity"`
	Price               decimal.Decimal `json:"price"`
	Side                Side            `json:"side"`
	Message             string          `json:"message"`
}

type QuantityPartialFillApprovalEvent struct {
	ConfirmationKey      string          `json:"confirmationKey"`
	Asset                string          `json:"asset"`
	YourOrderID          string          `json:"yourOrderId"`
	CounterpartyOrderID  string          `json:"counterpartyOrderId"`
	YourQuantity         int64           `json:"yourQuantity"`
	PartialFillQuantity  int64           `json:"partialFillQuantity"`
	Price                decimal.Decimal `json:"price"`
	Side                 Side            `json:"side"`
	Message              string          `json:"message"`
}

type TradeExecutedEvent struct {
	OrderID          string          `json:"orderId"`
	TradeID          string          `json:"tradeId"`
	Asset            string          `json:"asset"`
	Price            decimal.Decimal `json:"price"`
	Amount           int64           `json:"amount"`
	BuyerID          string          `json:"buyerId"`
	SellerID         string          `json:"sellerId"`
	Timestamp        int64           `json:"timestamp"`
	BidFullyMatched  bool            `json:"bidFullyMatched"`
	OfferFullyMatched bool           `json:"offerFullyMatched"`
	BidOrderID       string          `json:"bidOrderId"`
	OfferOrderID     string          `json:"offerOrderId"`
	MatchType        MatchType       `json:"matchType"`
	PartialFill      bool            `json:"partialFill"`
	Side             Side            `json:"side"`
	IsFullyFilled    bool            `json:"isFullyFilled"`
	IsPartialFill    bool            `json:"isPartialFill"`
	RemainingAmount  int64           `json:"remainingAmount"`
	OriginalAmount   int64           `json:"originalAmount"`
}

// OrderMatchedEvent is the legacy full-match notification: only the per-order
// fields of TradeExecutedEvent (order, trade, asset, price, amount, side),
// without the partial-fill fields or the trade-wide buyer/seller, timestamp
// and match-type fields, kept for compatibility with clients that only
// understand full fills.
type OrderMatchedEvent struct {
	OrderID   string          `json:"orderId"`
	TradeID   string          `json:"tradeId"`
	Asset     string          `json:"asset"`
	Price     decimal.Decimal `json:"price"`
	Amount    int64           `json:"amount"`
	Side      Side            `json:"side"`
}

type MarketUpdateEvent struct {
	Asset     string          `json:"asset"`
	BestBid   decimal.Decimal `json:"bestBid"`
	BestOffer decimal.Decimal `json:"bestOffer"`
	Message   string          `json:"message"`
}

type CompetitiveAdvisoryEvent struct {
	Asset             string          `json:"asset"`
	YourOrderID       string          `json:"yourOrderId"`
	YourPrice         decimal.Decimal `json:"yourPrice"`
	CounterpartyPrice decimal.Decimal `json:"counterpartyPrice"`
	Spread            decimal.Decimal `json:"spread"`
	SpreadPct         decimal.Decimal `json:"spreadPct"`
	Message           string          `json:"message"`
}
