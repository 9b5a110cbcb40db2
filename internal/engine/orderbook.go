package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

const orderBookDepth = 10

// OrderBookLevel is one price level of the view returned by GetOrderBook.
type OrderBookLevel struct {
	Price     decimal.Decimal
	Remaining int64
	OrderID   string
}

// OrderBookView is the top-10 bids and offers plus totals. Reads do not use
// the snapshot cache and hit the store directly, since a book view is
// expected to reflect the latest resting orders.
type OrderBookView struct {
	Asset       string
	Bids        []OrderBookLevel
	Offers      []OrderBookLevel
	TotalBids   int64
	TotalOffers int64
	Timestamp   time.Time
}

// GetOrderBook is the administrative surface's read path over one asset's
// resting orders.
func (e *Engine) GetOrderBook(ctx context.Context, asset string) (OrderBookView, error) {
	orders, err := e.repo.FindActiveOrdersForAsset(ctx, asset)
	if err != nil {
		return OrderBookView{}, err
	}

	bids, offers := splitSides(orders)
	sortDescByPrice(bids)
	sortAscByPrice(offers)

	view := OrderBookView{Asset: asset, Timestamp: time.Now()}
	for _, o := range bids {
		view.TotalBids += o.Remaining
	}
	for _, o := range offers {
		view.TotalOffers += o.Remaining
	}
	view.Bids = toLevels(bids, orderBookDepth)
	view.Offers = toLevels(offers, orderBookDepth)
	return view, nil
}

func toLevels(orders []domain.Order, depth int) []OrderBookLevel {
	if len(orders) > depth {
		orders = orders[:depth]
	}
	levels := make([]OrderBookLevel, len(orders))
	for i, o := range orders {
		levels[i] = OrderBookLevel{Price: o.Price, Remaining: o.Remaining, OrderID: o.ID}
	}
	return levels
}

func sortDescByPrice(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Price.Equal(orders[j].Price) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].Price.GreaterThan(orders[j].Price)
	})
}

func sortAscByPrice(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Price.Equal(orders[j].Price) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].Price.LessThan(orders[j].Price)
	})
}
