// Package inmemory provides process-local test doubles for the engine's
// external collaborators.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// Repository is an in-memory Repository, used by the engine's own test
// suite and usable as a reference implementation for a real store.
type Repository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	trades map[string]*domain.Trade
	users  map[string]*domain.User
}

var _ port.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		orders: make(map[string]*domain.Order),
		trades: make(map[string]*domain.Trade),
		users:  make(map[string]*domain.User),
	}
}

// PutOrder seeds or replaces an order, for test setup.
func (r *Repository) PutOrder(o domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := o
	r.orders[o.ID] = &cp
}

// PutUser seeds a user, for test setup.
func (r *Repository) PutUser(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := u
	r.users[u.ID] = &cp
}

func (r *Repository) FindActiveOrders(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == domain.StatusActive && o.Remaining > 0 {
			out = append(out, *o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *Repository) FindActiveOrdersForAsset(ctx context.Context, asset string) ([]domain.Order, error) {
	all, _ := r.FindActiveOrders(ctx)
	var out []domain.Order
	for _, o := range all {
		if o.Asset == asset {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *Repository) FindOrderByID(ctx context.Context, id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, errors.New("order not found")
	}
	return *o, nil
}

func (r *Repository) FindUserByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, errors.New("user not found")
	}
	return *u, nil
}

func (r *Repository) UpdateOrderPrice(ctx context.Context, id string, newPrice decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	o.Price = newPrice
	return nil
}

func (r *Repository) UpdateOrderAmount(ctx context.Context, id string, newAmount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	o.OriginalAmount = newAmount
	o.Remaining = newAmount
	return nil
}

func (r *Repository) CommitTrade(ctx context.Context, bid, offer domain.Order, amount int64, price, commission decimal.Decimal) (domain.Trade, domain.Order, domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bidOrder, ok := r.orders[bid.ID]
	if !ok {
		return domain.Trade{}, domain.Order{}, domain.Order{}, errors.New("bid order not found")
	}
	offerOrder, ok := r.orders[offer.ID]
	if !ok {
		return domain.Trade{}, domain.Order{}, domain.Order{}, errors.New("offer order not found")
	}
	if bidOrder.Remaining < amount || offerOrder.Remaining < amount {
		return domain.Trade{}, domain.Order{}, domain.Order{}, errors.New("insufficient remaining quantity")
	}

	trade := &domain.Trade{
		ID:            uuid.NewString(),
		Asset:         bidOrder.Asset,
		Price:         price,
		Amount:        amount,
		BuyerOrderID:  bidOrder.ID,
		SellerOrderID: offerOrder.ID,
		BuyerID:       bidOrder.UserID,
		SellerID:      offerOrder.UserID,
		Commission:    commission,
		CreatedAt:     time.Now(),
	}
	r.trades[trade.ID] = trade

	bidOrder.Remaining -= amount
	if bidOrder.Remaining == 0 {
		bidOrder.Matched = true
		bidOrder.Status = domain.StatusMatched
		bidOrder.CounterpartyID = offerOrder.UserID
	}
	offerOrder.Remaining -= amount
	if offerOrder.Remaining == 0 {
		offerOrder.Matched = true
		offerOrder.Status = domain.StatusMatched
		offerOrder.CounterpartyID = bidOrder.UserID
	}

	return *trade, *bidOrder, *offerOrder, nil
}

func sortOrders(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Asset != orders[j].Asset {
			return orders[i].Asset < orders[j].Asset
		}
		if !orders[i].Price.Equal(orders[j].Price) {
			return orders[i].Price.GreaterThan(orders[j].Price)
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
