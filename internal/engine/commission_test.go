package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/olyamironova/exchange-engine/internal/domain"
)

func TestCalcCommissionRoundsHalfUpToTwoDecimals(t *testing.T) {
	cases := []struct {
		amount int64
		price  string
		want   string
	}{
		{amount: 10, price: "100", want: "1.00"},
		{amount: 3, price: "33.335", want: "0.10"},
		{amount: 1, price: "0.005", want: "0.00"},
	}
	for _, c := range cases {
		price, err := decimal.NewFromString(c.price)
		assert.NoError(t, err)
		got := calcCommission(c.amount, price)
		assert.Equal(t, c.want, got.StringFixed(2))
	}
}

func TestBestOfPicksHighestBidEarliestTieBreak(t *testing.T) {
	base := time.Now()
	later := domain.Order{ID: "later", Price: decimal.NewFromInt(100), CreatedAt: base.Add(10 * time.Millisecond)}
	earlier := domain.Order{ID: "earlier", Price: decimal.NewFromInt(100), CreatedAt: base}
	lowerPrice := domain.Order{ID: "lower", Price: decimal.NewFromInt(99), CreatedAt: base.Add(-10 * time.Millisecond)}

	best := bestOf([]domain.Order{later, earlier, lowerPrice}, true)
	assert.Equal(t, "earlier", best.ID)

	bestOffer := bestOf([]domain.Order{later, earlier, lowerPrice}, false)
	assert.Equal(t, "lower", bestOffer.ID)
}

func TestClassifyMatchType(t *testing.T) {
	assert.Equal(t, domain.FullMatch, domain.ClassifyMatchType(10, 10))
	assert.Equal(t, domain.PartialFillBuyer, domain.ClassifyMatchType(5, 10))
	assert.Equal(t, domain.PartialFillSeller, domain.ClassifyMatchType(10, 5))
}
