package engine

import "github.com/shopspring/decimal"

// commissionRate is the venue's flat take on every committed trade.
const commissionRate = "0.001"

// calcCommission is the pure function over (amount, price): round(amount *
// price * 0.001, 2 decimals, half-up).
func calcCommission(amount int64, price decimal.Decimal) decimal.Decimal {
	rate, _ := decimal.NewFromString(commissionRate)
	raw := decimal.NewFromInt(amount).Mul(price).Mul(rate)
	return raw.Round(2)
}
