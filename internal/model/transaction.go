package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized input row.
// Positive AmountBTC is a purchase, negative is a sale (magnitude = BTC sold).
// PriceUSD is the BTC/USD exchange rate at Timestamp and is never negative.
type Transaction struct {
	Timestamp time.Time       `json:"timestamp"`
	AmountBTC decimal.Decimal `json:"amount_btc"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
}

func (t Transaction) IsPurchase() bool { return t.AmountBTC.IsPositive() }
func (t Transaction) IsSale() bool     { return t.AmountBTC.IsNegative() }

// Lot is an unconsumed (or partially consumed) purchase.
type Lot struct {
	Timestamp    time.Time       `json:"timestamp"`
	RemainingBTC decimal.Decimal `json:"remaining_btc"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
}

// Cost is the acquisition cost of what is left in the lot.
func (l Lot) Cost() decimal.Decimal {
	return l.RemainingBTC.Mul(l.UnitPriceUSD)
}
