package basis

import (
	"time"

	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

// Row is one row of per-transaction output: the transaction as given plus the
// open position after it was applied.
// CostBasisUSD and GainLossUSD are invalid when NetBTC is zero.
type Row struct {
	Index int `json:"index"`

	Timestamp time.Time       `json:"timestamp"`
	AmountBTC decimal.Decimal `json:"amount_btc"`
	PriceUSD  decimal.Decimal `json:"price_usd"`

	NetBTC       decimal.Decimal     `json:"net_btc"`
	CostBasisUSD decimal.NullDecimal `json:"cost_basis_usd"`
	GainLossUSD  decimal.NullDecimal `json:"gain_loss_usd"`

	// Oversold is set under the lenient policy when the sale exceeded the open position.
	Oversold bool `json:"oversold,omitempty"`
}

// CostBasis returns the weighted-average unit price of the open lots.
func (r Row) CostBasis() (decimal.Decimal, error) {
	if !r.CostBasisUSD.Valid {
		return decimal.Zero, ErrUndefinedCostBasis
	}
	return r.CostBasisUSD.Decimal, nil
}

// GainLoss returns the unrealized gain on the open position at this row's price.
func (r Row) GainLoss() (decimal.Decimal, error) {
	if !r.GainLossUSD.Valid {
		return decimal.Zero, ErrUndefinedCostBasis
	}
	return r.GainLossUSD.Decimal, nil
}

// Value returns the row's value for a chart metric.
// ok is false when the metric is undefined for this row.
func (r Row) Value(m model.Metric) (v decimal.Decimal, ok bool) {
	switch m {
	case model.MetricAmount:
		return r.AmountBTC, true
	case model.MetricPrice:
		return r.PriceUSD, true
	case model.MetricNetBTC:
		return r.NetBTC, true
	case model.MetricCostBasis:
		return r.CostBasisUSD.Decimal, r.CostBasisUSD.Valid
	case model.MetricGainLoss:
		return r.GainLossUSD.Decimal, r.GainLossUSD.Valid
	default:
		return decimal.Zero, false
	}
}

type Result struct {
	Method model.Method `json:"method"`
	Policy Policy       `json:"policy"`
	Rows   []Row        `json:"rows"`
}

// Summary is the state of the position after the last transaction.
type Summary struct {
	Transactions int `json:"transactions"`
	Purchases    int `json:"purchases"`
	Sales        int `json:"sales"`
	Oversold     int `json:"oversold"`

	BoughtBTC decimal.Decimal `json:"bought_btc"`
	SoldBTC   decimal.Decimal `json:"sold_btc"`

	NetBTC       decimal.Decimal     `json:"net_btc"`
	CostBasisUSD decimal.NullDecimal `json:"cost_basis_usd"`
	GainLossUSD  decimal.NullDecimal `json:"gain_loss_usd"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Final summarizes the result. An empty result has a zero position and an
// undefined cost basis.
func (r *Result) Final() Summary {
	s := Summary{
		BoughtBTC: decimal.Zero,
		SoldBTC:   decimal.Zero,
		NetBTC:    decimal.Zero,
	}
	if r == nil || len(r.Rows) == 0 {
		return s
	}
	for _, row := range r.Rows {
		switch {
		case row.AmountBTC.IsPositive():
			s.Purchases++
			s.BoughtBTC = s.BoughtBTC.Add(row.AmountBTC)
		case row.AmountBTC.IsNegative():
			s.Sales++
			s.SoldBTC = s.SoldBTC.Add(row.AmountBTC.Abs())
		}
		if row.Oversold {
			s.Oversold++
		}
	}
	last := r.Rows[len(r.Rows)-1]
	s.Transactions = len(r.Rows)
	s.NetBTC = last.NetBTC
	s.CostBasisUSD = last.CostBasisUSD
	s.GainLossUSD = last.GainLossUSD
	s.Start = r.Rows[0].Timestamp
	s.End = last.Timestamp
	return s
}
