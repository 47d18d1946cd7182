package basis

import (
	"fmt"

	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

// Engine matches sales against open purchase lots.
// It holds no state between runs; each Run owns a fresh queue.
type Engine struct {
	Policy Policy
}

func New(policy Policy) *Engine { return &Engine{Policy: policy} }

// Run computes the position after every transaction.
// txs must already be sorted by timestamp; the result has one row per transaction.
func (e *Engine) Run(txs []model.Transaction, method model.Method) (*Result, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMethod, method)
	}
	policy := e.Policy
	if policy == "" {
		policy = Strict
	}

	q := NewQueue()
	rows := make([]Row, 0, len(txs))

	for idx, tx := range txs {
		if idx > 0 && tx.Timestamp.Before(txs[idx-1].Timestamp) {
			return nil, fmt.Errorf("%w: transaction %d precedes transaction %d", ErrUnsorted, idx, idx-1)
		}

		oversold := false
		switch {
		case tx.IsPurchase():
			q.PushBack(model.Lot{
				Timestamp:    tx.Timestamp,
				RemainingBTC: tx.AmountBTC,
				UnitPriceUSD: tx.PriceUSD,
			})
		case tx.IsSale():
			requested := tx.AmountBTC.Abs()
			short := consume(q, requested, method)
			if short.IsPositive() {
				if policy == Strict {
					return nil, &InsufficientLotsError{
						Index:     idx,
						Timestamp: tx.Timestamp,
						Requested: requested,
						Short:     short,
					}
				}
				oversold = true
			}
		}
		// A zero amount changes nothing, but still gets a row.

		rows = append(rows, snapshot(idx, tx, q, oversold))
	}

	return &Result{Method: method, Policy: policy, Rows: rows}, nil
}

// consume removes amount BTC from the queue and returns what could not be
// matched because the queue ran dry.
// A partially consumed lot goes back to the front of the queue, keeping its
// original timestamp and unit price, whichever end it was taken from.
func consume(q *Queue, amount decimal.Decimal, method model.Method) decimal.Decimal {
	remainder := amount
	for remainder.IsPositive() {
		var (
			lot model.Lot
			ok  bool
		)
		if method == model.LIFO {
			lot, ok = q.PopBack()
		} else {
			lot, ok = q.PopFront()
		}
		if !ok {
			return remainder
		}

		if lot.RemainingBTC.LessThanOrEqual(remainder) {
			remainder = remainder.Sub(lot.RemainingBTC)
			continue
		}
		lot.RemainingBTC = lot.RemainingBTC.Sub(remainder)
		remainder = decimal.Zero
		q.PushFront(lot)
	}
	return decimal.Zero
}

func snapshot(idx int, tx model.Transaction, q *Queue, oversold bool) Row {
	row := Row{
		Index:     idx,
		Timestamp: tx.Timestamp,
		AmountBTC: tx.AmountBTC,
		PriceUSD:  tx.PriceUSD,
		NetBTC:    q.Position(),
		Oversold:  oversold,
	}
	if row.NetBTC.IsZero() {
		return row
	}
	costBasis := q.Cost().Div(row.NetBTC)
	row.CostBasisUSD = decimal.NewNullDecimal(costBasis)
	row.GainLossUSD = decimal.NewNullDecimal(tx.PriceUSD.Sub(costBasis).Mul(row.NetBTC))
	return row
}
