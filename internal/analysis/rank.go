package analysis

import (
	"sort"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"
)

// MethodOutcome is the final position of one method over the same input.
type MethodOutcome struct {
	Method  model.Method
	Summary basis.Summary
}

// RankMethods orders results by final unrealized gain, highest first.
// A result with an undefined gain (closed position) ranks last; ties keep
// the input order.
func RankMethods(results []*basis.Result) []MethodOutcome {
	out := make([]MethodOutcome, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, MethodOutcome{Method: r.Method, Summary: r.Final()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		gi, gj := out[i].Summary.GainLossUSD, out[j].Summary.GainLossUSD
		if gi.Valid != gj.Valid {
			return gi.Valid
		}
		return gi.Decimal.GreaterThan(gj.Decimal)
	})
	return out
}
