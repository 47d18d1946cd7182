package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxCents keeps cent amounts inside go-money's int64.
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// usd formats a dollar amount rounded to cents, e.g. "$31,971.91".
// Amounts too large for int64 cents are printed without grouping.
func usd(d decimal.Decimal) string {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		if d.IsNegative() {
			return "-$" + d.Abs().StringFixed(2)
		}
		return "$" + d.StringFixed(2)
	}
	return money.New(cents.IntPart(), money.USD).Display()
}

// usdNull formats an optional dollar amount; undefined values print as "-".
func usdNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return usd(d.Decimal)
}

// ledgerMarkdown renders the ledger as a Markdown table in export column order.
func ledgerMarkdown(res *basis.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s cost basis\n\n", res.Method)

	b.WriteString("| " + strings.Join(basis.LedgerHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(basis.LedgerHeader)) + "\n")
	for _, r := range res.Rows {
		cells := []string{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.AmountBTC.String(),
			usd(r.PriceUSD),
			r.NetBTC.String(),
			usdNull(r.CostBasisUSD),
			usdNull(r.GainLossUSD),
		}
		if r.Oversold {
			cells[1] += " (oversold)"
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	b.WriteString("\n" + summaryLine(res.Method, res.Final()) + "\n")
	return b.String()
}

func summaryLine(method model.Method, s basis.Summary) string {
	line := fmt.Sprintf("%s: %d transactions (%d buys, %d sells), net %s BTC, cost basis %s, P&L %s",
		method, s.Transactions, s.Purchases, s.Sales, s.NetBTC.String(), usdNull(s.CostBasisUSD), usdNull(s.GainLossUSD))
	if !s.Start.IsZero() {
		line += fmt.Sprintf(", %s to %s", s.Start.Format(time.DateOnly), s.End.Format(time.DateOnly))
	}
	if s.Oversold > 0 {
		line += fmt.Sprintf(", %d oversold", s.Oversold)
	}
	return line
}
