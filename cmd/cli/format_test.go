package main

import (
	"strings"
	"testing"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

func TestUSD(t *testing.T) {
	cases := map[string]string{
		"31971.91":  "$31,971.91",
		"100":       "$100.00",
		"0.004":     "$0.00",
		"133.33333": "$133.33",
		"1234567.8": "$1,234,567.80",
	}
	for in, want := range cases {
		if got := usd(decimal.RequireFromString(in)); got != want {
			t.Errorf("usd(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestUSDBeyondInt64Cents(t *testing.T) {
	huge := decimal.RequireFromString("100000000000000000000")
	if got, want := usd(huge), "$100000000000000000000.00"; got != want {
		t.Errorf("usd(1e20) = %q, want %q", got, want)
	}
	if got, want := usd(huge.Neg()), "-$100000000000000000000.00"; got != want {
		t.Errorf("usd(-1e20) = %q, want %q", got, want)
	}
}

func TestUSDNull(t *testing.T) {
	if got := usdNull(decimal.NullDecimal{}); got != "-" {
		t.Errorf("usdNull(invalid) = %q, want %q", got, "-")
	}
	got := usdNull(decimal.NewNullDecimal(decimal.NewFromInt(150)))
	if got != "$150.00" {
		t.Errorf("usdNull(150) = %q, want %q", got, "$150.00")
	}
}

func TestLedgerMarkdown(t *testing.T) {
	t0 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		{Timestamp: t0, AmountBTC: decimal.NewFromInt(1), PriceUSD: decimal.NewFromInt(100)},
		{Timestamp: t0.AddDate(0, 0, 1), AmountBTC: decimal.NewFromInt(-1), PriceUSD: decimal.NewFromInt(150)},
	}
	res, err := basis.New(basis.Strict).Run(txs, model.FIFO)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	md := ledgerMarkdown(res)
	lines := strings.Split(md, "\n")
	if lines[0] != "# FIFO cost basis" {
		t.Errorf("title = %q", lines[0])
	}
	wantHeader := "| Timestamp | BTC Purchased/Sold | BTC Price ($) | Net BTC | Cost Basis ($) | Total P&L ($) |"
	if lines[2] != wantHeader {
		t.Errorf("header = %q, want %q", lines[2], wantHeader)
	}
	if want := "| 2021-01-01 00:00 | 1 | $100.00 | 1 | $100.00 | $0.00 |"; lines[4] != want {
		t.Errorf("row 1 = %q, want %q", lines[4], want)
	}
	if want := "| 2021-01-02 00:00 | -1 | $150.00 | 0 | - | - |"; lines[5] != want {
		t.Errorf("row 2 = %q, want %q", lines[5], want)
	}
	if !strings.Contains(md, "2 transactions (1 buys, 1 sells)") {
		t.Errorf("summary missing from markdown:\n%s", md)
	}
}

func TestSummaryLineOversold(t *testing.T) {
	s := basis.Summary{Transactions: 1, Sales: 1, Oversold: 1}
	got := summaryLine(model.LIFO, s)
	if !strings.HasPrefix(got, "LIFO: 1 transactions") || !strings.HasSuffix(got, ", 1 oversold") {
		t.Errorf("summaryLine = %q", got)
	}
	if strings.Contains(got, " to ") {
		t.Errorf("summaryLine should omit the window for an empty run: %q", got)
	}
}
