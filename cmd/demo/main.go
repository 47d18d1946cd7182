package main

import (
	"flag"
	"fmt"
	"strings"

	"btc-basis/internal/basis"
	"btc-basis/internal/data"
	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

// Demo:
// - Load transactions (the bundled sample unless --data is given)
// - Run them through the engine with the chosen method
// - Print the position after each transaction to show how the pieces fit together
func main() {
	dataPath := flag.String("data", "", "Path to transactions (.csv or .xlsx); default: bundled sample")
	methodName := flag.String("method", "LIFO", "FIFO or LIFO")
	policyName := flag.String("policy", "strict", "strict or lenient")
	n := flag.Int("n", 12, "Number of rows to print")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV")
	flag.Parse()

	var (
		tbl *data.Table
		err error
	)
	if *dataPath == "" {
		tbl, err = data.ReadCSV(strings.NewReader(data.SampleCSV))
	} else {
		tbl, err = data.LoadFile(*dataPath)
	}
	if err != nil {
		panic(err)
	}

	method, err := model.ParseMethod(*methodName)
	if err != nil {
		panic(err)
	}
	policy, err := basis.ParsePolicy(*policyName)
	if err != nil {
		panic(err)
	}

	txs, err := data.Normalize(tbl)
	if err != nil {
		panic(err)
	}
	if len(txs) == 0 {
		panic("no transactions in input")
	}

	result, err := basis.New(policy).Run(txs, method)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Loaded %d transactions (%s to %s)\n", len(txs),
		txs[0].Timestamp.Format("2006-01-02"), txs[len(txs)-1].Timestamp.Format("2006-01-02"))
	fmt.Printf("Method=%s (%s)\n", method, method.Description())
	fmt.Printf("Policy=%s\n\n", policy)

	for i := 0; i < min(*n, len(result.Rows)); i++ {
		r := result.Rows[i]
		fmt.Printf(
			"%s  amt=%8s  price=%10s  net=%8s  basis=%12s  pnl=%12s%s\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.AmountBTC.StringFixed(4),
			r.PriceUSD.StringFixed(2),
			r.NetBTC.StringFixed(4),
			fixed(r.CostBasisUSD),
			fixed(r.GainLossUSD),
			oversoldMark(r.Oversold),
		)
	}

	if *outCSV != "" {
		if err := basis.WriteLedgerCSVFile(*outCSV, result.Rows); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	final := result.Final()
	fmt.Printf("\nDone. Net BTC=%s  Cost basis=%s  Total P&L=%s\n",
		final.NetBTC.String(), fixed(final.CostBasisUSD), fixed(final.GainLossUSD))
}

func fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

func oversoldMark(oversold bool) string {
	if oversold {
		return "  (oversold)"
	}
	return ""
}
