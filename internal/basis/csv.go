package basis

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

// LedgerHeader is the column order of the exported ledger.
var LedgerHeader = []string{
	"Timestamp",
	string(model.MetricAmount),
	string(model.MetricPrice),
	string(model.MetricNetBTC),
	string(model.MetricCostBasis),
	string(model.MetricGainLoss),
}

// WriteLedgerCSV writes the ledger as delimited text. Undefined values are blank.
func WriteLedgerCSV(w io.Writer, ledger []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(LedgerHeader); err != nil {
		return err
	}
	for _, r := range ledger {
		row := []string{
			fmtTime(r.Timestamp),
			r.AmountBTC.String(),
			r.PriceUSD.String(),
			r.NetBTC.String(),
			fmtNull(r.CostBasisUSD),
			fmtNull(r.GainLossUSD),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLedgerCSVFile writes the ledger to path, truncating any existing file.
func WriteLedgerCSVFile(path string, ledger []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedgerCSV(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportFileName is the download name for a ledger exported at t.
func ExportFileName(t time.Time) string {
	return "btcBasis_transaction_history_" + strconv.FormatInt(t.Unix(), 10) + ".csv"
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
