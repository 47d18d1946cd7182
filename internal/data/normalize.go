package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrMissingColumn is returned when a required column cannot be located.
	ErrMissingColumn = errors.New("missing column")
)

// ParseError reports the first malformed cell of a table.
// Row is the 1-based data row (the header is not counted).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Canonical input column names.
const (
	ColTimestamp = "timestamp"
	ColAmount    = "txn_amount_btc"
	ColPrice     = "exchange_rate_usd"
)

// Header aliases, compared after lower-casing and trimming.
var columnAliases = map[string][]string{
	ColTimestamp: {ColTimestamp, "time", "date", "datetime"},
	ColAmount:    {ColAmount, "amount_btc", "amount", "btc", strings.ToLower(string(model.MetricAmount))},
	ColPrice:     {ColPrice, "price_usd", "price", "exchange_rate", "rate_usd", strings.ToLower(string(model.MetricPrice))},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"01-02-06 15:04",
	"1/2/06 15:04",
	// Excel's built-in short date (numFmt 14) as excelize renders it.
	"01-02-06",
	"1-2-06",
	"1/2/06",
}

// Normalize coerces a raw table into transactions sorted by timestamp.
// Rows with equal timestamps keep their input order. Any malformed row fails
// the whole table.
func Normalize(t *Table) ([]model.Transaction, error) {
	if t == nil {
		return nil, errors.New("normalize: nil table")
	}
	idx, err := locateColumns(t.Header)
	if err != nil {
		return nil, err
	}

	txs := make([]model.Transaction, 0, len(t.Rows))
	for i, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		tx, err := normalizeRow(i+1, row, idx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
	return txs, nil
}

type columnIndex struct {
	timestamp, amount, price int
}

func locateColumns(header []string) (columnIndex, error) {
	find := func(col string) (int, error) {
		for _, alias := range columnAliases[col] {
			for i, h := range header {
				if strings.ToLower(strings.TrimSpace(h)) == alias {
					return i, nil
				}
			}
		}
		return -1, fmt.Errorf("%w: %s (header: %s)", ErrMissingColumn, col, strings.Join(header, ", "))
	}

	var idx columnIndex
	var err error
	if idx.timestamp, err = find(ColTimestamp); err != nil {
		return idx, err
	}
	if idx.amount, err = find(ColAmount); err != nil {
		return idx, err
	}
	if idx.price, err = find(ColPrice); err != nil {
		return idx, err
	}
	return idx, nil
}

func normalizeRow(n int, row []string, idx columnIndex) (model.Transaction, error) {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	ts, err := ParseTimestamp(cell(idx.timestamp))
	if err != nil {
		return model.Transaction{}, &ParseError{Row: n, Column: ColTimestamp, Value: cell(idx.timestamp), Err: err}
	}
	amount, err := ParseAmount(cell(idx.amount))
	if err != nil {
		return model.Transaction{}, &ParseError{Row: n, Column: ColAmount, Value: cell(idx.amount), Err: err}
	}
	price, err := ParsePrice(cell(idx.price))
	if err != nil {
		return model.Transaction{}, &ParseError{Row: n, Column: ColPrice, Value: cell(idx.price), Err: err}
	}
	return model.Transaction{Timestamp: ts, AmountBTC: amount, PriceUSD: price}, nil
}

// ParseTimestamp tries each known layout in turn. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp layout")
}

// ParseAmount parses a signed BTC amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}

// ParsePrice strips currency symbols, thousands separators and whitespace
// before parsing. Negative prices are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	if clean == "" {
		return decimal.Zero, errors.New("empty price")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative price")
	}
	return d, nil
}
