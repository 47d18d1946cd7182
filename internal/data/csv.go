package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SampleCSV is the accepted file format offered for download.
const SampleCSV = `timestamp,txn_amount_btc,exchange_rate_usd
2021-01-04 09:30:00,0.25,"$31,971.91"
2021-02-08 14:00:00,0.10,"$43,185.86"
2021-03-15 10:15:00,-0.15,"$55,862.93"
2021-05-19 16:45:00,0.20,"$36,754.62"
2021-07-20 11:00:00,0.05,"$29,791.25"
2021-11-09 08:00:00,-0.30,"$67,566.83"
`

// ReadCSV decodes delimited text. The first non-blank record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &Table{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		if t.Header == nil {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Header == nil {
		return nil, errors.New("read csv: no header row")
	}
	return t, nil
}
