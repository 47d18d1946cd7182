package basis

import (
	"errors"
	"testing"
	"time"

	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var t0 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func tx(day int, amount, price string) model.Transaction {
	return model.Transaction{
		Timestamp: t0.AddDate(0, 0, day),
		AmountBTC: d(amount),
		PriceUSD:  d(price),
	}
}

func scenario() []model.Transaction {
	return []model.Transaction{
		tx(1, "1.0", "100"),
		tx(2, "1.0", "200"),
		tx(3, "-1.5", "300"),
	}
}

func mustRun(t *testing.T, e *Engine, txs []model.Transaction, m model.Method) *Result {
	t.Helper()
	res, err := e.Run(txs, m)
	if err != nil {
		t.Fatalf("Run(%s): unexpected error: %v", m, err)
	}
	if len(res.Rows) != len(txs) {
		t.Fatalf("Run(%s): got %d rows, want %d", m, len(res.Rows), len(txs))
	}
	return res
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestRun_FIFOScenario(t *testing.T) {
	res := mustRun(t, New(Strict), scenario(), model.FIFO)
	last := res.Rows[2]

	assertDec(t, "net", last.NetBTC, "0.5")
	basis, err := last.CostBasis()
	if err != nil {
		t.Fatalf("CostBasis: %v", err)
	}
	assertDec(t, "cost basis", basis, "200")
	gain, err := last.GainLoss()
	if err != nil {
		t.Fatalf("GainLoss: %v", err)
	}
	assertDec(t, "gain", gain, "50")
}

func TestRun_LIFOScenario(t *testing.T) {
	res := mustRun(t, New(Strict), scenario(), model.LIFO)
	last := res.Rows[2]

	assertDec(t, "net", last.NetBTC, "0.5")
	assertDec(t, "cost basis", last.CostBasisUSD.Decimal, "100")
	assertDec(t, "gain", last.GainLossUSD.Decimal, "100")
}

func TestRun_IntermediateRows(t *testing.T) {
	res := mustRun(t, New(Strict), scenario(), model.FIFO)

	first := res.Rows[0]
	assertDec(t, "row0 net", first.NetBTC, "1")
	assertDec(t, "row0 basis", first.CostBasisUSD.Decimal, "100")
	assertDec(t, "row0 gain", first.GainLossUSD.Decimal, "0")

	second := res.Rows[1]
	assertDec(t, "row1 net", second.NetBTC, "2")
	assertDec(t, "row1 basis", second.CostBasisUSD.Decimal, "150")
	// Gain uses the row's own price, not a lot price.
	assertDec(t, "row1 gain", second.GainLossUSD.Decimal, "100")

	for i, r := range res.Rows {
		if r.Index != i {
			t.Errorf("row %d has index %d", i, r.Index)
		}
	}
}

func TestRun_PreservesInputFields(t *testing.T) {
	txs := scenario()
	res := mustRun(t, New(Strict), txs, model.LIFO)
	for i, r := range res.Rows {
		if !r.Timestamp.Equal(txs[i].Timestamp) {
			t.Errorf("row %d timestamp = %v, want %v", i, r.Timestamp, txs[i].Timestamp)
		}
		if !r.AmountBTC.Equal(txs[i].AmountBTC) || !r.PriceUSD.Equal(txs[i].PriceUSD) {
			t.Errorf("row %d = (%s, %s), want (%s, %s)", i, r.AmountBTC, r.PriceUSD, txs[i].AmountBTC, txs[i].PriceUSD)
		}
	}
}

func TestRun_ConservationAndMethodIndependentPosition(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "0.25", "31971.91"),
		tx(2, "0.10", "43185.86"),
		tx(3, "-0.15", "55862.93"),
		tx(4, "0.20", "36754.62"),
		tx(5, "0.05", "29791.25"),
		tx(6, "-0.30", "67566.83"),
		tx(7, "0.4", "20000"),
		tx(8, "-0.12345678", "21000"),
	}
	fifo := mustRun(t, New(Strict), txs, model.FIFO)
	lifo := mustRun(t, New(Strict), txs, model.LIFO)

	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].AmountBTC)
		if !fifo.Rows[i].NetBTC.Equal(sum) {
			t.Errorf("FIFO row %d net = %s, want %s", i, fifo.Rows[i].NetBTC, sum)
		}
		if !lifo.Rows[i].NetBTC.Equal(fifo.Rows[i].NetBTC) {
			t.Errorf("row %d: LIFO net %s != FIFO net %s", i, lifo.Rows[i].NetBTC, fifo.Rows[i].NetBTC)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	e := New(Strict)
	a := mustRun(t, e, scenario(), model.LIFO)
	b := mustRun(t, e, scenario(), model.LIFO)
	for i := range a.Rows {
		ra, rb := a.Rows[i], b.Rows[i]
		if !ra.NetBTC.Equal(rb.NetBTC) || !ra.CostBasisUSD.Decimal.Equal(rb.CostBasisUSD.Decimal) ||
			!ra.GainLossUSD.Decimal.Equal(rb.GainLossUSD.Decimal) {
			t.Errorf("row %d differs between runs: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestRun_LIFOSellLatestPurchase(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1", "100"),
		tx(2, "3", "200"),
		tx(3, "2", "500"),
		tx(4, "-2", "450"),
	}
	res := mustRun(t, New(Strict), txs, model.LIFO)
	// Remaining lots: 1@100 and 3@200, weighted average 175.
	assertDec(t, "cost basis", res.Rows[3].CostBasisUSD.Decimal, "175")
	assertDec(t, "net", res.Rows[3].NetBTC, "4")
}

func TestRun_PartialLotReinsertedAtFront(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1", "100"),
		tx(2, "1", "200"),
		tx(3, "-0.5", "250"), // LIFO: 0.5@200 goes back to the front
		tx(4, "1", "300"),
		tx(5, "-1.5", "400"), // LIFO: takes 1@300 from the back, then 0.5 of 1@100
	}
	res := mustRun(t, New(Strict), txs, model.LIFO)

	assertDec(t, "row2 basis", res.Rows[2].CostBasisUSD.Decimal, "133.3333333333333333")
	last := res.Rows[4]
	assertDec(t, "net", last.NetBTC, "1")
	assertDec(t, "cost basis", last.CostBasisUSD.Decimal, "150")
	assertDec(t, "gain", last.GainLossUSD.Decimal, "250")
}

func TestRun_FullyClosedPositionHasUndefinedBasis(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1", "100"),
		tx(2, "-1", "150"),
	}
	for _, m := range model.Methods() {
		res := mustRun(t, New(Strict), txs, m)
		last := res.Rows[1]
		if !last.NetBTC.IsZero() {
			t.Errorf("%s: net = %s, want 0", m, last.NetBTC)
		}
		if last.CostBasisUSD.Valid || last.GainLossUSD.Valid {
			t.Errorf("%s: cost basis/gain should be undefined, got %+v", m, last)
		}
		if _, err := last.CostBasis(); !errors.Is(err, ErrUndefinedCostBasis) {
			t.Errorf("%s: CostBasis() error = %v, want ErrUndefinedCostBasis", m, err)
		}
	}
}

func TestRun_OversellStrict(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1.0", "100"),
		tx(2, "-2.0", "150"),
	}
	for _, m := range model.Methods() {
		_, err := New(Strict).Run(txs, m)
		if !errors.Is(err, ErrInsufficientLots) {
			t.Fatalf("%s: error = %v, want ErrInsufficientLots", m, err)
		}
		var ile *InsufficientLotsError
		if !errors.As(err, &ile) {
			t.Fatalf("%s: error is %T, want *InsufficientLotsError", m, err)
		}
		if ile.Index != 1 {
			t.Errorf("Index = %d, want 1", ile.Index)
		}
		assertDec(t, "requested", ile.Requested, "2")
		assertDec(t, "short", ile.Short, "1")
	}
}

func TestRun_OversellFromEmptyQueue(t *testing.T) {
	_, err := New("").Run([]model.Transaction{tx(1, "-0.1", "100")}, model.FIFO)
	if !errors.Is(err, ErrInsufficientLots) {
		t.Fatalf("error = %v, want ErrInsufficientLots", err)
	}
}

func TestRun_OversellLenient(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1.0", "100"),
		tx(2, "-2.0", "150"),
		tx(3, "0.5", "120"),
	}
	res := mustRun(t, New(Lenient), txs, model.FIFO)

	oversold := res.Rows[1]
	if !oversold.Oversold {
		t.Errorf("row 1 should be flagged oversold")
	}
	if !oversold.NetBTC.IsZero() || oversold.CostBasisUSD.Valid {
		t.Errorf("row 1: net=%s basis valid=%v, want clamped to zero and undefined", oversold.NetBTC, oversold.CostBasisUSD.Valid)
	}
	assertDec(t, "row2 net", res.Rows[2].NetBTC, "0.5")
	assertDec(t, "row2 basis", res.Rows[2].CostBasisUSD.Decimal, "120")
	if res.Final().Oversold != 1 {
		t.Errorf("Final().Oversold = %d, want 1", res.Final().Oversold)
	}
}

func TestRun_ZeroAmountIsNoop(t *testing.T) {
	txs := []model.Transaction{
		tx(1, "1", "100"),
		tx(2, "0", "500"),
		tx(3, "-1", "200"),
	}
	res := mustRun(t, New(Strict), txs, model.LIFO)
	assertDec(t, "row1 net", res.Rows[1].NetBTC, "1")
	assertDec(t, "row1 basis", res.Rows[1].CostBasisUSD.Decimal, "100")
	assertDec(t, "row1 gain", res.Rows[1].GainLossUSD.Decimal, "400")
	if !res.Rows[2].NetBTC.IsZero() {
		t.Errorf("row2 net = %s, want 0", res.Rows[2].NetBTC)
	}
}

func TestRun_ZeroAmountOnEmptyPosition(t *testing.T) {
	res := mustRun(t, New(Strict), []model.Transaction{tx(1, "0", "100")}, model.FIFO)
	if res.Rows[0].CostBasisUSD.Valid {
		t.Errorf("cost basis should be undefined for an empty position")
	}
}

func TestRun_Unsorted(t *testing.T) {
	txs := []model.Transaction{tx(2, "1", "100"), tx(1, "1", "100")}
	if _, err := New(Strict).Run(txs, model.FIFO); !errors.Is(err, ErrUnsorted) {
		t.Fatalf("error = %v, want ErrUnsorted", err)
	}
}

func TestRun_EqualTimestampsAllowed(t *testing.T) {
	txs := []model.Transaction{tx(1, "1", "100"), tx(1, "-1", "100")}
	mustRun(t, New(Strict), txs, model.FIFO)
}

func TestRun_UnknownMethod(t *testing.T) {
	if _, err := New(Strict).Run(scenario(), model.Method("HIFO")); !errors.Is(err, model.ErrUnknownMethod) {
		t.Fatalf("error = %v, want ErrUnknownMethod", err)
	}
}

func TestRun_Empty(t *testing.T) {
	res := mustRun(t, New(Strict), nil, model.FIFO)
	s := res.Final()
	if s.Transactions != 0 || !s.NetBTC.IsZero() || s.CostBasisUSD.Valid {
		t.Errorf("Final() of empty result = %+v", s)
	}
}

func TestResult_Final(t *testing.T) {
	res := mustRun(t, New(Strict), scenario(), model.FIFO)
	s := res.Final()
	if s.Transactions != 3 || s.Purchases != 2 || s.Sales != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", s.Transactions, s.Purchases, s.Sales)
	}
	assertDec(t, "bought", s.BoughtBTC, "2")
	assertDec(t, "sold", s.SoldBTC, "1.5")
	assertDec(t, "net", s.NetBTC, "0.5")
	assertDec(t, "gain", s.GainLossUSD.Decimal, "50")
	if !s.Start.Equal(t0.AddDate(0, 0, 1)) || !s.End.Equal(t0.AddDate(0, 0, 3)) {
		t.Errorf("window = %v..%v", s.Start, s.End)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", Strict, true},
		{"strict", Strict, true},
		{" Lenient ", Lenient, true},
		{"clamp", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePolicy(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
