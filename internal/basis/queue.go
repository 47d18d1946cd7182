package basis

import (
	"btc-basis/internal/model"

	"github.com/shopspring/decimal"
)

// Queue is the open-lot deque: lots in the order they were appended, with
// removal from either end and reinsertion at the front.
//
// It is a growable ring buffer. Lots with nothing remaining are never queued.
// Running totals keep Position and Cost constant time; decimal addition and
// multiplication are exact, so they never drift from a full recount.
type Queue struct {
	buf  []model.Lot
	head int
	n    int

	position decimal.Decimal
	cost     decimal.Decimal
}

func NewQueue() *Queue { return &Queue{} }

// Len returns the number of open lots.
func (q *Queue) Len() int { return q.n }

// PushBack appends a lot after the most recently appended one.
func (q *Queue) PushBack(l model.Lot) {
	if !l.RemainingBTC.IsPositive() {
		return
	}
	q.grow()
	q.buf[(q.head+q.n)%len(q.buf)] = l
	q.n++
	q.add(l)
}

// PushFront inserts a lot ahead of every other lot.
func (q *Queue) PushFront(l model.Lot) {
	if !l.RemainingBTC.IsPositive() {
		return
	}
	q.grow()
	q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
	q.buf[q.head] = l
	q.n++
	q.add(l)
}

// PopFront removes and returns the oldest appended lot.
func (q *Queue) PopFront() (model.Lot, bool) {
	if q.n == 0 {
		return model.Lot{}, false
	}
	l := q.buf[q.head]
	q.buf[q.head] = model.Lot{}
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	q.remove(l)
	return l, true
}

// PopBack removes and returns the most recently appended lot.
func (q *Queue) PopBack() (model.Lot, bool) {
	if q.n == 0 {
		return model.Lot{}, false
	}
	i := (q.head + q.n - 1) % len(q.buf)
	l := q.buf[i]
	q.buf[i] = model.Lot{}
	q.n--
	q.remove(l)
	return l, true
}

// At returns the i-th lot counting from the front.
func (q *Queue) At(i int) model.Lot {
	if i < 0 || i >= q.n {
		panic("basis: queue index out of range")
	}
	return q.buf[(q.head+i)%len(q.buf)]
}

// Lots returns a front-to-back copy of the open lots.
func (q *Queue) Lots() []model.Lot {
	out := make([]model.Lot, q.n)
	for i := range out {
		out[i] = q.At(i)
	}
	return out
}

// Position is the total BTC remaining across all open lots.
func (q *Queue) Position() decimal.Decimal { return q.position }

// Cost is the total acquisition cost of the open lots.
func (q *Queue) Cost() decimal.Decimal { return q.cost }

func (q *Queue) add(l model.Lot) {
	q.position = q.position.Add(l.RemainingBTC)
	q.cost = q.cost.Add(l.Cost())
}

func (q *Queue) remove(l model.Lot) {
	if q.n == 0 {
		q.position, q.cost = decimal.Zero, decimal.Zero
		return
	}
	q.position = q.position.Sub(l.RemainingBTC)
	q.cost = q.cost.Sub(l.Cost())
}

func (q *Queue) grow() {
	if q.n < len(q.buf) {
		return
	}
	size := 2 * len(q.buf)
	if size == 0 {
		size = 8
	}
	buf := make([]model.Lot, size)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
