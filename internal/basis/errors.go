package basis

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientLots is matched by every *InsufficientLotsError.
	ErrInsufficientLots = errors.New("insufficient open lots")
	// ErrUndefinedCostBasis is returned when the cost basis of an empty position is requested.
	ErrUndefinedCostBasis = errors.New("cost basis undefined for zero net position")
	// ErrUnsorted is returned when transactions are not in timestamp order.
	ErrUnsorted = errors.New("transactions not sorted by timestamp")
	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("unknown oversell policy")
)

// InsufficientLotsError reports a sale of more BTC than was held open.
type InsufficientLotsError struct {
	Index     int
	Timestamp time.Time
	Requested decimal.Decimal // BTC the sale asked for
	Short     decimal.Decimal // BTC left unmatched once the queue ran dry
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("transaction %d at %s sells %s BTC but only %s BTC is held",
		e.Index, e.Timestamp.Format(time.RFC3339), e.Requested, e.Requested.Sub(e.Short))
}

func (e *InsufficientLotsError) Is(target error) bool { return target == ErrInsufficientLots }

// Policy decides what happens when a sale exceeds the open position.
type Policy string

const (
	// Strict aborts the whole computation with an *InsufficientLotsError.
	Strict Policy = "strict"
	// Lenient clamps the position at zero and flags the row as oversold.
	Lenient Policy = "lenient"
)

func (p Policy) String() string {
	if p == "" {
		return string(Strict)
	}
	return string(p)
}

// ParsePolicy parses "strict" or "lenient". An empty string means Strict.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", Strict:
		return Strict, nil
	case Lenient:
		return Lenient, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
