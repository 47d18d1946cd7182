package model

import (
	"errors"
	"fmt"
	"strings"
)

// Method selects which open lot a sale draws from.
// Keep these values stable; they appear in requests, config and CSV file names.
type Method string

const (
	// FIFO consumes the oldest open lot first.
	FIFO Method = "FIFO"
	// LIFO consumes the most recently opened lot first.
	LIFO Method = "LIFO"
)

// ErrUnknownMethod is returned for any selector other than FIFO or LIFO.
var ErrUnknownMethod = errors.New("unknown lot-matching method")

// Methods lists the supported methods in display order.
func Methods() []Method { return []Method{LIFO, FIFO} }

func (m Method) String() string { return string(m) }

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m == FIFO || m == LIFO
}

// Description is the human-friendly explanation shown next to the selector.
func (m Method) Description() string {
	switch m {
	case FIFO:
		return "First in, first out: your very first trade is sold first when calculating cost basis."
	case LIFO:
		return "Last in, first out: your most recent trade is sold first when calculating cost basis."
	default:
		return ""
	}
}

// ParseMethod parses a method selector, ignoring case and surrounding whitespace.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
	return m, nil
}
