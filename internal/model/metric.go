package model

import (
	"errors"
	"fmt"
	"strings"
)

// Metric names a chartable column of the computed ledger.
// The values double as the ledger column headers.
type Metric string

const (
	MetricAmount    Metric = "BTC Purchased/Sold"
	MetricPrice     Metric = "BTC Price ($)"
	MetricNetBTC    Metric = "Net BTC"
	MetricCostBasis Metric = "Cost Basis ($)"
	MetricGainLoss  Metric = "Total P&L ($)"
)

// ErrUnknownMetric is returned by ParseMetric.
var ErrUnknownMetric = errors.New("unknown metric")

// Metrics lists every chartable metric in column order.
func Metrics() []Metric {
	return []Metric{MetricAmount, MetricPrice, MetricNetBTC, MetricCostBasis, MetricGainLoss}
}

// DefaultMetrics is the chart selection used when none is given.
func DefaultMetrics() []Metric {
	return []Metric{MetricPrice, MetricCostBasis}
}

var metricAliases = map[string]Metric{
	"amount":     MetricAmount,
	"amount_btc": MetricAmount,
	"price":      MetricPrice,
	"price_usd":  MetricPrice,
	"net":        MetricNetBTC,
	"net_btc":    MetricNetBTC,
	"cost_basis": MetricCostBasis,
	"basis":      MetricCostBasis,
	"pnl":        MetricGainLoss,
	"gain_loss":  MetricGainLoss,
}

// ParseMetric accepts either the column header or a short snake_case alias.
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	for _, m := range Metrics() {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	if m, ok := metricAliases[strings.ToLower(s)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// ParseMetrics parses a comma-separated list. An empty list yields DefaultMetrics.
func ParseMetrics(s string) ([]Metric, error) {
	var out []Metric
	for _, p := range strings.Split(s, ",") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		m, err := ParseMetric(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return DefaultMetrics(), nil
	}
	return out, nil
}
