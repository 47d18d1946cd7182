package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BasisResponse represents the response from a cost-basis computation
type BasisResponse struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Cached   bool         `json:"cached"`
	FileName string       `json:"file_name,omitempty"`
	Method   string       `json:"method"`
	Policy   string       `json:"policy"`
	Summary  BasisSummary `json:"summary"`
	Ledger   []LedgerRow  `json:"ledger,omitempty"`
}

// BasisSummary contains the position after the last transaction
type BasisSummary struct {
	Transactions int                 `json:"transactions"`
	Purchases    int                 `json:"purchases"`
	Sales        int                 `json:"sales"`
	OversoldRows int                 `json:"oversold_rows"`
	BoughtBTC    decimal.Decimal     `json:"bought_btc"`
	SoldBTC      decimal.Decimal     `json:"sold_btc"`
	NetBTC       decimal.Decimal     `json:"net_btc"`
	CostBasisUSD decimal.NullDecimal `json:"cost_basis_usd"`
	GainLossUSD  decimal.NullDecimal `json:"gain_loss_usd"`
	Window       TimeWindow          `json:"window"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one transaction in the computed ledger.
// Cost basis and P&L are null when the net position is zero.
type LedgerRow struct {
	Index        int                 `json:"index"`
	Timestamp    time.Time           `json:"timestamp"`
	AmountBTC    decimal.Decimal     `json:"amount_btc"`
	PriceUSD     decimal.Decimal     `json:"price_usd"`
	NetBTC       decimal.Decimal     `json:"net_btc"`
	CostBasisUSD decimal.NullDecimal `json:"cost_basis_usd"`
	GainLossUSD  decimal.NullDecimal `json:"gain_loss_usd"`
	Oversold     bool                `json:"oversold,omitempty"`
}

// LedgerResponse is the JSON form of GET /api/v1/basis/:id/ledger
type LedgerResponse struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Ledger []LedgerRow `json:"ledger"`
}

// CompareResponse represents FIFO and LIFO run over the same upload
type CompareResponse struct {
	FileName   string             `json:"file_name,omitempty"`
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one method
type ComparisonResult struct {
	Rank    int          `json:"rank"`
	ID      string       `json:"id"`
	Method  string       `json:"method"`
	Summary BasisSummary `json:"summary"`
}

// ChartResponse holds the time series for the chart renderer
type ChartResponse struct {
	ID     string        `json:"id"`
	Method string        `json:"method"`
	Series []ChartSeries `json:"series"`
}

// ChartSeries is one metric against time
type ChartSeries struct {
	Metric string       `json:"metric"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is one sample
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MethodInfo represents information about a lot-matching method
type MethodInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default,omitempty"`
}

// MetricInfo describes a chartable metric
type MetricInfo struct {
	Name    string `json:"name"`
	Default bool   `json:"default,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
