package models

// BasisRequest is the form accompanying a multipart upload to POST /api/v1/basis.
// The file itself is read from the "file" part.
type BasisRequest struct {
	Method        string `form:"method"`                   // "FIFO" or "LIFO"; default from config
	IncludeLedger bool   `form:"include_ledger,omitempty"` // default: false
}

// LedgerQuery selects the representation for GET /api/v1/basis/:id/ledger.
type LedgerQuery struct {
	Format string `form:"format"` // "json" (default) or "csv"
}

// ChartQuery selects the metrics for GET /api/v1/basis/:id/chart.
type ChartQuery struct {
	Metrics string `form:"metrics"` // comma-separated; default: price and cost basis
}
