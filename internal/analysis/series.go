package analysis

import (
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"
)

// Point is one sample of a metric against time.
// Values are floats: series feed a chart, not further accounting.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a metric plotted against the ledger timestamps.
type Series struct {
	Metric model.Metric `json:"metric"`
	Points []Point      `json:"points"`
}

// BuildSeries extracts one series per metric, in the order requested.
// Rows where a metric is undefined (cost basis of an empty position) are
// left out of that metric's series.
func BuildSeries(rows []basis.Row, metrics []model.Metric) []Series {
	if len(metrics) == 0 {
		metrics = model.DefaultMetrics()
	}
	out := make([]Series, 0, len(metrics))
	for _, m := range metrics {
		s := Series{Metric: m, Points: make([]Point, 0, len(rows))}
		for _, r := range rows {
			v, ok := r.Value(m)
			if !ok {
				continue
			}
			s.Points = append(s.Points, Point{Timestamp: r.Timestamp, Value: v.InexactFloat64()})
		}
		out = append(out, s)
	}
	return out
}
