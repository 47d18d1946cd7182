package handlers

import (
	"btc-basis/internal/analysis"
	"btc-basis/internal/api/models"
	"btc-basis/internal/basis"
)

func convertSummary(s basis.Summary) models.BasisSummary {
	return models.BasisSummary{
		Transactions: s.Transactions,
		Purchases:    s.Purchases,
		Sales:        s.Sales,
		OversoldRows: s.Oversold,
		BoughtBTC:    s.BoughtBTC,
		SoldBTC:      s.SoldBTC,
		NetBTC:       s.NetBTC,
		CostBasisUSD: s.CostBasisUSD,
		GainLossUSD:  s.GainLossUSD,
		Window:       models.TimeWindow{Start: s.Start, End: s.End},
	}
}

func convertLedger(ledger []basis.Row) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		result[i] = models.LedgerRow{
			Index:        row.Index,
			Timestamp:    row.Timestamp,
			AmountBTC:    row.AmountBTC,
			PriceUSD:     row.PriceUSD,
			NetBTC:       row.NetBTC,
			CostBasisUSD: row.CostBasisUSD,
			GainLossUSD:  row.GainLossUSD,
			Oversold:     row.Oversold,
		}
	}
	return result
}

func convertSeries(series []analysis.Series) []models.ChartSeries {
	out := make([]models.ChartSeries, len(series))
	for i, s := range series {
		pts := make([]models.ChartPoint, len(s.Points))
		for j, p := range s.Points {
			pts[j] = models.ChartPoint{Timestamp: p.Timestamp, Value: p.Value}
		}
		out[i] = models.ChartSeries{Metric: string(s.Metric), Points: pts}
	}
	return out
}
