package portfolio

import (
	"github.com/shopspring/decimal"

	"stocktracker/src/model"
)

// PositionSummary holds the dashboard totals.
type PositionSummary struct {
	TotalHoldings int             `json:"total_holdings"`
	TotalShares   decimal.Decimal `json:"total_shares"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalGainLoss decimal.Decimal `json:"total_gain_loss"`
}

// TradeSummary holds the trade history totals.
type TradeSummary struct {
	TotalTrades     int             `json:"total_trades"`
	TotalShares     decimal.Decimal `json:"total_shares"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

func SummarizePositions(positions []model.Position) PositionSummary {
	summary := PositionSummary{
		TotalHoldings: len(positions),
		TotalShares:   decimal.Zero,
		TotalCost:     decimal.Zero,
		TotalGainLoss: decimal.Zero,
	}
	for _, p := range positions {
		summary.TotalShares = summary.TotalShares.Add(p.Quantity)
		summary.TotalCost = summary.TotalCost.Add(p.CostBasis())
		summary.TotalGainLoss = summary.TotalGainLoss.Add(p.CapitalGainLoss)
	}
	return summary
}

func SummarizeTrades(trades []model.Trade) TradeSummary {
	summary := TradeSummary{
		TotalTrades:     len(trades),
		TotalShares:     decimal.Zero,
		TotalCommission: decimal.Zero,
	}
	for _, t := range trades {
		summary.TotalShares = summary.TotalShares.Add(t.SharesTraded)
		summary.TotalCommission = summary.TotalCommission.Add(t.Commission)
	}
	return summary
}
