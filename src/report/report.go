// Package report renders the portfolio summary as markdown for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"stocktracker/src/model"
	"stocktracker/src/portfolio"
	"stocktracker/src/utils"
)

// SummaryMarkdown lists positions grouped by account with per-account and overall totals,
// followed by the trade activity summary.
func SummaryMarkdown(asOf time.Time, positions []model.Position, trades []model.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio Summary on %s\n\n", utils.FormatDate(asOf))

	overall := portfolio.SummarizePositions(positions)
	fmt.Fprintf(&b, "- Holdings: %d\n", overall.TotalHoldings)
	fmt.Fprintf(&b, "- Total cost: %s\n", utils.FormatCurrency(overall.TotalCost))
	fmt.Fprintf(&b, "- Realized gain/loss: %s\n\n", utils.FormatCurrency(overall.TotalGainLoss))

	byAccount := map[string][]model.Position{}
	for _, p := range positions {
		byAccount[p.Account] = append(byAccount[p.Account], p)
	}
	accounts := make([]string, 0, len(byAccount))
	for account := range byAccount {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		held := byAccount[account]
		fmt.Fprintf(&b, "## %s\n\n", account)
		b.WriteString("| Symbol | Name | Quantity | Avg price | Cost | Gain/loss | Acquired |\n")
		b.WriteString("|---|---|---:|---:|---:|---:|---|\n")
		for _, p := range held {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.StockSymbol,
				escape(p.StockName),
				utils.FormatNumber(p.Quantity),
				p.AveragePricePerShare.StringFixed(portfolio.AverageCostPlaces),
				utils.FormatCurrency(p.CostBasis()),
				utils.FormatCurrency(p.CapitalGainLoss),
				utils.FormatDate(p.DateOfAcquisition))
		}
		sub := portfolio.SummarizePositions(held)
		fmt.Fprintf(&b, "\nAccount cost %s, gain/loss %s\n\n",
			utils.FormatCurrency(sub.TotalCost), utils.FormatCurrency(sub.TotalGainLoss))
	}

	activity := portfolio.SummarizeTrades(trades)
	b.WriteString("## Trade activity\n\n")
	fmt.Fprintf(&b, "- Trades: %d\n", activity.TotalTrades)
	fmt.Fprintf(&b, "- Shares traded: %s\n", utils.FormatNumber(activity.TotalShares))
	fmt.Fprintf(&b, "- Commission paid: %s\n", utils.FormatCurrency(activity.TotalCommission))

	return b.String()
}

// Render styles markdown for a terminal of the given width.
func Render(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(markdown)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
