package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/src/model"
)

func TestSummaryMarkdown(t *testing.T) {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	positions := []model.Position{
		{Account: "SIPP", StockName: "Microsoft", StockSymbol: "MSFT", Quantity: decimal.NewFromInt(2),
			AveragePricePerShare: decimal.NewFromInt(300), CapitalGainLoss: decimal.Zero, DateOfAcquisition: asOf},
		{Account: "ISA", StockName: "Apple | Inc", StockSymbol: "AAPL", Quantity: decimal.NewFromInt(15),
			AveragePricePerShare: decimal.RequireFromString("105.5"), CapitalGainLoss: decimal.RequireFromString("70.5"), DateOfAcquisition: asOf},
	}
	trades := []model.Trade{
		{SharesTraded: decimal.NewFromInt(10), Commission: decimal.NewFromInt(5)},
		{SharesTraded: decimal.NewFromInt(5), Commission: decimal.NewFromInt(2)},
	}

	md := SummaryMarkdown(asOf, positions, trades)

	assert.Contains(t, md, "# Portfolio Summary on 2024-03-31")
	assert.Contains(t, md, "- Holdings: 2")
	assert.Contains(t, md, "- Total cost: $2,182.50")
	assert.Contains(t, md, "- Realized gain/loss: $70.50")
	assert.Contains(t, md, `| AAPL | Apple \| Inc | 15 | 105.5000 | $1,582.50 | $70.50 | 2024-03-31 |`)
	assert.Contains(t, md, "- Commission paid: $7.00")
	assert.Less(t, strings.Index(md, "## ISA"), strings.Index(md, "## SIPP"))
}

func TestRender(t *testing.T) {
	out, err := Render("# Title\n\nbody", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}
