package tables

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/src/model"
)

func TestWritePositions(t *testing.T) {
	var buf bytes.Buffer
	err := WritePositions(&buf, []model.Position{{
		Account:              "ISA",
		StockName:            "Apple, Inc.",
		StockSymbol:          "AAPL",
		Quantity:             decimal.NewFromInt(15),
		AveragePricePerShare: decimal.RequireFromString("105.5"),
		CapitalGainLoss:      decimal.RequireFromString("70.5"),
		DateOfAcquisition:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	assert.Equal(t,
		"Account,StockName,StockSymbol,Quantity,AveragePricePerShare,CapitalGainLoss,DateOfAcquisition\n"+
			"ISA,\"Apple, Inc.\",AAPL,15,105.5,70.5,2024-01-15\n",
		buf.String())
}

func TestWriteTrades(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTrades(&buf, []model.Trade{{
		Account:       "ISA",
		StockName:     "Apple",
		StockSymbol:   "AAPL",
		DateOfTrade:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		TradeType:     model.TradeTypeSell,
		SharesTraded:  decimal.NewFromInt(5),
		PricePerShare: decimal.NewFromInt(120),
		Commission:    decimal.NewFromInt(2),
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Account,StockName,StockSymbol,DateOfTrade,TradeType,SharesTraded,PricePerShare,Commission", lines[0])
	assert.Equal(t, "ISA,Apple,AAPL,2024-03-02,S,5,120,2", lines[1])
}

func TestReadTrades_Tolerant(t *testing.T) {
	input := "Account,StockName,StockSymbol,DateOfTrade,TradeType,SharesTraded,PricePerShare,Commission\n" +
		"ISA,Apple,aapl,2024-01-15 00:00:00,B,10,100.00,\n" +
		",,,,,,,\n" +
		"GIA,Vanguard,VWRL,2024-02-01,T,3,0,0\n"

	trades, err := ReadTrades(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "AAPL", trades[0].StockSymbol)
	assert.Equal(t, model.TradeTypeBuy, trades[0].TradeType)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), trades[0].DateOfTrade)
	assert.True(t, trades[0].Commission.IsZero())
	assert.Equal(t, model.TradeTypeTransfer, trades[1].TradeType)
}

func TestReadPositions_ColumnOrderFromHeader(t *testing.T) {
	input := "StockSymbol,Account,StockName,Quantity,AveragePricePerShare,CapitalGainLoss,DateOfAcquisition\n" +
		"MSFT,SIPP,Microsoft,2.5,300.1234,-12.34,2023-06-30\n"

	positions, err := ReadPositions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "SIPP", positions[0].Account)
	assert.Equal(t, "MSFT", positions[0].StockSymbol)
	assert.True(t, decimal.RequireFromString("2.5").Equal(positions[0].Quantity))
	assert.True(t, decimal.RequireFromString("-12.34").Equal(positions[0].CapitalGainLoss))
}

func TestRead_Malformed(t *testing.T) {
	tests := map[string]struct {
		input string
		read  func(string) error
	}{
		"empty": {input: "", read: readTrades},
		"missing column": {
			input: "Account,StockName,StockSymbol,DateOfTrade,TradeType,SharesTraded,PricePerShare\n",
			read:  readTrades,
		},
		"bad trade type": {
			input: strings.Join(TradeColumns, ",") + "\nISA,Apple,AAPL,2024-01-15,X,1,1,0\n",
			read:  readTrades,
		},
		"bad number": {
			input: strings.Join(TradeColumns, ",") + "\nISA,Apple,AAPL,2024-01-15,B,ten,1,0\n",
			read:  readTrades,
		},
		"negative quantity": {
			input: strings.Join(PositionColumns, ",") + "\nISA,Apple,AAPL,-1,1,0,2024-01-15\n",
			read:  readPositions,
		},
		"bad date": {
			input: strings.Join(PositionColumns, ",") + "\nISA,Apple,AAPL,1,1,0,15.01.2024\n",
			read:  readPositions,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.read(tc.input)
			assert.ErrorIs(t, err, ErrMalformedTable)
		})
	}
}

func readTrades(s string) error {
	_, err := ReadTrades(strings.NewReader(s))
	return err
}

func readPositions(s string) error {
	_, err := ReadPositions(strings.NewReader(s))
	return err
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		return WriteTrades(w, nil)
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(TradeColumns, ",")+"\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
