// Package tables reads and writes the positions and trades tables as CSV.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"stocktracker/src/model"
	"stocktracker/src/utils"
)

var (
	PositionColumns = []string{
		"Account", "StockName", "StockSymbol", "Quantity",
		"AveragePricePerShare", "CapitalGainLoss", "DateOfAcquisition",
	}
	TradeColumns = []string{
		"Account", "StockName", "StockSymbol", "DateOfTrade",
		"TradeType", "SharesTraded", "PricePerShare", "Commission",
	}
)

var ErrMalformedTable = errors.New("malformed table")

func WritePositions(w io.Writer, positions []model.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PositionColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range positions {
		row := []string{
			p.Account,
			p.StockName,
			p.StockSymbol,
			p.Quantity.String(),
			p.AveragePricePerShare.String(),
			p.CapitalGainLoss.String(),
			utils.FormatDate(p.DateOfAcquisition),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write position %s/%s: %w", p.Account, p.StockSymbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteTrades(w io.Writer, trades []model.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TradeColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		row := []string{
			t.Account,
			t.StockName,
			t.StockSymbol,
			utils.FormatDate(t.DateOfTrade),
			string(t.TradeType),
			t.SharesTraded.String(),
			t.PricePerShare.String(),
			t.Commission.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trade %s/%s: %w", t.Account, t.StockSymbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPositions parses a positions table. Columns are matched by header name.
func ReadPositions(r io.Reader) ([]model.Position, error) {
	rows, err := readRows(r, PositionColumns)
	if err != nil {
		return nil, err
	}

	positions := make([]model.Position, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		p := model.Position{
			Account:     strings.TrimSpace(row["Account"]),
			StockName:   strings.TrimSpace(row["StockName"]),
			StockSymbol: strings.ToUpper(strings.TrimSpace(row["StockSymbol"])),
		}
		if p.Quantity, err = number(row["Quantity"], false); err != nil {
			return nil, lineError(line, "Quantity", err)
		}
		if p.AveragePricePerShare, err = number(row["AveragePricePerShare"], false); err != nil {
			return nil, lineError(line, "AveragePricePerShare", err)
		}
		if p.CapitalGainLoss, err = number(row["CapitalGainLoss"], true); err != nil {
			return nil, lineError(line, "CapitalGainLoss", err)
		}
		if p.DateOfAcquisition, err = utils.ParseDate(row["DateOfAcquisition"]); err != nil {
			return nil, lineError(line, "DateOfAcquisition", err)
		}
		if p.Account == "" || p.StockSymbol == "" {
			return nil, lineError(line, "Account/StockSymbol", errors.New("required"))
		}
		if p.Quantity.IsNegative() {
			return nil, lineError(line, "Quantity", errors.New("cannot be negative"))
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// ReadTrades parses a trades table. An empty commission reads as zero.
func ReadTrades(r io.Reader) ([]model.Trade, error) {
	rows, err := readRows(r, TradeColumns)
	if err != nil {
		return nil, err
	}

	trades := make([]model.Trade, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		t := model.Trade{
			Account:     strings.TrimSpace(row["Account"]),
			StockName:   strings.TrimSpace(row["StockName"]),
			StockSymbol: strings.ToUpper(strings.TrimSpace(row["StockSymbol"])),
		}
		tradeType, ok := model.ParseTradeType(row["TradeType"])
		if !ok {
			return nil, lineError(line, "TradeType", fmt.Errorf("unknown trade type %q", row["TradeType"]))
		}
		t.TradeType = tradeType
		if t.DateOfTrade, err = utils.ParseDate(row["DateOfTrade"]); err != nil {
			return nil, lineError(line, "DateOfTrade", err)
		}
		if t.SharesTraded, err = number(row["SharesTraded"], false); err != nil {
			return nil, lineError(line, "SharesTraded", err)
		}
		if t.PricePerShare, err = number(row["PricePerShare"], false); err != nil {
			return nil, lineError(line, "PricePerShare", err)
		}
		if t.Commission, err = number(row["Commission"], true); err != nil {
			return nil, lineError(line, "Commission", err)
		}
		if t.Account == "" || t.StockSymbol == "" {
			return nil, lineError(line, "Account/StockSymbol", errors.New("required"))
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// WriteFile replaces path with the output of write. The file is written to a
// temporary sibling first and renamed into place.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tmp-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func readRows(r io.Reader, columns []string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrMalformedTable)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, column := range columns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedTable, column)
		}
	}

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}
		row := make(map[string]string, len(columns))
		for _, column := range columns {
			if i := index[column]; i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func number(raw string, emptyIsZero bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if emptyIsZero {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.New("value is required")
	}
	return decimal.NewFromString(raw)
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func lineError(line int, column string, err error) error {
	return fmt.Errorf("%w: line %d, %s: %w", ErrMalformedTable, line, column, err)
}
