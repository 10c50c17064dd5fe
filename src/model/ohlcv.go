package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OHLCV is one bar of a market data series.
type OHLCV struct {
	Datetime time.Time       `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
	Symbol   string          `json:"symbol"`
}

// Quote is the latest traded price of a symbol.
type Quote struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
	AsOf     time.Time       `json:"as_of"`
}
