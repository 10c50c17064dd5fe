package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TradeType string

const (
	TradeTypeBuy      TradeType = "B"
	TradeTypeSell     TradeType = "S"
	TradeTypeTransfer TradeType = "T"
)

// Label returns the human readable name used on the history page.
func (t TradeType) Label() string {
	switch t {
	case TradeTypeBuy:
		return "Buy"
	case TradeTypeSell:
		return "Sell"
	case TradeTypeTransfer:
		return "Transfer"
	default:
		return string(t)
	}
}

// ParseTradeType accepts the single letter codes as well as the long names, case-insensitive.
func ParseTradeType(s string) (TradeType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B", "BUY":
		return TradeTypeBuy, true
	case "S", "SELL":
		return TradeTypeSell, true
	case "T", "TRANSFER":
		return TradeTypeTransfer, true
	default:
		return "", false
	}
}

// Trade is one entry of the append-only trade log. Rows are never updated.
type Trade struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:36;index" json:"reference"`
	Account       string          `gorm:"size:100;not null;index:idx_trades_account_symbol,priority:1" json:"account"`
	StockName     string          `gorm:"size:200" json:"stock_name"`
	StockSymbol   string          `gorm:"size:50;not null;index:idx_trades_account_symbol,priority:2" json:"stock_symbol"`
	DateOfTrade   time.Time       `gorm:"not null;index" json:"date_of_trade"`
	TradeType     TradeType       `gorm:"size:1;not null" json:"trade_type"`
	SharesTraded  decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"shares_traded"`
	PricePerShare decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"price_per_share"`
	Commission    decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"commission"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}
