package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the consolidated holding of one symbol in one account.
// Quantity never goes below zero; a position sold down to zero is kept.
type Position struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	Account              string          `gorm:"size:100;not null;uniqueIndex:ux_positions_account_symbol,priority:1" json:"account"`
	StockName            string          `gorm:"size:200" json:"stock_name"`
	StockSymbol          string          `gorm:"size:50;not null;uniqueIndex:ux_positions_account_symbol,priority:2;index" json:"stock_symbol"`
	Quantity             decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"quantity"`
	AveragePricePerShare decimal.Decimal `gorm:"type:numeric(24,4);not null" json:"average_price_per_share"`
	CapitalGainLoss      decimal.Decimal `gorm:"type:numeric(24,2);not null" json:"capital_gain_loss"`
	DateOfAcquisition    time.Time       `gorm:"not null" json:"date_of_acquisition"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// CostBasis is quantity times average price per share.
func (p Position) CostBasis() decimal.Decimal {
	return p.Quantity.Mul(p.AveragePricePerShare)
}
