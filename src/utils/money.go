package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount in dollars, e.g. $1,005.00 or -$70.50.
func FormatCurrency(amount decimal.Decimal) string {
	cents := amount.Round(2).Shift(2).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatNumber renders a quantity without trailing zeros.
func FormatNumber(amount decimal.Decimal) string {
	return amount.String()
}
