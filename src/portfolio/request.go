package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stocktracker/src/model"
	"stocktracker/src/utils"
)

// TradeRequest is a trade as submitted from the trade entry form.
type TradeRequest struct {
	Account     string          `json:"account"`
	StockName   string          `json:"stock_name"`
	StockSymbol string          `json:"stock_symbol"`
	Date        time.Time       `json:"date"`
	Type        model.TradeType `json:"trade_type"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	Commission  decimal.Decimal `json:"commission"`
}

// Normalize trims identifiers, upper-cases the symbol, canonicalises the
// trade type and defaults the date to today.
func (r TradeRequest) Normalize() TradeRequest {
	r.Account = strings.TrimSpace(r.Account)
	r.StockName = strings.TrimSpace(r.StockName)
	r.StockSymbol = strings.ToUpper(strings.TrimSpace(r.StockSymbol))
	if t, ok := model.ParseTradeType(string(r.Type)); ok {
		r.Type = t
	}
	if r.Date.IsZero() {
		r.Date = utils.Today()
	} else {
		r.Date = utils.ResetTime(r.Date, "day")
	}
	return r
}

// Validate checks a normalized request.
func (r TradeRequest) Validate() error {
	if _, ok := model.ParseTradeType(string(r.Type)); !ok {
		return fmt.Errorf("%w: %q. Use B (Buy), S (Sell), or T (Transfer)", ErrUnknownTradeType, string(r.Type))
	}
	if r.Account == "" {
		return fmt.Errorf("%w: account is required", ErrValidation)
	}
	if r.StockSymbol == "" {
		return fmt.Errorf("%w: stock symbol is required", ErrValidation)
	}
	if !r.Shares.IsPositive() {
		return fmt.Errorf("%w: shares traded must be greater than 0", ErrValidation)
	}
	if !fitsPlaces(r.Shares, QuantityPlaces) {
		return fmt.Errorf("%w: shares traded allow at most %d decimal places", ErrValidation, QuantityPlaces)
	}
	if r.Commission.IsNegative() {
		return fmt.Errorf("%w: commission cannot be negative", ErrValidation)
	}
	switch r.Type {
	case model.TradeTypeBuy, model.TradeTypeSell:
		if !r.Price.IsPositive() {
			return fmt.Errorf("%w: price per share must be greater than 0", ErrValidation)
		}
	default:
		if r.Price.IsNegative() {
			return fmt.Errorf("%w: price per share cannot be negative", ErrValidation)
		}
	}
	return nil
}

// Entry builds the trade log entry for the request.
func (r TradeRequest) Entry() *model.Trade {
	return &model.Trade{
		Account:       r.Account,
		StockName:     r.StockName,
		StockSymbol:   r.StockSymbol,
		DateOfTrade:   r.Date,
		TradeType:     r.Type,
		SharesTraded:  r.Shares,
		PricePerShare: r.Price,
		Commission:    r.Commission,
	}
}

// HoldingRequest pre-populates a position that was acquired before tracking started.
type HoldingRequest struct {
	Account           string          `json:"account"`
	StockName         string          `json:"stock_name"`
	StockSymbol       string          `json:"stock_symbol"`
	Quantity          decimal.Decimal `json:"quantity"`
	BookCost          decimal.Decimal `json:"book_cost"`
	DateOfAcquisition time.Time       `json:"date_of_acquisition"`
}

func (r HoldingRequest) Normalize() HoldingRequest {
	r.Account = strings.TrimSpace(r.Account)
	r.StockName = strings.TrimSpace(r.StockName)
	r.StockSymbol = strings.ToUpper(strings.TrimSpace(r.StockSymbol))
	if r.DateOfAcquisition.IsZero() {
		r.DateOfAcquisition = utils.Today()
	} else {
		r.DateOfAcquisition = utils.ResetTime(r.DateOfAcquisition, "day")
	}
	return r
}

func (r HoldingRequest) Validate() error {
	if r.Account == "" {
		return fmt.Errorf("%w: account is required", ErrValidation)
	}
	if r.StockSymbol == "" {
		return fmt.Errorf("%w: stock symbol is required", ErrValidation)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}
	if !fitsPlaces(r.Quantity, QuantityPlaces) {
		return fmt.Errorf("%w: quantity allows at most %d decimal places", ErrValidation, QuantityPlaces)
	}
	if !r.BookCost.IsPositive() {
		return fmt.Errorf("%w: book cost must be greater than 0", ErrValidation)
	}
	return nil
}

func fitsPlaces(value decimal.Decimal, places int32) bool {
	return value.Equal(value.Truncate(places))
}
