package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stocktracker/src/model"
)

const (
	// AverageCostPlaces is the storage precision of the average price per share.
	AverageCostPlaces = 4
	// GainLossPlaces is the storage precision of the cumulative realized gain/loss.
	GainLossPlaces = 2
	// QuantityPlaces is the storage precision of share quantities.
	QuantityPlaces = 8
)

// Apply computes the position that results from applying req to current.
// current is nil when nothing is held yet. The returned log entry mirrors req.
// Apply never mutates current.
func Apply(req TradeRequest, current *model.Position) (*model.Position, *model.Trade, error) {
	entry := req.Entry()

	var (
		next *model.Position
		err  error
	)
	switch req.Type {
	case model.TradeTypeBuy:
		next = applyBuy(req, current)
	case model.TradeTypeSell:
		next, err = applySell(req, current)
	case model.TradeTypeTransfer:
		next, err = applyTransfer(req, current)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownTradeType, string(req.Type))
	}
	if err != nil {
		return nil, entry, err
	}
	return next, entry, nil
}

// CostOfTrade is shares × price + commission.
func CostOfTrade(shares, price, commission decimal.Decimal) decimal.Decimal {
	return shares.Mul(price).Add(commission)
}

// NetProceeds is shares × price − commission.
func NetProceeds(shares, price, commission decimal.Decimal) decimal.Decimal {
	return shares.Mul(price).Sub(commission)
}

func applyBuy(req TradeRequest, current *model.Position) *model.Position {
	cost := CostOfTrade(req.Shares, req.Price, req.Commission)

	if current == nil {
		return &model.Position{
			Account:              req.Account,
			StockName:            stockName(req, nil),
			StockSymbol:          req.StockSymbol,
			Quantity:             req.Shares,
			AveragePricePerShare: cost.Div(req.Shares).Round(AverageCostPlaces),
			CapitalGainLoss:      decimal.Zero,
			DateOfAcquisition:    req.Date,
		}
	}

	next := *current
	next.StockName = stockName(req, current)
	next.Quantity = current.Quantity.Add(req.Shares)
	existing := current.Quantity.Mul(current.AveragePricePerShare)
	next.AveragePricePerShare = existing.Add(cost).Div(next.Quantity).Round(AverageCostPlaces)
	return &next
}

// TradeGainLoss is the gain/loss realized by a sell alone:
// net proceeds minus the cost basis of the shares sold.
func TradeGainLoss(req TradeRequest, averageCost decimal.Decimal) decimal.Decimal {
	return NetProceeds(req.Shares, req.Price, req.Commission).Sub(req.Shares.Mul(averageCost))
}

func applySell(req TradeRequest, current *model.Position) (*model.Position, error) {
	if current == nil {
		return nil, fmt.Errorf("%w: no existing holdings found for %s in %s",
			ErrNoPosition, req.StockSymbol, req.Account)
	}
	if req.Shares.GreaterThan(current.Quantity) {
		return nil, fmt.Errorf("%w: you have %s shares, trying to sell %s",
			ErrInsufficientShares, current.Quantity.String(), req.Shares.String())
	}

	next := *current
	next.StockName = stockName(req, current)
	next.Quantity = current.Quantity.Sub(req.Shares)
	next.CapitalGainLoss = current.CapitalGainLoss.
		Add(TradeGainLoss(req, current.AveragePricePerShare)).
		Round(GainLossPlaces)
	return &next, nil
}

// applyTransfer leaves the position untouched; cost basis does not move between accounts.
func applyTransfer(req TradeRequest, current *model.Position) (*model.Position, error) {
	if current == nil {
		return nil, fmt.Errorf("%w: no existing holdings found for %s in %s",
			ErrNoPosition, req.StockSymbol, req.Account)
	}
	next := *current
	return &next, nil
}

func stockName(req TradeRequest, current *model.Position) string {
	if req.StockName != "" {
		return req.StockName
	}
	if current != nil && current.StockName != "" {
		return current.StockName
	}
	return req.StockSymbol
}
