package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stocktracker/src/model"
)

// TradeRepository appends to and reads the immutable trade log.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a repository on top of the given gorm DB.
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Debug("Creating new TradeRepository")

	return &TradeRepository{db: db}
}

// TradeSearchOptions filters the history listing. Nil fields are ignored.
type TradeSearchOptions struct {
	Account *string
	Symbol  *string
	Type    *model.TradeType
	Limit   int
	Offset  int
}

// Append inserts a new trade log entry. The trade gets its generated ID.
func (r *TradeRepository) Append(
	ctx context.Context,
	trade *model.Trade,
) error {

	fields := map[string]interface{}{
		"repo":      "TradeRepository",
		"op":        "Append",
		"account":   trade.Account,
		"symbol":    trade.StockSymbol,
		"type":      trade.TradeType,
		"shares":    trade.SharesTraded.String(),
		"reference": trade.Reference,
	}

	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to append trade")
		return err
	}

	logger.WithFields(fields).Info("Trade recorded")
	return nil
}

// Search lists trades from newest to oldest.
func (r *TradeRepository) Search(
	ctx context.Context,
	options TradeSearchOptions,
) ([]model.Trade, error) {

	query := r.db.WithContext(ctx).Model(&model.Trade{})

	if options.Account != nil {
		query = query.Where("account = ?", *options.Account)
	}
	if options.Symbol != nil {
		query = query.Where("stock_symbol = ?", *options.Symbol)
	}
	if options.Type != nil {
		query = query.Where("trade_type = ?", string(*options.Type))
	}

	query = query.Order("date_of_trade DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var trades []model.Trade
	if err := query.Find(&trades).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "TradeRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search trades")
		return nil, err
	}

	return trades, nil
}
