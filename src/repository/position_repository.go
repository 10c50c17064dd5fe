package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocktracker/src/model"
)

// PositionRepository handles read/write operations on the consolidated positions table.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a repository on top of the given gorm DB.
func NewPositionRepository(db *gorm.DB) *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Debug("Creating new PositionRepository")

	return &PositionRepository{db: db}
}

// PositionSearchOptions filters the dashboard listing. Nil fields are ignored.
type PositionSearchOptions struct {
	Account *string
	Symbol  *string
}

// Get fetches the position for (account, symbol).
// Returns (nil, nil) if the position is not found.
func (r *PositionRepository) Get(
	ctx context.Context,
	account string,
	symbol string,
) (*model.Position, error) {

	fields := map[string]interface{}{
		"repo":    "PositionRepository",
		"op":      "Get",
		"account": account,
		"symbol":  symbol,
	}

	var position model.Position

	err := r.db.WithContext(ctx).
		Where("account = ? AND stock_symbol = ?", account, symbol).
		First(&position).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(fields).Debug("Position not found")
			return nil, nil
		}

		logger.WithFields(fields).WithError(err).Error("Failed to fetch position")
		return nil, err
	}

	return &position, nil
}

// Upsert updates the position matching (account, symbol) in place, or inserts it.
func (r *PositionRepository) Upsert(
	ctx context.Context,
	position *model.Position,
) error {

	fields := map[string]interface{}{
		"repo":     "PositionRepository",
		"op":       "Upsert",
		"account":  position.Account,
		"symbol":   position.StockSymbol,
		"quantity": position.Quantity.String(),
	}

	// the conflict target is the (account, symbol) key, never the surrogate id
	row := *position
	row.ID = 0
	row.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account"}, {Name: "stock_symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"stock_name",
				"quantity",
				"average_price_per_share",
				"capital_gain_loss",
				"date_of_acquisition",
				"updated_at",
			}),
		}).
		Create(&row).Error

	if err != nil {
		logger.WithFields(fields).WithError(err).Error("Failed to upsert position")
		return err
	}

	position.ID = row.ID
	position.UpdatedAt = row.UpdatedAt

	logger.WithFields(fields).Info("Position saved")
	return nil
}

// Search lists positions ordered by account then symbol.
func (r *PositionRepository) Search(
	ctx context.Context,
	options PositionSearchOptions,
) ([]model.Position, error) {

	query := r.db.WithContext(ctx).Model(&model.Position{})

	if options.Account != nil {
		query = query.Where("account = ?", *options.Account)
	}
	if options.Symbol != nil {
		query = query.Where("stock_symbol = ?", *options.Symbol)
	}

	var positions []model.Position
	if err := query.Order("account ASC, stock_symbol ASC").Find(&positions).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search positions")
		return nil, err
	}

	return positions, nil
}

// ListAccounts returns the distinct accounts holding a position, ascending.
func (r *PositionRepository) ListAccounts(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "account")
}

// ListSymbols returns the distinct symbols across all positions, ascending.
func (r *PositionRepository) ListSymbols(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "stock_symbol")
}

func (r *PositionRepository) distinct(ctx context.Context, column string) ([]string, error) {
	values := []string{}

	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Distinct().
		Order(column+" ASC").
		Pluck(column, &values).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "PositionRepository",
			"op":     "distinct",
			"column": column,
		}).WithError(err).Error("Failed to list distinct values")
		return nil, err
	}

	return values, nil
}
