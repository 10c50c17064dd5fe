package migrations

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocktracker/src/model"
)

// backfillTradeReferences gives every trade imported from the legacy CSV
// tables an audit reference.
func backfillTradeReferences(db *gorm.DB) error {
	var ids []uint
	if err := db.Model(&model.Trade{}).
		Where("reference IS NULL OR reference = ''").
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("collect trades without reference: %w", err)
	}

	for _, id := range ids {
		if err := db.Model(&model.Trade{}).
			Where("id = ?", id).
			UpdateColumn("reference", uuid.NewString()).Error; err != nil {
			return fmt.Errorf("backfill reference for trade %d: %w", id, err)
		}
	}
	return nil
}

// normalizeTradeSymbols upper-cases and trims ticker symbols in the trade log
// so they line up with the positions keys.
func normalizeTradeSymbols(db *gorm.DB) error {
	return db.Model(&model.Trade{}).
		Where("stock_symbol <> UPPER(TRIM(stock_symbol))").
		UpdateColumn("stock_symbol", gorm.Expr("UPPER(TRIM(stock_symbol))")).Error
}
