package model

import "time"

// Exception is a persisted failure that left the tables out of step,
// e.g. a trade logged without the matching position update.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "stocktracker"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "portfolio"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "SubmitTrade"

	Message string `gorm:"type:text" json:"message"`

	// debug | info | warn | error | fatal
	Level string `gorm:"size:20;index" json:"level"`

	// Extra context stored as JSON text
	Context string `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
