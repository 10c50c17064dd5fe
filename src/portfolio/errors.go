package portfolio

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrUnknownTradeType   = errors.New("unknown trade type")
	ErrNoPosition         = errors.New("no position")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrPositionExists     = errors.New("position already exists")
	ErrStorage            = errors.New("storage error")
)
