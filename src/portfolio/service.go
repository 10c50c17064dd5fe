package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stocktracker/src/model"
)

type positionStore interface {
	Get(ctx context.Context, account string, symbol string) (*model.Position, error)
	Upsert(ctx context.Context, position *model.Position) error
}

type tradeLog interface {
	Append(ctx context.Context, trade *model.Trade) error
}

type exceptionRecorder interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// Outcome is what the trade entry page shows after a submission.
type Outcome struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Reference string          `json:"reference,omitempty"`
	Position  *model.Position `json:"position,omitempty"`
	Trade     *model.Trade    `json:"trade,omitempty"`
}

// Service applies submitted trades to the trade log and the positions table.
// It assumes a single writer: the read-modify-write of a position is not locked.
type Service struct {
	log        *logrus.Entry
	positions  positionStore
	trades     tradeLog
	exceptions exceptionRecorder
}

// NewService wires the service. exceptions may be nil.
func NewService(log *logrus.Entry, positions positionStore, trades tradeLog, exceptions exceptionRecorder) *Service {
	return &Service{
		log:        log,
		positions:  positions,
		trades:     trades,
		exceptions: exceptions,
	}
}

// SubmitTrade validates req, appends it to the trade log and then updates the position.
// The log append is not rolled back when the position update fails; such trades are
// recorded as exceptions. The returned Outcome is always populated, the error carries
// the kind (ErrValidation, ErrNoPosition, ...) for callers that map it.
func (s *Service) SubmitTrade(ctx context.Context, req TradeRequest) (Outcome, error) {
	req = req.Normalize()
	log := s.log.WithFields(logrus.Fields{
		"op":      "SubmitTrade",
		"account": req.Account,
		"symbol":  req.StockSymbol,
		"type":    req.Type,
		"shares":  req.Shares.String(),
	})

	if err := req.Validate(); err != nil {
		log.WithError(err).Warn("rejected trade")
		return failure(validationMessage(req, err)), err
	}

	entry := req.Entry()
	entry.Reference = uuid.NewString()
	log = log.WithField("reference", entry.Reference)

	if err := s.trades.Append(ctx, entry); err != nil {
		log.WithError(err).Error("failed to record trade")
		return failure("Failed to record trade in trade history"), fmt.Errorf("%w: append trade: %w", ErrStorage, err)
	}

	current, err := s.positions.Get(ctx, req.Account, req.StockSymbol)
	if err != nil {
		log.WithError(err).Error("failed to read position")
		s.recordOrphan(ctx, entry, "error", err)
		out := failure("Failed to read consolidated record")
		out.Reference = entry.Reference
		return out, fmt.Errorf("%w: get position: %w", ErrStorage, err)
	}

	next, _, err := Apply(req, current)
	if err != nil {
		log.WithError(err).Warn("trade logged but not applied")
		s.recordOrphan(ctx, entry, "warn", err)
		out := failure(applyMessage(req, current, err))
		out.Reference = entry.Reference
		return out, err
	}

	if req.Type != model.TradeTypeTransfer {
		if err := s.positions.Upsert(ctx, next); err != nil {
			log.WithError(err).Error("failed to update position")
			s.recordOrphan(ctx, entry, "error", err)
			out := failure("Failed to update consolidated record")
			out.Reference = entry.Reference
			return out, fmt.Errorf("%w: upsert position: %w", ErrStorage, err)
		}
	}

	out := Outcome{
		Success:   true,
		Message:   successMessage(req, current, next),
		Reference: entry.Reference,
		Position:  next,
		Trade:     entry,
	}
	log.Info(out.Message)
	return out, nil
}

// AddHolding creates a position for shares acquired before tracking started.
// It refuses to overwrite an existing position.
func (s *Service) AddHolding(ctx context.Context, req HoldingRequest) (Outcome, error) {
	req = req.Normalize()
	log := s.log.WithFields(logrus.Fields{
		"op":      "AddHolding",
		"account": req.Account,
		"symbol":  req.StockSymbol,
	})

	if err := req.Validate(); err != nil {
		log.WithError(err).Warn("rejected holding")
		return failure("Invalid holding: " + detail(err)), err
	}

	existing, err := s.positions.Get(ctx, req.Account, req.StockSymbol)
	if err != nil {
		log.WithError(err).Error("failed to read position")
		return failure("Failed to read consolidated record"), fmt.Errorf("%w: get position: %w", ErrStorage, err)
	}
	if existing != nil {
		return failure(fmt.Sprintf("Holding for %s in %s already exists. Use trade entry to add more shares.",
				req.StockSymbol, req.Account)),
			fmt.Errorf("%w: %s in %s", ErrPositionExists, req.StockSymbol, req.Account)
	}

	name := req.StockName
	if name == "" {
		name = req.StockSymbol
	}
	costPerShare := req.BookCost.Div(req.Quantity)
	position := &model.Position{
		Account:              req.Account,
		StockName:            name,
		StockSymbol:          req.StockSymbol,
		Quantity:             req.Quantity,
		AveragePricePerShare: costPerShare.Round(AverageCostPlaces),
		CapitalGainLoss:      decimal.Zero,
		DateOfAcquisition:    req.DateOfAcquisition,
	}

	if err := s.positions.Upsert(ctx, position); err != nil {
		log.WithError(err).Error("failed to add holding")
		return failure("Failed to add existing holding"), fmt.Errorf("%w: upsert position: %w", ErrStorage, err)
	}

	out := Outcome{
		Success: true,
		Message: fmt.Sprintf("Existing holding added successfully. Quantity: %s, Cost per share: $%s",
			req.Quantity.String(), costPerShare.StringFixed(AverageCostPlaces)),
		Position: position,
	}
	log.Info(out.Message)
	return out, nil
}

// recordOrphan persists a trade that made it into the log without a matching position change.
func (s *Service) recordOrphan(ctx context.Context, entry *model.Trade, level string, cause error) {
	if s.exceptions == nil {
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"reference": entry.Reference,
		"account":   entry.Account,
		"symbol":    entry.StockSymbol,
		"type":      entry.TradeType,
		"shares":    entry.SharesTraded.String(),
	})
	exc := &model.Exception{
		Service: "stocktracker",
		Module:  "portfolio",
		Method:  "SubmitTrade",
		Message: cause.Error(),
		Level:   level,
		Context: string(payload),
	}
	if err := s.exceptions.Create(ctx, exc); err != nil {
		s.log.WithError(err).WithField("reference", entry.Reference).Error("failed to persist exception")
	}
}

func failure(message string) Outcome {
	return Outcome{Success: false, Message: message}
}

func validationMessage(req TradeRequest, err error) string {
	if errors.Is(err, ErrUnknownTradeType) {
		return fmt.Sprintf("Unknown trade type: %s. Use B (Buy), S (Sell), or T (Transfer)", req.Type)
	}
	return "Invalid trade: " + detail(err)
}

func applyMessage(req TradeRequest, current *model.Position, err error) string {
	switch {
	case errors.Is(err, ErrNoPosition):
		return fmt.Sprintf("No existing holdings found for %s in %s", req.StockSymbol, req.Account)
	case errors.Is(err, ErrInsufficientShares):
		return fmt.Sprintf("Insufficient shares. You have %s shares, trying to sell %s",
			current.Quantity.String(), req.Shares.String())
	default:
		return fmt.Sprintf("Error processing trade: %v", err)
	}
}

func successMessage(req TradeRequest, current, next *model.Position) string {
	switch req.Type {
	case model.TradeTypeBuy:
		return fmt.Sprintf("Buy trade processed successfully. New quantity: %s, New avg price: %s",
			next.Quantity.String(), next.AveragePricePerShare.StringFixed(AverageCostPlaces))
	case model.TradeTypeSell:
		return fmt.Sprintf("Sell trade processed successfully. Remaining quantity: %s, Trade gain/loss: %s, Total gain/loss: %s",
			next.Quantity.String(),
			TradeGainLoss(req, current.AveragePricePerShare).StringFixed(GainLossPlaces),
			next.CapitalGainLoss.StringFixed(GainLossPlaces))
	default:
		return "Transfer trade recorded successfully (no calculations performed)"
	}
}

// detail strips the error kind prefix, "validation error: x" -> "x".
func detail(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrUnknownTradeType} {
		if trimmed, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
			return trimmed
		}
	}
	return msg
}
