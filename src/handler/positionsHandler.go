package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"stocktracker/src/model"
	"stocktracker/src/portfolio"
	"stocktracker/src/repository"
	"stocktracker/src/utils"
)

type positionSearcher interface {
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
}

type positionGetter interface {
	Get(ctx context.Context, account string, symbol string) (*model.Position, error)
}

type holdingAdder interface {
	AddHolding(ctx context.Context, req portfolio.HoldingRequest) (portfolio.Outcome, error)
}

type positionsResponse struct {
	Positions []model.Position          `json:"positions"`
	Summary   portfolio.PositionSummary `json:"summary"`
}

// ListPositionsHandler returns the dashboard positions, optionally filtered by account and symbol.
func ListPositionsHandler(repo positionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.PositionSearchOptions{
			Account: optionalParam(r, "account"),
		}
		if symbol := optionalParam(r, "symbol"); symbol != nil {
			upper := strings.ToUpper(*symbol)
			options.Symbol = &upper
		}

		positions, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search positions")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if positions == nil {
			positions = []model.Position{}
		}

		writeJSON(w, http.StatusOK, positionsResponse{
			Positions: positions,
			Summary:   portfolio.SummarizePositions(positions),
		})
	}
}

func GetPositionHandler(repo positionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")
		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))

		position, err := repo.Get(r.Context(), account, symbol)
		if err != nil {
			logger.WithError(err).Error("failed to get position")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if position == nil {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, position)
	}
}

type holdingPayload struct {
	Account           string          `json:"account"`
	StockName         string          `json:"stock_name"`
	StockSymbol       string          `json:"stock_symbol"`
	Quantity          decimal.Decimal `json:"quantity"`
	BookCost          decimal.Decimal `json:"book_cost"`
	DateOfAcquisition string          `json:"date_of_acquisition"`
}

// AddHoldingHandler pre-populates a position acquired before tracking started.
func AddHoldingHandler(svc holdingAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload holdingPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid holding payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		req := portfolio.HoldingRequest{
			Account:     payload.Account,
			StockName:   payload.StockName,
			StockSymbol: payload.StockSymbol,
			Quantity:    payload.Quantity,
			BookCost:    payload.BookCost,
		}
		if payload.DateOfAcquisition != "" {
			date, err := utils.ParseDate(payload.DateOfAcquisition)
			if err != nil {
				http.Error(w, "invalid date_of_acquisition", http.StatusBadRequest)
				return
			}
			req.DateOfAcquisition = date
		}

		out, err := svc.AddHolding(r.Context(), req)
		status := statusFor(err)
		if err == nil {
			status = http.StatusCreated
		}
		writeJSON(w, status, out)
	}
}
