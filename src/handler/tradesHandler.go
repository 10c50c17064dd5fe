package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"stocktracker/src/model"
	"stocktracker/src/portfolio"
	"stocktracker/src/repository"
	"stocktracker/src/utils"
)

type tradeSubmitter interface {
	SubmitTrade(ctx context.Context, req portfolio.TradeRequest) (portfolio.Outcome, error)
}

type tradeSearcher interface {
	Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.Trade, error)
}

type tradePayload struct {
	Account     string          `json:"account"`
	StockName   string          `json:"stock_name"`
	StockSymbol string          `json:"stock_symbol"`
	Date        string          `json:"date"`
	Type        string          `json:"trade_type"`
	Shares      decimal.Decimal `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	Commission  decimal.Decimal `json:"commission"`
}

// SubmitTradeHandler records a trade and returns the outcome shown on the trade entry page.
// The response body is the outcome for every status, so the caller always has a message.
func SubmitTradeHandler(svc tradeSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tradePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		req := portfolio.TradeRequest{
			Account:     payload.Account,
			StockName:   payload.StockName,
			StockSymbol: payload.StockSymbol,
			Type:        model.TradeType(payload.Type),
			Shares:      payload.Shares,
			Price:       payload.Price,
			Commission:  payload.Commission,
		}
		if payload.Date != "" {
			date, err := utils.ParseDate(payload.Date)
			if err != nil {
				http.Error(w, "invalid date", http.StatusBadRequest)
				return
			}
			req.Date = date
		}

		out, err := svc.SubmitTrade(r.Context(), req)
		status := statusFor(err)
		if err == nil {
			status = http.StatusCreated
		}
		writeJSON(w, status, out)
	}
}

const maxTradePageSize = 500

type tradesResponse struct {
	Trades   []model.Trade          `json:"trades"`
	Summary  portfolio.TradeSummary `json:"summary"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// SearchTradesHandler lists the trade history, newest first.
// Supports pagination and filters (account, symbol, type).
func SearchTradesHandler(repo tradeSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.TradeSearchOptions{
			Account: optionalParam(r, "account"),
		}
		if symbol := optionalParam(r, "symbol"); symbol != nil {
			upper := strings.ToUpper(*symbol)
			options.Symbol = &upper
		}
		if typeParam := r.URL.Query().Get("type"); typeParam != "" {
			tradeType, ok := model.ParseTradeType(typeParam)
			if !ok {
				http.Error(w, "invalid type", http.StatusBadRequest)
				return
			}
			options.Type = &tradeType
		}

		page, ok := positiveIntParam(r, "page", 1)
		if !ok {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		pageSize, ok := positiveIntParam(r, "pageSize", 50)
		if !ok || pageSize > maxTradePageSize {
			http.Error(w, "invalid pageSize", http.StatusBadRequest)
			return
		}
		if page-1 > math.MaxInt32/pageSize {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		options.Limit = pageSize
		options.Offset = (page - 1) * pageSize

		trades, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if trades == nil {
			trades = []model.Trade{}
		}

		writeJSON(w, http.StatusOK, tradesResponse{
			Trades:   trades,
			Summary:  portfolio.SummarizeTrades(trades),
			Page:     page,
			PageSize: pageSize,
		})
	}
}
