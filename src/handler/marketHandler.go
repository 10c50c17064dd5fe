package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"stocktracker/src/connectors"
	"stocktracker/src/model"
)

type seriesFetcher interface {
	FetchSeries(ctx context.Context, symbol, period string) ([]model.OHLCV, error)
}

type quoteFetcher interface {
	LatestQuote(ctx context.Context, symbol string) (*model.Quote, error)
}

func marketStatus(err error) int {
	switch {
	case errors.Is(err, connectors.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, connectors.ErrSymbolNotFound), errors.Is(err, connectors.ErrNoMarketData):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// MarketSeriesHandler returns the OHLCV bars of a symbol for the charting page.
// period defaults to 1y; resample (e.g. 30m, 1h) merges bars into wider buckets.
func MarketSeriesHandler(client seriesFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		period := r.URL.Query().Get("period")
		if period == "" {
			period = "1y"
		}
		if _, err := connectors.IntervalForPeriod(period); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var resample time.Duration
		if raw := r.URL.Query().Get("resample"); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil {
				http.Error(w, "invalid resample", http.StatusBadRequest)
				return
			}
			resample = parsed
		}

		bars, err := client.FetchSeries(r.Context(), symbol, period)
		if err != nil {
			logger.WithError(err).WithFields(map[string]interface{}{
				"symbol": symbol,
				"period": period,
			}).Warn("failed to fetch market series")
			http.Error(w, err.Error(), marketStatus(err))
			return
		}

		if resample > 0 {
			if bars, err = connectors.Resample(bars, resample); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		writeJSON(w, http.StatusOK, bars)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type quoteMessage struct {
	Quote *model.Quote `json:"quote,omitempty"`
	Error string       `json:"error,omitempty"`
}

// QuoteStreamHandler upgrades to a websocket and pushes the latest quote of symbol
// every interval until the client goes away.
func QuoteStreamHandler(client quoteFetcher, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
		if symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("websocket upgrade failed")
			return
		}
		defer conn.Close()

		log := logger.WithField("symbol", symbol)
		log.Debug("quote stream opened")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The client never sends data; reading detects the close frame.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			var msg quoteMessage
			quote, err := client.LatestQuote(ctx, symbol)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("failed to fetch quote")
				msg.Error = err.Error()
			} else {
				msg.Quote = quote
			}

			if err := conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				log.WithError(err).Debug("quote stream closed")
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("quote stream closed")
				return
			}

			select {
			case <-ctx.Done():
				log.Debug("quote stream closed by client")
				return
			case <-ticker.C:
			}
		}
	}
}
