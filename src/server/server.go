package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"stocktracker/src/auth"
	"stocktracker/src/connectors"
	"stocktracker/src/handler"
	"stocktracker/src/portfolio"
	"stocktracker/src/repository"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Positions    *repository.PositionRepository
	Trades       *repository.TradeRepository
	Service      *portfolio.Service
	Market       *connectors.MarketDataClient
	APITokenHash string
}

func NewRouter(config *Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/positions", handler.ListPositionsHandler(deps.Positions))
		r.Get("/positions/{account}/{symbol}", handler.GetPositionHandler(deps.Positions))
		r.Get("/trades", handler.SearchTradesHandler(deps.Trades))
		r.Get("/accounts", handler.AccountsHandler(deps.Positions))
		r.Get("/symbols", handler.SymbolsHandler(deps.Positions))
		r.Get("/market/{symbol}", handler.MarketSeriesHandler(deps.Market))

		// Write routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireToken(deps.APITokenHash))
			r.Post("/positions", handler.AddHoldingHandler(deps.Service))
			r.Post("/trades", handler.SubmitTradeHandler(deps.Service))
		})
	})

	r.Get("/ws/quotes", handler.QuoteStreamHandler(deps.Market, config.QuoteStreamInterval))

	return r
}

// StartServer serves handler until SIGINT or SIGTERM, then shuts down gracefully.
func StartServer(config *Config, handler http.Handler) {
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
