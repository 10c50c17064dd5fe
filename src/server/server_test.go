package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stocktracker/src/connectors"
	"stocktracker/src/model"
	"stocktracker/src/portfolio"
	"stocktracker/src/repository"
)

func newTestRouter(t *testing.T, tokenHash string) http.Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Position{}, &model.Trade{}, &model.Exception{}))

	positions := repository.NewPositionRepository(db)
	trades := repository.NewTradeRepository(db)
	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewRouter(&Config{QuoteStreamInterval: time.Second}, Dependencies{
		Positions:    positions,
		Trades:       trades,
		Service:      portfolio.NewService(logrus.NewEntry(log), positions, trades, repository.NewExceptionRepository(db)),
		Market:       connectors.NewMarketDataClient(connectors.Config{MarketDataBaseURL: "http://127.0.0.1:0", MarketDataTimeout: time.Second, RetryAttempts: 1}),
		APITokenHash: tokenHash,
	})
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthcheck(t *testing.T) {
	rr := do(t, newTestRouter(t, ""), http.MethodGet, "/healthcheck", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestTradeFlow(t *testing.T) {
	h := newTestRouter(t, "")

	rr := do(t, h, http.MethodPost, "/api/trades",
		`{"account":"ISA","stock_name":"Apple","stock_symbol":"aapl","date":"2024-01-15","trade_type":"B","shares":10,"price":100,"commission":5}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/trades",
		`{"account":"ISA","stock_symbol":"AAPL","date":"2024-02-01","trade_type":"B","shares":10,"price":110,"commission":5}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "New quantity: 20, New avg price: 105.5000")

	rr = do(t, h, http.MethodPost, "/api/trades",
		`{"account":"ISA","stock_symbol":"AAPL","date":"2024-03-01","trade_type":"S","shares":50,"price":120,"commission":5}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Insufficient shares. You have 20 shares, trying to sell 50")

	rr = do(t, h, http.MethodPost, "/api/trades",
		`{"account":"ISA","stock_symbol":"AAPL","date":"2024-03-02","trade_type":"S","shares":5,"price":120,"commission":2}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/api/positions/ISA/AAPL", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var position model.Position
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &position))
	assert.True(t, decimal.NewFromInt(15).Equal(position.Quantity))
	assert.True(t, decimal.RequireFromString("105.5").Equal(position.AveragePricePerShare))
	assert.True(t, decimal.RequireFromString("70.5").Equal(position.CapitalGainLoss))

	// the rejected sell stays in the history
	rr = do(t, h, http.MethodGet, "/api/trades?symbol=AAPL", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_trades":4`)

	rr = do(t, h, http.MethodGet, "/api/accounts", "", "")
	assert.JSONEq(t, `["ISA"]`, rr.Body.String())
}

func TestWriteRoutesRequireToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("t0ken"), bcrypt.MinCost)
	require.NoError(t, err)
	h := newTestRouter(t, string(hash))

	body := `{"account":"GIA","stock_symbol":"VWRL","quantity":10,"book_cost":1000}`
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/api/positions", body, "").Code)
	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/positions", body, "t0ken").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/api/positions", body, "t0ken").Code)

	// reads stay public
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/positions", "", "").Code)
}
