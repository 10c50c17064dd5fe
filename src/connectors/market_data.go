// Market data client for the charting page, Yahoo Finance v8 chart API over resty.
package connectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"stocktracker/src/model"
)

var (
	ErrInvalidPeriod  = errors.New("invalid period. allowed: 1d,5d,1mo,3mo,6mo,1y,2y,5y,max")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNoMarketData   = errors.New("no market data")
)

// periodIntervals maps a chart period to the bar interval requested for it.
var periodIntervals = map[string]string{
	"1d":  "5m",
	"5d":  "15m",
	"1mo": "1d",
	"3mo": "1d",
	"6mo": "1d",
	"1y":  "1wk",
	"2y":  "1wk",
	"5y":  "1mo",
	"max": "1mo",
}

// IntervalForPeriod returns the bar interval used for period.
func IntervalForPeriod(period string) (string, error) {
	interval, ok := periodIntervals[strings.ToLower(strings.TrimSpace(period))]
	if !ok {
		return "", ErrInvalidPeriod
	}
	return interval, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// MarketDataClient fetches price series and quotes for ticker symbols.
type MarketDataClient struct {
	http *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	return code == 408 || code == 429 || (code >= 500 && code <= 599)
}

func NewMarketDataClient(config Config) *MarketDataClient {
	baseURL := config.MarketDataBaseURL
	if baseURL == "" {
		baseURL = "https://query2.finance.yahoo.com"
		logger.Warnf("No market data base URL provided, using default: %s", baseURL)
	}

	retryCount := config.RetryAttempts - 1
	if retryCount < 0 {
		retryCount = 0
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.MarketDataTimeout).
		SetHeader("User-Agent", config.UserAgent).
		SetRetryCount(retryCount).
		SetRetryWaitTime(config.RetryBaseDelay).
		SetRetryMaxWaitTime(config.RetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &MarketDataClient{http: httpClient}
}

func (c *MarketDataClient) chart(ctx context.Context, symbol, rangeParam, interval string) (*chartResponse, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrSymbolNotFound
	}

	var body chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    rangeParam,
			"interval": interval,
		}).
		SetResult(&body).
		SetError(&body).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("market data request for %s: %w", symbol, err)
	}

	if body.Chart.Error != nil {
		if resp.StatusCode() == 404 || strings.EqualFold(body.Chart.Error.Code, "Not Found") {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, fmt.Errorf("market data error for %s: %s %s", symbol, body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("market data http %d for %s", resp.StatusCode(), symbol)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoMarketData, symbol)
	}
	return &body, nil
}

// FetchSeries returns the OHLCV bars of symbol over period, oldest first.
// Bars the upstream reports with missing values are skipped.
func (c *MarketDataClient) FetchSeries(ctx context.Context, symbol, period string) ([]model.OHLCV, error) {
	interval, err := IntervalForPeriod(period)
	if err != nil {
		return nil, err
	}

	body, err := c.chart(ctx, symbol, strings.ToLower(strings.TrimSpace(period)), interval)
	if err != nil {
		return nil, err
	}

	result := body.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []model.OHLCV{}, nil
	}
	q := result.Indicators.Quote[0]

	series := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, okO := at(q.Open, i)
		high, okH := at(q.High, i)
		low, okL := at(q.Low, i)
		closePrice, okC := at(q.Close, i)
		if !okO || !okH || !okL || !okC {
			continue
		}
		volume, _ := at(q.Volume, i)

		series = append(series, model.OHLCV{
			Datetime: time.Unix(ts, 0).UTC(),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
			Symbol:   result.Meta.Symbol,
		})
	}

	logger.WithFields(map[string]interface{}{
		"connector": "MarketDataClient",
		"symbol":    symbol,
		"period":    period,
		"interval":  interval,
		"bars":      len(series),
	}).Debug("Fetched market data series")

	return series, nil
}

// LatestQuote returns the regular market price of symbol.
func (c *MarketDataClient) LatestQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	body, err := c.chart(ctx, symbol, "1d", "1m")
	if err != nil {
		return nil, err
	}

	meta := body.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoMarketData, symbol)
	}

	asOf := time.Unix(meta.RegularMarketTime, 0).UTC()
	if meta.RegularMarketTime == 0 {
		asOf = time.Now().UTC()
	}

	return &model.Quote{
		Symbol:   meta.Symbol,
		Price:    decimal.NewFromFloat(meta.RegularMarketPrice),
		Currency: meta.Currency,
		AsOf:     asOf,
	}, nil
}

func at(values []*float64, i int) (decimal.Decimal, bool) {
	if i >= len(values) || values[i] == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*values[i]), true
}
