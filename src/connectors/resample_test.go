package connectors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktracker/src/model"
)

func bar(minute int, open, high, low, close, volume int64) model.OHLCV {
	return model.OHLCV{
		Symbol:   "AAPL",
		Datetime: time.Date(2024, 1, 15, 14, minute, 0, 0, time.UTC),
		Open:     decimal.NewFromInt(open),
		High:     decimal.NewFromInt(high),
		Low:      decimal.NewFromInt(low),
		Close:    decimal.NewFromInt(close),
		Volume:   decimal.NewFromInt(volume),
	}
}

func TestResample(t *testing.T) {
	bars := []model.OHLCV{
		bar(30, 100, 101, 99, 100, 10),
		bar(35, 100, 104, 100, 103, 20),
		bar(40, 103, 103, 97, 98, 30),
		bar(45, 98, 99, 96, 99, 5),
	}

	out, err := Resample(bars, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), first.Datetime)
	assert.True(t, decimal.NewFromInt(100).Equal(first.Open))
	assert.True(t, decimal.NewFromInt(104).Equal(first.High))
	assert.True(t, decimal.NewFromInt(97).Equal(first.Low))
	assert.True(t, decimal.NewFromInt(98).Equal(first.Close))
	assert.True(t, decimal.NewFromInt(60).Equal(first.Volume))
	assert.Equal(t, "AAPL", first.Symbol)

	assert.Equal(t, time.Date(2024, 1, 15, 14, 45, 0, 0, time.UTC), out[1].Datetime)
}

func TestResample_Edges(t *testing.T) {
	out, err := Resample(nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Resample(nil, 30*time.Second)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = Resample(nil, 90*time.Second)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
