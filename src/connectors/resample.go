package connectors

import (
	"errors"
	"time"

	"stocktracker/src/model"
)

var ErrInvalidInterval = errors.New("invalid resample interval. must be a whole number of minutes")

func bucketStart(t time.Time, interval time.Duration) time.Time {
	// Align to wall-clock boundaries: 12:07 with 5m => 12:05
	secs := t.Unix()
	step := int64(interval.Seconds())
	return time.Unix((secs/step)*step, 0).UTC()
}

// Resample merges consecutive bars into interval-wide buckets. Bars must be
// ascending by time; each output bar is stamped with its bucket open time.
func Resample(bars []model.OHLCV, interval time.Duration) ([]model.OHLCV, error) {
	if interval < time.Minute || interval%time.Minute != 0 {
		return nil, ErrInvalidInterval
	}

	if len(bars) == 0 {
		return []model.OHLCV{}, nil
	}

	out := make([]model.OHLCV, 0, len(bars))

	var cur model.OHLCV
	var curBucket time.Time
	hasCur := false

	for _, bar := range bars {
		b := bucketStart(bar.Datetime, interval)

		if !hasCur || !b.Equal(curBucket) {
			if hasCur {
				out = append(out, cur)
			}
			curBucket = b
			hasCur = true
			cur = bar
			cur.Datetime = curBucket
			continue
		}

		if bar.High.GreaterThan(cur.High) {
			cur.High = bar.High
		}
		if bar.Low.LessThan(cur.Low) {
			cur.Low = bar.Low
		}
		cur.Close = bar.Close
		cur.Volume = cur.Volume.Add(bar.Volume)
	}

	if hasCur {
		out = append(out, cur)
	}

	return out, nil
}
