package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MarketDataBaseURL string        `envconfig:"MARKET_DATA_BASE_URL" default:"https://query2.finance.yahoo.com"`
	MarketDataTimeout time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"15s"`
	RetryAttempts     int           `envconfig:"MARKET_DATA_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay    time.Duration `envconfig:"MARKET_DATA_RETRY_DELAY" default:"500ms"`
	RetryMaxBackoff   time.Duration `envconfig:"MARKET_DATA_RETRY_MAX_BACKOFF" default:"8s"`
	UserAgent         string        `envconfig:"MARKET_DATA_USER_AGENT" default:"stocktracker/1.0"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
