package tablesync

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Dir           string `envconfig:"TABLES_DIR" default:"data"`
	PositionsFile string `envconfig:"POSITIONS_FILE" default:"positions.csv"`
	TradesFile    string `envconfig:"TRADES_FILE" default:"trades.csv"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
