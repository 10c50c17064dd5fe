package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"stocktracker/src/auth"
	"stocktracker/src/connectors"
	"stocktracker/src/database"
	"stocktracker/src/portfolio"
	"stocktracker/src/repository"
	"stocktracker/src/server"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	db, err := database.Open(database.GetConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	positions := repository.NewPositionRepository(db)
	trades := repository.NewTradeRepository(db)
	service := portfolio.NewService(
		logger.WithField("service", "portfolio"),
		positions,
		trades,
		repository.NewExceptionRepository(db),
	)

	config := server.GetConfig()
	router := server.NewRouter(config, server.Dependencies{
		Positions:    positions,
		Trades:       trades,
		Service:      service,
		Market:       connectors.NewMarketDataClient(connectors.GetConfig()),
		APITokenHash: auth.GetConfig().APITokenHash,
	})

	server.StartServer(config, router)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}
