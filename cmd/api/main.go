package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"influencer-app/internal/analytics"
	"influencer-app/internal/auth"
	"influencer-app/internal/config"
	"influencer-app/internal/earnings"
	"influencer-app/internal/ingest"
	"influencer-app/internal/repository"
	"influencer-app/internal/router"
	"influencer-app/internal/source"
	"influencer-app/internal/util"
)

func loggerInitialize(logPath string) (util.TrackerLogger, error) {

	var trackerLogger util.TrackerLogger

	if err := trackerLogger.Init(logPath, "webService.log", util.LOG_LEVEL_INFO); err != nil {
		fmt.Println("Failed to initialize logger:", err)
		return util.TrackerLogger{}, err
	}

	trackerLogger.LogEvent(util.LOG_LEVEL_INFO, "Service started")

	currentTime := time.Now().Format(time.RFC3339)

	fmt.Fprintf(os.Stderr, "\n%s: Influencer tracker started \n", currentTime)

	return trackerLogger, nil
}

func main() {

	cfg := config.Load()

	logger, err := loggerInitialize(cfg.LogPath)
	if err != nil {
		fmt.Println("Error while initializing the logger..", err)
		return
	}

	metricStore := repository.NewSQLiteStore(cfg.DBPath)
	if err := metricStore.Init(); err != nil {
		log.Fatalf("Failed to initialize metric store: %v", err)
	}
	defer metricStore.Close()

	authenticator := auth.NewAuthenticator(cfg.DBPath)
	if err := authenticator.Init(); err != nil {
		log.Fatalf("Failed to initialize authenticator: %v", err)
	}
	defer authenticator.Close()

	if err := authenticator.Seed(context.Background(), auth.DefaultAccounts()); err != nil {
		log.Fatalf("Failed to seed operator accounts: %v", err)
	}

	metricSource := source.NewHTTPSource(cfg.SourceBaseURL)
	estimator := earnings.NewEstimator(earnings.DefaultTiers())

	router.Run(cfg.ListenAddress, router.Deps{
		Store:         metricStore,
		Ingestor:      ingest.NewIngestor(metricStore, metricSource, estimator),
		Analyzer:      analytics.NewAnalyzer(metricStore),
		Authenticator: authenticator,
		Logger:        &logger,
	})
}
