package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"influencer-app/internal/config"
	"influencer-app/internal/domain"
	"influencer-app/internal/earnings"
	"influencer-app/internal/repository"
	"influencer-app/internal/util"
)

const seedUser = "admin"

var seedHandles = []string{"@alice", "@simoneses"}

func main() {

	cfg := config.Load()

	if err := util.CheckAndCreateFolder("../db"); err != nil {
		log.Fatalf("Failed to create db folder: %v", err)
	}

	sqliteStore := repository.NewSQLiteStore(cfg.DBPath)
	if err := sqliteStore.Init(); err != nil {
		log.Fatalf("Failed to initialize SQLite store for seeding: %v", err)
	}
	defer sqliteStore.Close()

	generateAndSeed(sqliteStore)
}

// generateAndSeed writes one synthetic snapshot per day for the past
// 30 days so the analysis endpoints have history to work with.
func generateAndSeed(s domain.MetricStore) {
	rand.Seed(time.Now().UnixNano())

	estimator := earnings.NewEstimator(earnings.DefaultTiers())

	end := time.Now().UTC().Truncate(time.Second)
	start := end.AddDate(0, 0, -30)

	log.Printf("Seeding history from %s to %s...", start.Format(time.RFC3339), end.Format(time.RFC3339))

	ctx := context.Background()

	for _, handle := range seedHandles {
		followers := int64(50_000 + rand.Intn(200_000))
		likes := int64(10_000 + rand.Intn(100_000))

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			followers += int64(rand.Intn(2_000))
			likes += int64(rand.Intn(5_000))
			views := likes / 2

			estimated, err := estimator.Estimate(views)
			if err != nil {
				log.Printf("Error estimating earnings for %s: %v", handle, err)
				continue
			}

			rows := []domain.MetricObservation{
				{MetricType: domain.MetricFollowers, Value: decimal.NewFromInt(followers)},
				{MetricType: domain.MetricLikes, Value: decimal.NewFromInt(likes)},
				{MetricType: domain.MetricViews, Value: decimal.NewFromInt(views)},
				{MetricType: domain.MetricEarnings, Value: estimated},
			}

			for _, obs := range rows {
				obs.OwnerUser = seedUser
				obs.InfluencerHandle = handle
				obs.RecordedAt = day
				obs.CollectionMethod = domain.MethodManual

				if err := s.AppendObservation(ctx, obs); err != nil {
					log.Printf("Error inserting data for %s at %s: %v", handle, day, err)
				}
			}
		}
	}

	log.Println("Seeding complete.")
}
