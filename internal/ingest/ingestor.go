package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
	"influencer-app/internal/earnings"
)

// SnapshotSummary reports what one ingestion run fetched and stored.
type SnapshotSummary struct {
	ID          uuid.UUID            `json:"id"`
	Handle      string               `json:"handle"`
	RecordedAt  time.Time            `json:"recorded_at"`
	Followers   int64                `json:"followers"`
	Likes       int64                `json:"likes"`
	Views       int64                `json:"views"`
	Earnings    decimal.Decimal      `json:"earnings"`
	Live        *domain.LiveSnapshot `json:"live,omitempty"`
	LiveChecked bool                 `json:"live_checked"`
}

// Ingestor runs one fetch-and-record cycle: profile fetch, earnings
// estimate, throttled live fetch, then one observation row per metric.
type Ingestor struct {
	store     domain.MetricStore
	source    domain.MetricSource
	estimator *earnings.Estimator
	throttle  *Throttle
	now       func() time.Time
}

func NewIngestor(store domain.MetricStore, source domain.MetricSource, estimator *earnings.Estimator) *Ingestor {
	return &Ingestor{
		store:     store,
		source:    source,
		estimator: estimator,
		throttle:  NewThrottle(store),
		now:       time.Now,
	}
}

func (i *Ingestor) Ingest(ctx context.Context, ownerUser, handle string) (*SnapshotSummary, error) {
	if handle == "" || ownerUser == "" {
		return nil, domain.ErrInvalidInput
	}

	profile, err := i.source.FetchProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	estimated, err := i.estimator.Estimate(profile.Views)
	if err != nil {
		return nil, err
	}

	now := i.now().UTC().Truncate(time.Second)

	summary := &SnapshotSummary{
		ID:         uuid.New(),
		Handle:     handle,
		RecordedAt: now,
		Followers:  profile.Followers,
		Likes:      profile.Likes,
		Views:      profile.Views,
		Earnings:   estimated,
	}

	due, err := i.throttle.LiveFetchDue(ctx, handle, ownerUser, now)
	if err != nil {
		return nil, err
	}
	if due {
		live, err := i.source.FetchLive(ctx, handle)
		if err != nil {
			return nil, err
		}
		summary.Live = &live
		summary.LiveChecked = true
	}

	rows := []domain.MetricObservation{
		{
			OwnerUser:        ownerUser,
			InfluencerHandle: handle,
			MetricType:       domain.MetricFollowers,
			Value:            decimal.NewFromInt(profile.Followers),
			RecordedAt:       now,
			CollectionMethod: domain.MethodScraped,
			// Live counters ride on the followers row in storage.
			Live: summary.Live,
		},
		{
			OwnerUser:        ownerUser,
			InfluencerHandle: handle,
			MetricType:       domain.MetricLikes,
			Value:            decimal.NewFromInt(profile.Likes),
			RecordedAt:       now,
			CollectionMethod: domain.MethodScraped,
		},
		{
			OwnerUser:        ownerUser,
			InfluencerHandle: handle,
			MetricType:       domain.MetricViews,
			Value:            decimal.NewFromInt(profile.Views),
			RecordedAt:       now,
			CollectionMethod: domain.MethodScraped,
		},
		{
			OwnerUser:        ownerUser,
			InfluencerHandle: handle,
			MetricType:       domain.MetricEarnings,
			Value:            estimated,
			RecordedAt:       now,
			CollectionMethod: domain.MethodEstimate,
		},
	}

	// Every append is attempted even if an earlier one fails. There is
	// no rollback: rows already written are valid history, and a re-run
	// only adds newer timestamped rows.
	written := 0
	var appendErr error
	for _, obs := range rows {
		if err := i.store.AppendObservation(ctx, obs); err != nil {
			if appendErr == nil {
				appendErr = err
			}
			continue
		}
		written++
	}
	if appendErr != nil {
		return nil, &domain.PartialWriteError{Written: written, Err: appendErr}
	}

	return summary, nil
}
