package ingest

import (
	"context"
	"time"

	"influencer-app/internal/domain"
)

// Throttle gates livestream re-fetches to at most one per influencer
// per operator per calendar month. The granularity is deliberately the
// calendar month, not a rolling window.
type Throttle struct {
	store domain.MetricStore
}

func NewThrottle(store domain.MetricStore) *Throttle {
	return &Throttle{store: store}
}

// LiveFetchDue reports whether a livestream fetch should run now.
// Due when no live observation exists yet, or when the latest one was
// recorded in a different calendar month or year than now.
func (t *Throttle) LiveFetchDue(ctx context.Context, handle, ownerUser string, now time.Time) (bool, error) {
	last, err := t.store.LastLiveObservation(ctx, handle, ownerUser)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	recorded := last.RecordedAt
	return recorded.Month() != now.Month() || recorded.Year() != now.Year(), nil
}
