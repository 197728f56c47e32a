package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"influencer-app/internal/domain"
)

func newTestStore(t *testing.T, path string) *SQLiteStore {
	os.Remove(path)
	t.Cleanup(func() { os.Remove(path) })

	store := NewSQLiteStore(path)
	assert.NoError(t, store.Init(), "Init should not return an error")
	t.Cleanup(func() { store.Close() })
	return store
}

func observation(owner, handle string, mt domain.MetricType, value int64, at time.Time) domain.MetricObservation {
	return domain.MetricObservation{
		OwnerUser:        owner,
		InfluencerHandle: handle,
		MetricType:       mt,
		Value:            decimal.NewFromInt(value),
		RecordedAt:       at,
		CollectionMethod: domain.MethodScraped,
	}
}

func TestSQLiteStore_Init(t *testing.T) {
	newTestStore(t, "./test_tracker_init.db")
}

func TestSQLiteStore_ObservationRoundTrip(t *testing.T) {
	store := newTestStore(t, "./test_tracker_roundtrip.db")
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0).UTC()

	// Interleave handles on write; reads must come back ordered by
	// (handle, recorded_at).
	stored := []domain.MetricObservation{
		observation("admin", "@bob", domain.MetricFollowers, 500, now.Add(-2*time.Hour)),
		observation("admin", "@alice", domain.MetricFollowers, 1000, now.Add(-3*time.Hour)),
		observation("admin", "@bob", domain.MetricFollowers, 600, now.Add(-1*time.Hour)),
		observation("admin", "@alice", domain.MetricLikes, 50, now.Add(-2*time.Hour)),
		observation("admin", "@alice", domain.MetricFollowers, 1100, now),
	}
	for _, obs := range stored {
		assert.NoError(t, store.AppendObservation(ctx, obs))
	}

	retrieved, err := store.QueryObservations(ctx, "admin", []string{"@alice", "@bob"}, now.Add(-4*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 5, "Appending N observations should read back N rows")

	for i := 1; i < len(retrieved); i++ {
		prev, cur := retrieved[i-1], retrieved[i]
		if prev.InfluencerHandle == cur.InfluencerHandle {
			assert.False(t, cur.RecordedAt.Before(prev.RecordedAt), "Rows must be ordered by recorded_at within a handle")
		} else {
			assert.Less(t, prev.InfluencerHandle, cur.InfluencerHandle, "Rows must be grouped by handle in ascending order")
		}
	}

	assert.Equal(t, "@alice", retrieved[0].InfluencerHandle)
	assert.True(t, retrieved[0].Value.Equal(decimal.NewFromInt(1000)), "First alice row should be the oldest")
	assert.Equal(t, domain.MethodScraped, retrieved[0].CollectionMethod)
	assert.Nil(t, retrieved[0].Live, "Rows without live counters should scan a nil live snapshot")
}

func TestSQLiteStore_QueryObservations_Bounds(t *testing.T) {
	store := newTestStore(t, "./test_tracker_bounds.db")
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0).UTC()
	for i := 0; i < 5; i++ {
		obs := observation("admin", "@alice", domain.MetricViews, int64(i*100), now.Add(time.Duration(-i)*time.Hour))
		assert.NoError(t, store.AppendObservation(ctx, obs))
	}

	// Inclusive on both ends.
	retrieved, err := store.QueryObservations(ctx, "admin", []string{"@alice"}, now.Add(-2*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 3)

	// An empty handle set means "nothing", never "all".
	retrieved, err = store.QueryObservations(ctx, "admin", nil, now.Add(-24*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 0)

	// Another operator's rows are invisible.
	retrieved, err = store.QueryObservations(ctx, "dev", []string{"@alice"}, now.Add(-24*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 0)
}

func TestSQLiteStore_ListInfluencers(t *testing.T) {
	store := newTestStore(t, "./test_tracker_list.db")
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0).UTC()
	assert.NoError(t, store.AppendObservation(ctx, observation("admin", "@bob", domain.MetricFollowers, 1, now)))
	assert.NoError(t, store.AppendObservation(ctx, observation("admin", "@alice", domain.MetricFollowers, 2, now)))
	assert.NoError(t, store.AppendObservation(ctx, observation("admin", "@alice", domain.MetricLikes, 3, now)))
	assert.NoError(t, store.AppendObservation(ctx, observation("dev", "@carol", domain.MetricFollowers, 4, now)))

	handles, err := store.ListInfluencers(ctx, "admin")
	assert.NoError(t, err)
	assert.Equal(t, []string{"@alice", "@bob"}, handles, "Handles should be distinct and stably ordered")

	again, err := store.ListInfluencers(ctx, "admin")
	assert.NoError(t, err)
	assert.Equal(t, handles, again, "Order must be stable across calls absent new writes")
}

func TestSQLiteStore_LastLiveObservation(t *testing.T) {
	store := newTestStore(t, "./test_tracker_live.db")
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0).UTC()

	last, err := store.LastLiveObservation(ctx, "@alice", "admin")
	assert.NoError(t, err)
	assert.Nil(t, last, "No live rows yet")

	plain := observation("admin", "@alice", domain.MetricFollowers, 1000, now.Add(-2*time.Hour))
	assert.NoError(t, store.AppendObservation(ctx, plain))

	older := observation("admin", "@alice", domain.MetricFollowers, 900, now.Add(-1*time.Hour))
	older.Live = &domain.LiveSnapshot{Likes: 10, Views: 200}
	assert.NoError(t, store.AppendObservation(ctx, older))

	newest := observation("admin", "@alice", domain.MetricFollowers, 950, now)
	newest.Live = &domain.LiveSnapshot{Likes: 30, Views: 400}
	assert.NoError(t, store.AppendObservation(ctx, newest))

	last, err = store.LastLiveObservation(ctx, "@alice", "admin")
	assert.NoError(t, err)
	assert.NotNil(t, last)
	assert.Equal(t, now, last.RecordedAt, "Should return the most recent live-carrying row")
	assert.NotNil(t, last.Live)
	assert.Equal(t, int64(400), last.Live.Views)

	// Live rows of another operator do not count.
	last, err = store.LastLiveObservation(ctx, "@alice", "dev")
	assert.NoError(t, err)
	assert.Nil(t, last)
}

func TestSQLiteStore_Products(t *testing.T) {
	store := newTestStore(t, "./test_tracker_products.db")
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0).UTC()

	products := []domain.EarnedProduct{
		{InfluencerHandle: "@alice", ProductName: "ring light", EstimatedValue: decimal.NewFromFloat(149.90), RecordedAt: now.Add(-2 * time.Hour)},
		{InfluencerHandle: "@alice", ProductName: "microphone", EstimatedValue: decimal.NewFromFloat(89.50), RecordedAt: now},
		{InfluencerHandle: "@bob", ProductName: "tripod", EstimatedValue: decimal.NewFromInt(60), RecordedAt: now},
	}
	for _, p := range products {
		assert.NoError(t, store.AppendProduct(ctx, p))
	}

	retrieved, err := store.QueryProducts(ctx, []string{"@alice"}, now.Add(-24*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 2)
	assert.Equal(t, "ring light", retrieved[0].ProductName)
	assert.True(t, retrieved[0].EstimatedValue.Equal(decimal.NewFromFloat(149.90)))

	retrieved, err = store.QueryProducts(ctx, nil, now.Add(-24*time.Hour), now)
	assert.NoError(t, err)
	assert.Len(t, retrieved, 0, "Empty handle set yields empty result")
}

func TestSQLiteStore_QueryObservations_Cancelled(t *testing.T) {
	store := newTestStore(t, "./test_tracker_cancel.db")

	now := time.Unix(time.Now().Unix(), 0).UTC()
	assert.NoError(t, store.AppendObservation(context.Background(),
		observation("admin", "@alice", domain.MetricFollowers, 1, now)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.QueryObservations(ctx, "admin", []string{"@alice"}, now.Add(-time.Hour), now)
	assert.Error(t, err, "QueryObservations should return an error when context is cancelled")

	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "query_observations", storeErr.Op)
}
