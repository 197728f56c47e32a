package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"influencer-app/internal/domain"
)

type mockStore struct {
	rows []domain.MetricObservation
}

func (m *mockStore) Init() error { return nil }

func (m *mockStore) AppendObservation(ctx context.Context, obs domain.MetricObservation) error {
	m.rows = append(m.rows, obs)
	return nil
}

func (m *mockStore) AppendProduct(ctx context.Context, p domain.EarnedProduct) error { return nil }

func (m *mockStore) ListInfluencers(ctx context.Context, ownerUser string) ([]string, error) {
	return nil, nil
}

func (m *mockStore) QueryObservations(ctx context.Context, ownerUser string, handles []string, from, to time.Time) ([]domain.MetricObservation, error) {
	if len(handles) == 0 {
		return []domain.MetricObservation{}, nil
	}
	wanted := make(map[string]bool, len(handles))
	for _, h := range handles {
		wanted[h] = true
	}
	out := []domain.MetricObservation{}
	for _, obs := range m.rows {
		if obs.OwnerUser == ownerUser && wanted[obs.InfluencerHandle] &&
			!obs.RecordedAt.Before(from) && !obs.RecordedAt.After(to) {
			out = append(out, obs)
		}
	}
	return out, nil
}

func (m *mockStore) QueryProducts(ctx context.Context, handles []string, from, to time.Time) ([]domain.EarnedProduct, error) {
	return nil, nil
}

func (m *mockStore) LastLiveObservation(ctx context.Context, handle, ownerUser string) (*domain.MetricObservation, error) {
	return nil, nil
}

func (m *mockStore) Close() error { return nil }

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func row(handle string, mt domain.MetricType, value int64, day int) domain.MetricObservation {
	return domain.MetricObservation{
		OwnerUser:        "admin",
		InfluencerHandle: handle,
		MetricType:       mt,
		Value:            decimal.NewFromInt(value),
		RecordedAt:       baseTime.AddDate(0, 0, day),
		CollectionMethod: domain.MethodScraped,
	}
}

func fullRange() (time.Time, time.Time) {
	return baseTime.AddDate(0, 0, -1), baseTime.AddDate(0, 1, 0)
}

func TestAnalyze_EmptyInputs(t *testing.T) {
	analyzer := NewAnalyzer(&mockStore{})
	ctx := context.Background()
	from, to := fullRange()

	// No handles requested: valid empty result, not an error.
	result, err := analyzer.Analyze(ctx, "admin", nil, from, to, ScaleUnit)
	assert.NoError(t, err)
	assert.Empty(t, result.Growth)
	assert.Empty(t, result.Series)
	assert.Empty(t, result.Engagement)
	assert.Equal(t, 0, result.RowCount)

	// Handles requested but no rows in range: same shape.
	result, err = analyzer.Analyze(ctx, "admin", []string{"@alice"}, from, to, ScaleUnit)
	assert.NoError(t, err)
	assert.Empty(t, result.Growth)
	assert.Equal(t, 0, result.RowCount)
}

func TestAnalyze_GrowthAndZeroBaseline(t *testing.T) {
	store := &mockStore{rows: []domain.MetricObservation{
		row("@alice", domain.MetricFollowers, 1000, 0),
		row("@alice", domain.MetricFollowers, 1500, 1),
		row("@alice", domain.MetricLikes, 0, 0),
		row("@alice", domain.MetricLikes, 500, 1),
	}}
	analyzer := NewAnalyzer(store)
	from, to := fullRange()

	result, err := analyzer.Analyze(context.Background(), "admin", []string{"@alice"}, from, to, ScaleUnit)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.RowCount)
	assert.Len(t, result.Growth, 1)

	metrics := result.Growth[0].Metrics

	followers := metrics[domain.MetricFollowers]
	assert.True(t, followers.Delta.Equal(decimal.NewFromInt(500)))
	assert.InDelta(t, 50.0, followers.Percent, 1e-9)

	// Zero baseline: delta is real, percent is 0 by policy.
	likes := metrics[domain.MetricLikes]
	assert.True(t, likes.Delta.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 0.0, likes.Percent)

	// Absent metric types still appear, zero-valued.
	views := metrics[domain.MetricViews]
	assert.True(t, views.Delta.IsZero())
	assert.Equal(t, 0.0, views.Percent)
	earningsGrowth := metrics[domain.MetricEarnings]
	assert.True(t, earningsGrowth.Delta.IsZero())
}

func TestAnalyze_SinglePointNoChange(t *testing.T) {
	store := &mockStore{rows: []domain.MetricObservation{
		row("@alice", domain.MetricFollowers, 1_200_000, 0),
		row("@alice", domain.MetricLikes, 50_000, 0),
		row("@alice", domain.MetricViews, 50_000, 0),
		row("@alice", domain.MetricEarnings, 10, 0),
	}}
	analyzer := NewAnalyzer(store)
	from, to := fullRange()

	result, err := analyzer.Analyze(context.Background(), "admin", []string{"@alice"}, from, to, ScaleUnit)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.RowCount)

	for _, mt := range domain.MetricTypes {
		m := result.Growth[0].Metrics[mt]
		assert.True(t, m.Delta.IsZero(), "single data point yields no change for %s", mt)
		assert.Equal(t, 0.0, m.Percent)
	}
}

func TestAnalyze_RescalingMatchesUnitDividedByFactor(t *testing.T) {
	store := &mockStore{rows: []domain.MetricObservation{
		row("@alice", domain.MetricFollowers, 1_000_000, 0),
		row("@alice", domain.MetricFollowers, 1_250_000, 1),
		row("@bob", domain.MetricFollowers, 730, 0),
		row("@bob", domain.MetricFollowers, 980, 1),
	}}
	analyzer := NewAnalyzer(store)
	ctx := context.Background()
	from, to := fullRange()
	handles := []string{"@alice", "@bob"}

	unit, err := analyzer.Analyze(ctx, "admin", handles, from, to, ScaleUnit)
	assert.NoError(t, err)
	scaled, err := analyzer.Analyze(ctx, "admin", handles, from, to, ScaleK)
	assert.NoError(t, err)

	thousand := decimal.NewFromInt(1000)

	assert.Len(t, scaled.Series, len(unit.Series))
	for i := range unit.Series {
		assert.True(t, scaled.Series[i].Value.Equal(unit.Series[i].Value.Div(thousand)),
			"series point %d: %s != %s/1000", i, scaled.Series[i].Value, unit.Series[i].Value)
	}

	for i := range unit.Growth {
		for _, mt := range domain.MetricTypes {
			u := unit.Growth[i].Metrics[mt]
			s := scaled.Growth[i].Metrics[mt]
			assert.True(t, s.Delta.Equal(u.Delta.Div(thousand)), "delta for %s", mt)
			assert.Equal(t, u.Percent, s.Percent, "percent is scale-invariant for %s", mt)
		}
	}
}

func TestAnalyze_Engagement(t *testing.T) {
	store := &mockStore{rows: []domain.MetricObservation{
		row("@alice", domain.MetricFollowers, 1000, 0),
		row("@alice", domain.MetricFollowers, 3000, 1),
		row("@alice", domain.MetricLikes, 100, 0),
		row("@alice", domain.MetricLikes, 300, 1),
		// bob has likes but no followers: ratio 0 by policy.
		row("@bob", domain.MetricLikes, 500, 0),
	}}
	analyzer := NewAnalyzer(store)
	from, to := fullRange()

	result, err := analyzer.Analyze(context.Background(), "admin", []string{"@bob", "@alice"}, from, to, ScaleUnit)
	assert.NoError(t, err)
	assert.Len(t, result.Engagement, 2)

	// Summaries come back ordered by handle.
	assert.Equal(t, "@alice", result.Engagement[0].Handle)
	assert.InDelta(t, 0.1, result.Engagement[0].Ratio, 1e-9, "mean(likes)/mean(followers) = 200/2000")
	assert.Equal(t, "@bob", result.Engagement[1].Handle)
	assert.Equal(t, 0.0, result.Engagement[1].Ratio)
}

func TestAnalyze_VariationAndLiveMonths(t *testing.T) {
	withLive := row("@alice", domain.MetricFollowers, 1100, 1)
	withLive.Live = &domain.LiveSnapshot{Likes: 50, Views: 900}
	laterLive := row("@alice", domain.MetricFollowers, 1300, 35)
	laterLive.Live = &domain.LiveSnapshot{Likes: 80, Views: 1200}

	store := &mockStore{rows: []domain.MetricObservation{
		row("@alice", domain.MetricFollowers, 1000, 0),
		withLive,
		laterLive,
	}}
	analyzer := NewAnalyzer(store)
	from, to := baseTime.AddDate(0, 0, -1), baseTime.AddDate(0, 2, 0)

	result, err := analyzer.Analyze(context.Background(), "admin", []string{"@alice"}, from, to, ScaleUnit)
	assert.NoError(t, err)

	assert.Len(t, result.Variation, 3)
	assert.True(t, result.Variation[0].Change.IsZero(), "first observation has no previous point")
	assert.True(t, result.Variation[1].Change.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Variation[2].Change.Equal(decimal.NewFromInt(200)))

	assert.Equal(t, []LiveMonthCount{
		{Handle: "@alice", Month: "2024-03", Count: 1},
		{Handle: "@alice", Month: "2024-04", Count: 1},
	}, result.LiveMonths)
}

func TestParseScale(t *testing.T) {
	scale, err := ParseScale("")
	assert.NoError(t, err)
	assert.Equal(t, ScaleUnit, scale)

	scale, err = ParseScale("hundred_k")
	assert.NoError(t, err)
	assert.Equal(t, ScaleHundredK, scale)

	_, err = ParseScale("millions")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
