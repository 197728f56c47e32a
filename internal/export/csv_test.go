package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"influencer-app/internal/analytics"
	"influencer-app/internal/domain"
)

func TestWriteGrowth(t *testing.T) {
	growth := []analytics.GrowthSummary{
		{
			Handle: "@alice",
			Metrics: map[domain.MetricType]analytics.GrowthMetric{
				domain.MetricFollowers: {Delta: decimal.NewFromInt(500), Percent: 50},
				domain.MetricLikes:     {Delta: decimal.NewFromInt(100), Percent: 10},
				domain.MetricViews:     {Delta: decimal.Zero, Percent: 0},
				domain.MetricEarnings:  {Delta: decimal.NewFromFloat(1.5), Percent: 15},
			},
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteGrowth(&buf, growth))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2, "header plus one record")
	assert.Equal(t, []string{
		"handle",
		"followers_delta", "followers_percent",
		"likes_delta", "likes_percent",
		"views_delta", "views_percent",
		"earnings_delta", "earnings_percent",
	}, records[0])
	assert.Equal(t, []string{"@alice", "500", "50.00", "100", "10.00", "0", "0.00", "1.5", "15.00"}, records[1])
}

func TestWriteProducts(t *testing.T) {
	at := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	products := []domain.EarnedProduct{
		{InfluencerHandle: "@alice", ProductName: "ring light", EstimatedValue: decimal.NewFromFloat(149.90), RecordedAt: at},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteProducts(&buf, products))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []string{"influencer_handle", "product_name", "estimated_value", "recorded_at"}, records[0])
	assert.Equal(t, []string{"@alice", "ring light", "149.9", "2024-03-15T10:30:00Z"}, records[1])
}

func TestWriteSeries_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteSeries(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 1, "header only")
}
