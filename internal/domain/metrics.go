package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type MetricType string

const (
	MetricFollowers MetricType = "followers"
	MetricLikes     MetricType = "likes"
	MetricViews     MetricType = "views"
	MetricEarnings  MetricType = "earnings"
)

// MetricTypes lists every metric type in summary order.
var MetricTypes = []MetricType{MetricFollowers, MetricLikes, MetricViews, MetricEarnings}

const (
	MethodScraped  = "scraped"
	MethodEstimate = "estimate"
	MethodManual   = "manual-estimate"
)

// LiveSnapshot carries livestream counters captured alongside a profile
// snapshot. It is attached to at most one observation row per snapshot.
type LiveSnapshot struct {
	Likes int64 `json:"likes"`
	Views int64 `json:"views"`
}

// MetricObservation is one immutable row of influencer history.
// Corrections are new rows, never updates.
type MetricObservation struct {
	OwnerUser        string          `json:"owner_user"`
	InfluencerHandle string          `json:"influencer_handle"`
	MetricType       MetricType      `json:"metric_type"`
	Value            decimal.Decimal `json:"value"`
	RecordedAt       time.Time       `json:"recorded_at"`
	CollectionMethod string          `json:"collection_method"`
	Live             *LiveSnapshot   `json:"live,omitempty"`
}

// EarnedProduct is one product awarded to an influencer during a livestream.
type EarnedProduct struct {
	InfluencerHandle string          `json:"influencer_handle"`
	ProductName      string          `json:"product_name"`
	EstimatedValue   decimal.Decimal `json:"estimated_value"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// MetricStore is the append-only history log. Rows are written once and
// never mutated or deleted by the application.
type MetricStore interface {
	Init() error
	AppendObservation(ctx context.Context, obs MetricObservation) error
	AppendProduct(ctx context.Context, p EarnedProduct) error
	ListInfluencers(ctx context.Context, ownerUser string) ([]string, error)
	QueryObservations(ctx context.Context, ownerUser string, handles []string, from, to time.Time) ([]MetricObservation, error)
	QueryProducts(ctx context.Context, handles []string, from, to time.Time) ([]EarnedProduct, error)
	LastLiveObservation(ctx context.Context, handle, ownerUser string) (*MetricObservation, error)
	Close() error
}

// ProfileSnapshot is the point-in-time result of one upstream profile fetch.
type ProfileSnapshot struct {
	Followers int64 `json:"followers"`
	Likes     int64 `json:"likes"`
	Views     int64 `json:"views"`
}

// MetricSource is the upstream capability that reports current numbers
// for a handle. How it obtains them is not this module's concern.
type MetricSource interface {
	FetchProfile(ctx context.Context, handle string) (ProfileSnapshot, error)
	FetchLive(ctx context.Context, handle string) (LiveSnapshot, error)
}
