package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
)

type Scale string

const (
	ScaleUnit     Scale = "unit"
	ScaleK        Scale = "k"
	ScaleTenK     Scale = "ten_k"
	ScaleHundredK Scale = "hundred_k"
)

var scaleFactors = map[Scale]decimal.Decimal{
	ScaleUnit:     decimal.NewFromInt(1),
	ScaleK:        decimal.NewFromInt(1_000),
	ScaleTenK:     decimal.NewFromInt(10_000),
	ScaleHundredK: decimal.NewFromInt(100_000),
}

func ParseScale(s string) (Scale, error) {
	if s == "" {
		return ScaleUnit, nil
	}
	scale := Scale(s)
	if _, ok := scaleFactors[scale]; !ok {
		return "", domain.ErrInvalidInput
	}
	return scale, nil
}

// GrowthMetric is the start-to-end change of one metric type. Delta is
// already divided by the display scale; Percent is scale-invariant.
type GrowthMetric struct {
	Delta   decimal.Decimal `json:"delta"`
	Percent float64         `json:"percent"`
}

type GrowthSummary struct {
	Handle  string                             `json:"handle"`
	Metrics map[domain.MetricType]GrowthMetric `json:"metrics"`
}

type SeriesPoint struct {
	Handle     string            `json:"handle"`
	MetricType domain.MetricType `json:"metric_type"`
	RecordedAt time.Time         `json:"recorded_at"`
	Value      decimal.Decimal   `json:"value"`
}

// VariationPoint is the change since the previous observation of the
// same (handle, metric type); the first observation reports 0.
type VariationPoint struct {
	Handle     string            `json:"handle"`
	MetricType domain.MetricType `json:"metric_type"`
	RecordedAt time.Time         `json:"recorded_at"`
	Change     decimal.Decimal   `json:"change"`
}

type LiveMonthCount struct {
	Handle string `json:"handle"`
	Month  string `json:"month"`
	Count  int    `json:"count"`
}

type EngagementRatio struct {
	Handle string  `json:"handle"`
	Ratio  float64 `json:"ratio"`
}

type AnalysisResult struct {
	Growth     []GrowthSummary   `json:"growth"`
	Series     []SeriesPoint     `json:"series"`
	Variation  []VariationPoint  `json:"variation"`
	LiveMonths []LiveMonthCount  `json:"live_months"`
	Engagement []EngagementRatio `json:"engagement"`
	RowCount   int               `json:"row_count"`
}

// Analyzer reduces stored observation history into growth summaries,
// rescaled chart series and engagement ratios.
type Analyzer struct {
	store domain.MetricStore
}

func NewAnalyzer(store domain.MetricStore) *Analyzer {
	return &Analyzer{store: store}
}

func (a *Analyzer) Analyze(ctx context.Context, ownerUser string, handles []string, from, to time.Time, scale Scale) (*AnalysisResult, error) {
	factor, ok := scaleFactors[scale]
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	result := &AnalysisResult{
		Growth:     []GrowthSummary{},
		Series:     []SeriesPoint{},
		Variation:  []VariationPoint{},
		LiveMonths: []LiveMonthCount{},
		Engagement: []EngagementRatio{},
	}
	if len(handles) == 0 {
		return result, nil
	}

	rows, err := a.store.QueryObservations(ctx, ownerUser, handles, from, to)
	if err != nil {
		return nil, err
	}
	result.RowCount = len(rows)
	if len(rows) == 0 {
		return result, nil
	}

	// Rows arrive ordered by (handle, recorded_at); group once.
	grouped := make(map[string]map[domain.MetricType][]domain.MetricObservation)
	for _, obs := range rows {
		byType, ok := grouped[obs.InfluencerHandle]
		if !ok {
			byType = make(map[domain.MetricType][]domain.MetricObservation)
			grouped[obs.InfluencerHandle] = byType
		}
		byType[obs.MetricType] = append(byType[obs.MetricType], obs)
	}

	ordered := append([]string(nil), handles...)
	sort.Strings(ordered)

	for _, handle := range ordered {
		byType := grouped[handle]

		// Summaries stay dense over every metric type, even for
		// handles or types with no rows in range.
		summary := GrowthSummary{Handle: handle, Metrics: make(map[domain.MetricType]GrowthMetric, len(domain.MetricTypes))}
		for _, mt := range domain.MetricTypes {
			summary.Metrics[mt] = growthOf(byType[mt], factor)
		}
		result.Growth = append(result.Growth, summary)

		result.Engagement = append(result.Engagement, EngagementRatio{
			Handle: handle,
			Ratio:  engagementOf(byType),
		})
	}

	for _, obs := range rows {
		result.Series = append(result.Series, SeriesPoint{
			Handle:     obs.InfluencerHandle,
			MetricType: obs.MetricType,
			RecordedAt: obs.RecordedAt,
			Value:      obs.Value.Div(factor),
		})
	}

	result.Variation = variationOf(ordered, grouped, factor)
	result.LiveMonths = liveMonthsOf(ordered, grouped)

	return result, nil
}

func growthOf(series []domain.MetricObservation, factor decimal.Decimal) GrowthMetric {
	if len(series) == 0 {
		return GrowthMetric{Delta: decimal.Zero}
	}

	first := series[0].Value
	last := series[len(series)-1].Value
	delta := last.Sub(first)

	// Growth from a zero baseline is 0% by policy, not an error.
	percent := 0.0
	if !first.IsZero() {
		percent = delta.Div(first).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	// Scale the absolute delta rather than re-deriving it from scaled
	// points, so magnitudes never drift between influencers.
	return GrowthMetric{Delta: delta.Div(factor), Percent: percent}
}

func engagementOf(byType map[domain.MetricType][]domain.MetricObservation) float64 {
	meanFollowers := meanOf(byType[domain.MetricFollowers])
	if meanFollowers.IsZero() {
		return 0
	}
	return meanOf(byType[domain.MetricLikes]).Div(meanFollowers).InexactFloat64()
}

func meanOf(series []domain.MetricObservation) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, obs := range series {
		sum = sum.Add(obs.Value)
	}
	return sum.Div(decimal.NewFromInt(int64(len(series))))
}

func variationOf(ordered []string, grouped map[string]map[domain.MetricType][]domain.MetricObservation, factor decimal.Decimal) []VariationPoint {
	points := []VariationPoint{}
	for _, handle := range ordered {
		for _, mt := range []domain.MetricType{domain.MetricFollowers, domain.MetricLikes} {
			series := grouped[handle][mt]
			for idx, obs := range series {
				change := decimal.Zero
				if idx > 0 {
					change = obs.Value.Sub(series[idx-1].Value).Div(factor)
				}
				points = append(points, VariationPoint{
					Handle:     handle,
					MetricType: mt,
					RecordedAt: obs.RecordedAt,
					Change:     change,
				})
			}
		}
	}
	return points
}

func liveMonthsOf(ordered []string, grouped map[string]map[domain.MetricType][]domain.MetricObservation) []LiveMonthCount {
	counts := []LiveMonthCount{}
	for _, handle := range ordered {
		perMonth := make(map[string]int)
		for _, series := range grouped[handle] {
			for _, obs := range series {
				if obs.Live != nil {
					perMonth[obs.RecordedAt.Format("2006-01")]++
				}
			}
		}

		months := make([]string, 0, len(perMonth))
		for m := range perMonth {
			months = append(months, m)
		}
		sort.Strings(months)
		for _, m := range months {
			counts = append(counts, LiveMonthCount{Handle: handle, Month: m, Count: perMonth[m]})
		}
	}
	return counts
}
