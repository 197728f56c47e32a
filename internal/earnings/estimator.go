package earnings

import (
	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
)

// Tier maps a view-count ceiling to a per-view rate. A zero Ceiling
// marks the open-ended top tier.
type Tier struct {
	Ceiling decimal.Decimal
	Rate    decimal.Decimal
}

// Estimator converts view counts into estimated earnings. The rate
// applies to the whole count, not marginally per tier.
type Estimator struct {
	tiers []Tier
}

// DefaultTiers is the agency's standing rate table.
func DefaultTiers() []Tier {
	return []Tier{
		{Ceiling: decimal.NewFromInt(10_000), Rate: decimal.NewFromFloat(0.0001)},
		{Ceiling: decimal.NewFromInt(100_000), Rate: decimal.NewFromFloat(0.0002)},
		{Rate: decimal.NewFromFloat(0.0003)},
	}
}

func NewEstimator(tiers []Tier) *Estimator {
	return &Estimator{tiers: tiers}
}

func (e *Estimator) Estimate(views int64) (decimal.Decimal, error) {
	if views < 0 {
		return decimal.Zero, domain.ErrInvalidInput
	}

	v := decimal.NewFromInt(views)
	for _, t := range e.tiers {
		if t.Ceiling.IsZero() || v.LessThanOrEqual(t.Ceiling) {
			return v.Mul(t.Rate), nil
		}
	}
	return decimal.Zero, nil
}
