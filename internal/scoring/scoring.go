// Package scoring derives a supplier's average, status tier and ranking
// position from its criteria scores.
package scoring

import (
	"sort"

	"supplier-portal/internal/model"

	"github.com/shopspring/decimal"
)

// Tier is the status band a score falls into
type Tier string

const (
	TierGreat Tier = "ÓTIMO"
	TierGood  Tier = "BOM"
	TierPoor  Tier = "RUIM"
)

const (
	greatThreshold = 4.0
	goodThreshold  = 2.0
)

// Classification is the displayed status for a score
type Classification struct {
	Tier           Tier `json:"tier"`
	Recommended    bool `json:"recommended"`
	NotRecommended bool `json:"not_recommended"`
}

// ComputeAverage returns the mean of the three criteria rounded half-up to one
// decimal place. The second result is false when any criterion is still
// unrated (zero), in which case there is no average.
func ComputeAverage(quality, delivery, support float64) (float64, bool) {
	if quality <= 0 || delivery <= 0 || support <= 0 {
		return 0, false
	}

	sum := decimal.NewFromFloat(quality).
		Add(decimal.NewFromFloat(delivery)).
		Add(decimal.NewFromFloat(support))

	return sum.Div(decimal.NewFromInt(3)).Round(1).InexactFloat64(), true
}

// Classify maps a score to its tier. Lower bounds are inclusive.
func Classify(score float64) Classification {
	switch {
	case score >= greatThreshold:
		return Classification{Tier: TierGreat, Recommended: true}
	case score >= goodThreshold:
		return Classification{Tier: TierGood}
	default:
		return Classification{Tier: TierPoor, NotRecommended: true}
	}
}

// Rank returns the suppliers ordered by average score, best first. Ties keep
// their input order. The input slice is not modified.
func Rank(suppliers []*model.Supplier) []*model.Supplier {
	ranked := make([]*model.Supplier, len(suppliers))
	copy(ranked, suppliers)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AverageScore > ranked[j].AverageScore
	})
	return ranked
}

// Round1 rounds v half-up to one decimal place
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
