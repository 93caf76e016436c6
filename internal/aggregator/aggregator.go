package aggregator

import (
	"math"

	"call-quality-go/internal/types"
)

// Insight summarizes a batch of analyzed recordings.
type Insight struct {
	Total                int                `json:"total"`
	Degraded             int                `json:"degraded"`
	ImmediateReview      int                `json:"immediate_review"`
	ReviewRate           float64            `json:"review_rate"`
	AverageQuality       float64            `json:"average_quality"`
	PauseViolations      int                `json:"pause_violations"`
	ByPriority           map[string]int     `json:"by_priority"`
	CategoryCounts       map[string]int     `json:"category_counts"`
	UnresolvedByCategory map[string]float64 `json:"unresolved_by_category"`
}

// Aggregate counts review outcomes across analyses. Degraded results count
// toward review totals but not toward the average quality or categories.
func Aggregate(analyses []types.ComprehensiveAnalysis) Insight {
	ins := Insight{
		Total:                len(analyses),
		ByPriority:           map[string]int{},
		CategoryCounts:       map[string]int{},
		UnresolvedByCategory: map[string]float64{},
	}
	unresolved := map[string]int{}
	scored := 0
	sum := 0.0
	for _, a := range analyses {
		ins.ByPriority[string(a.Resolution.ReviewPriority)]++
		if a.RequiresImmediateReview {
			ins.ImmediateReview++
		}
		if a.Degraded {
			ins.Degraded++
			continue
		}
		scored++
		sum += a.OverallQualityScore
		ins.PauseViolations += a.Pauses.UnannouncedLongPauses

		cat := string(a.Categorization.Primary)
		ins.CategoryCounts[cat]++
		switch a.Resolution.Status {
		case types.ProblemUnresolved, types.ProblemEscalated:
			unresolved[cat]++
		}
	}
	for cat, n := range ins.CategoryCounts {
		ins.UnresolvedByCategory[cat] = float64(unresolved[cat]) / float64(n)
	}
	if ins.Total > 0 {
		ins.ReviewRate = round2(float64(ins.ImmediateReview) / float64(ins.Total))
	}
	if scored > 0 {
		ins.AverageQuality = round2(sum / float64(scored))
	}
	return ins
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
