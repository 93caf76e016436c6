package scoring

import (
	"math"

	"call-quality-go/internal/types"
)

const (
	ToneWeight         = 0.25
	StructureWeight    = 0.20
	SatisfactionWeight = 0.30
	PolitenessWeight   = 0.25
)

// Review reasons. They are stable identifiers, not prose.
const (
	ReasonUnresolvedCritical  = "unresolved_critical_issue"
	ReasonUnresolvedHigh      = "unresolved_high_severity_issue"
	ReasonPauseViolation      = "pause_compliance_violation"
	ReasonDissatisfied        = "customer_dissatisfied"
	ReasonEscalation          = "escalation_requested"
	ReasonAnalysisUnavailable = "analysis_unavailable"
)

// OverallQuality is the weighted rubric score, rounded to two decimals.
// Inputs are expected in [0,100] already.
func OverallQuality(tone, structure, satisfaction, politeness float64) float64 {
	sum := tone*ToneWeight + structure*StructureWeight + satisfaction*SatisfactionWeight + politeness*PolitenessWeight
	return math.Round(sum*100) / 100
}

// Findings are the inputs the review decision is computed from.
type Findings struct {
	UnresolvedSeverities []types.Severity
	PauseViolations      int
	Satisfaction         types.SatisfactionLevel
	Escalation           bool
}

// Review derives the review decision from findings. The priority is the
// highest one among the triggers that fired.
func Review(f Findings) types.ReviewDecision {
	d := types.ReviewDecision{Priority: types.PriorityLow, Reasons: []string{}}
	fire := func(p types.ReviewPriority, reason string) {
		d.Required = true
		d.Priority = types.MaxPriority(d.Priority, p)
		for _, r := range d.Reasons {
			if r == reason {
				return
			}
		}
		d.Reasons = append(d.Reasons, reason)
	}

	for _, s := range f.UnresolvedSeverities {
		switch s {
		case types.SeverityCritical:
			fire(types.PriorityUrgent, ReasonUnresolvedCritical)
		case types.SeverityHigh:
			fire(types.PriorityHigh, ReasonUnresolvedHigh)
		}
	}
	switch {
	case f.PauseViolations >= 2:
		fire(types.PriorityHigh, ReasonPauseViolation)
	case f.PauseViolations == 1:
		fire(types.PriorityMedium, ReasonPauseViolation)
	}
	switch f.Satisfaction {
	case types.VeryDissatisfied:
		fire(types.PriorityHigh, ReasonDissatisfied)
	case types.Dissatisfied:
		fire(types.PriorityMedium, ReasonDissatisfied)
	}
	if f.Escalation {
		fire(types.PriorityHigh, ReasonEscalation)
	}
	return d
}

// ScoreConversation overwrites the review fields of a with the locally
// derived decision. Whatever the oracle reported for them is discarded.
func ScoreConversation(a *types.ConversationAnalysis) {
	if a.Degraded {
		a.ReviewDecision = types.ReviewDecision{
			Required: true,
			Priority: types.PriorityHigh,
			Reasons:  []string{ReasonAnalysisUnavailable},
		}
		return
	}
	sev := make([]types.Severity, 0, len(a.UnresolvedIssues))
	for _, is := range a.UnresolvedIssues {
		sev = append(sev, is.Severity)
	}
	a.ReviewDecision = Review(Findings{
		UnresolvedSeverities: sev,
		PauseViolations:      a.ComplianceViolations,
		Satisfaction:         a.FinalSatisfaction,
		Escalation:           a.RequiresEscalation,
	})
}

// ScoreComprehensive fills the overall score and the review fields of a.
func ScoreComprehensive(a *types.ComprehensiveAnalysis) {
	if a.Degraded {
		a.OverallQualityScore = 0
		a.RequiresImmediateReview = true
		a.Resolution.SupervisorReviewRequired = true
		a.Resolution.ReviewPriority = types.PriorityUrgent
		return
	}
	a.OverallQualityScore = OverallQuality(
		a.Emotional.ToneAppropriatenessScore,
		a.Structure.ComplianceScore,
		a.Satisfaction.Score,
		a.Politeness.Score,
	)

	var sev []types.Severity
	if a.Resolution.Status == types.ProblemUnresolved {
		sev = append(sev, types.SeverityHigh)
	}
	d := Review(Findings{
		UnresolvedSeverities: sev,
		PauseViolations:      a.Pauses.UnannouncedLongPauses,
		Satisfaction:         a.Satisfaction.EndCall,
		Escalation:           a.Resolution.RequiresEscalation || a.Resolution.Status == types.ProblemEscalated,
	})
	a.Resolution.SupervisorReviewRequired = d.Required
	a.Resolution.ReviewPriority = d.Priority
	a.RequiresImmediateReview = a.RequiresImmediateReview || d.Priority == types.PriorityUrgent
}
