package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"call-quality-go/internal/types"
)

func TestOverallQuality(t *testing.T) {
	assert.Equal(t, 76.5, OverallQuality(80, 60, 90, 70))
	assert.Equal(t, 100.0, OverallQuality(100, 100, 100, 100))
	assert.Equal(t, 0.0, OverallQuality(0, 0, 0, 0))
	assert.InDelta(t, 1.0, ToneWeight+StructureWeight+SatisfactionWeight+PolitenessWeight, 1e-9)
}

func TestReview(t *testing.T) {
	tests := []struct {
		name     string
		in       Findings
		required bool
		priority types.ReviewPriority
		reasons  []string
	}{
		{
			name:     "nothing fired",
			in:       Findings{Satisfaction: types.Satisfied},
			priority: types.PriorityLow,
			reasons:  []string{},
		},
		{
			name:     "low severity issue does not fire",
			in:       Findings{UnresolvedSeverities: []types.Severity{types.SeverityLow, types.SeverityMedium}},
			priority: types.PriorityLow,
			reasons:  []string{},
		},
		{
			name:     "critical issue is urgent",
			in:       Findings{UnresolvedSeverities: []types.Severity{types.SeverityHigh, types.SeverityCritical}},
			required: true,
			priority: types.PriorityUrgent,
			reasons:  []string{ReasonUnresolvedHigh, ReasonUnresolvedCritical},
		},
		{
			name:     "single pause violation",
			in:       Findings{PauseViolations: 1},
			required: true,
			priority: types.PriorityMedium,
			reasons:  []string{ReasonPauseViolation},
		},
		{
			name:     "repeated pause violations",
			in:       Findings{PauseViolations: 3},
			required: true,
			priority: types.PriorityHigh,
			reasons:  []string{ReasonPauseViolation},
		},
		{
			name:     "dissatisfied and escalation",
			in:       Findings{Satisfaction: types.Dissatisfied, Escalation: true},
			required: true,
			priority: types.PriorityHigh,
			reasons:  []string{ReasonDissatisfied, ReasonEscalation},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Review(tt.in)
			assert.Equal(t, tt.required, d.Required)
			assert.Equal(t, tt.priority, d.Priority)
			assert.Equal(t, tt.reasons, d.Reasons)
		})
	}
}

func TestScoreConversationIgnoresOracleFlags(t *testing.T) {
	a := types.ConversationAnalysis{
		ComplianceViolations: 1,
		FinalSatisfaction:    types.SatisfactionNeutral,
		ReviewDecision: types.ReviewDecision{
			Required: false,
			Priority: types.PriorityUrgent,
			Reasons:  []string{"oracle said so"},
		},
	}
	ScoreConversation(&a)
	assert.True(t, a.Required)
	assert.Equal(t, types.PriorityMedium, a.Priority)
	assert.Equal(t, []string{ReasonPauseViolation}, a.Reasons)
}

func TestScoreComprehensive(t *testing.T) {
	a := types.ComprehensiveAnalysis{}
	a.Emotional.ToneAppropriatenessScore = 80
	a.Structure.ComplianceScore = 60
	a.Satisfaction.Score = 90
	a.Satisfaction.EndCall = types.Satisfied
	a.Politeness.Score = 70
	a.Resolution.Status = types.ProblemResolved
	a.Resolution.ReviewPriority = types.PriorityHigh

	ScoreComprehensive(&a)
	assert.Equal(t, 76.5, a.OverallQualityScore)
	assert.False(t, a.RequiresImmediateReview)
	assert.False(t, a.Resolution.SupervisorReviewRequired)
	assert.Equal(t, types.PriorityLow, a.Resolution.ReviewPriority)

	a.Degraded = true
	ScoreComprehensive(&a)
	assert.Zero(t, a.OverallQualityScore)
	assert.True(t, a.RequiresImmediateReview)
}
