package types

import "time"

type UnresolvedIssue struct {
	Timestamp         float64  `json:"timestamp"`
	CustomerStatement string   `json:"customer_statement"`
	IssueDescription  string   `json:"issue_description"`
	AgentResponse     string   `json:"agent_response,omitempty"`
	Severity          Severity `json:"severity"`
	RequiresFollowUp  bool     `json:"requires_followup"`
}

type SatisfactionSignal struct {
	Timestamp  float64 `json:"timestamp"`
	Type       Impact  `json:"signal_type"`
	Phrase     string  `json:"phrase"`
	Confidence float64 `json:"confidence"`
}

type ToneEvaluation struct {
	CustomerTone    EmotionalTone       `json:"customer_tone"`
	AgentTone       AgentTone           `json:"agent_tone"`
	Appropriateness ToneAppropriateness `json:"tone_appropriateness"`
	EmpathyScore    float64             `json:"empathy_score"`
	PolitenessScore float64             `json:"politeness_score"`
	RespectScore    float64             `json:"respect_score"`
	ToneMismatches  []string            `json:"tone_mismatches"`
}

type ConversationStage struct {
	Type         Stage        `json:"stage_type"`
	Start        float64      `json:"start_time"`
	End          float64      `json:"end_time"`
	TextSnippet  string       `json:"text_snippet"`
	Speaker      Party        `json:"speaker"`
	Completeness Completeness `json:"completeness"`
	QualityScore float64      `json:"quality_score"`
	Deviations   []string     `json:"deviations"`
}

type ConversationStructure struct {
	Stages          []ConversationStage `json:"stages_identified"`
	ExpectedFlow    []Stage             `json:"expected_flow"`
	ActualFlow      []Stage             `json:"actual_flow"`
	FlowDeviations  []string            `json:"flow_deviations"`
	MissingStages   []Stage             `json:"missing_stages"`
	Score           float64             `json:"structure_score"`
	Recommendations []string            `json:"recommendations"`
}

// ReviewDecision is derived from the findings; see scoring.Review.
type ReviewDecision struct {
	Required bool           `json:"requires_review"`
	Priority ReviewPriority `json:"review_priority"`
	Reasons  []string       `json:"review_reasons"`
}

// ConversationAnalysis is the pause/resolution focused result persisted as
// conversation_analysis.json.
type ConversationAnalysis struct {
	TotalPauses          int     `json:"total_pauses"`
	LongPauses           []Pause `json:"long_pauses"`
	ComplianceViolations int     `json:"compliance_violations"`
	PauseComplianceScore float64 `json:"pause_compliance_score"`

	ResolutionStatus               ResolutionStatus  `json:"resolution_status"`
	UnresolvedIssues               []UnresolvedIssue `json:"unresolved_issues"`
	CustomerSatisfactionIndicators []string          `json:"customer_satisfaction_indicators"`
	RequiresEscalation             bool              `json:"requires_escalation"`
	EscalationReason               string            `json:"escalation_reason,omitempty"`
	ReviewDecision

	PolitenessElements []PolitenessElement `json:"politeness_elements"`
	HasGreeting        bool                `json:"has_greeting"`
	HasFarewell        bool                `json:"has_farewell"`
	HasThanks          bool                `json:"has_thanks"`
	PolitenessScore    float64             `json:"politeness_score"`

	SatisfactionSignals []SatisfactionSignal `json:"satisfaction_signals"`
	FinalSatisfaction   SatisfactionLevel    `json:"final_satisfaction"`

	ToneEvaluation ToneEvaluation        `json:"tone_evaluation"`
	Structure      ConversationStructure `json:"structure_analysis"`

	AnalysisSummary string   `json:"analysis_summary"`
	KeyFindings     []string `json:"key_findings"`

	SessionID                 string    `json:"session_id"`
	AnalyzedAt                time.Time `json:"analysis_timestamp"`
	TotalConversationDuration float64   `json:"total_conversation_duration"`

	Degraded bool `json:"degraded,omitempty"`
}
