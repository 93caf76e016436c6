package types

import "time"

// LongPauseThreshold is the hold time, in seconds, above which a pause has
// to be announced to the customer.
const LongPauseThreshold = 60.0

// Meta carries the caller-supplied facts about an analysis run. Reconciliation
// never reads the wall clock; AnalyzedAt comes from here or from the document.
type Meta struct {
	SessionID     string
	AnalyzedAt    time.Time
	Processing    time.Duration
	TotalDuration float64
}

// --------------------------------------------
// Comprehensive analysis (gemini_analysis.json)
// --------------------------------------------

type Transcription struct {
	OriginalLanguage     Language  `json:"original_language"`
	Segments             []Segment `json:"segments"`
	FullText             string    `json:"full_text"`
	TotalDurationSeconds float64   `json:"total_duration_seconds"`
	Confidence           float64   `json:"transcription_confidence"`
	WordCount            int       `json:"word_count"`
}

type Translation struct {
	TargetLanguage Language  `json:"target_language"`
	Segments       []Segment `json:"translated_segments"`
	FullText       string    `json:"full_translated_text"`
	Notes          string    `json:"translation_notes,omitempty"`
}

type EmotionalMoment struct {
	Timestamp     float64       `json:"timestamp"`
	Speaker       Party         `json:"speaker"`
	Emotion       EmotionalTone `json:"emotion"`
	Intensity     float64       `json:"intensity"`
	TriggerPhrase string        `json:"trigger_phrase,omitempty"`
}

type ToneMismatch struct {
	Timestamp      float64          `json:"timestamp"`
	CustomerTone   string           `json:"customer_tone"`
	AgentTone      string           `json:"agent_tone"`
	Severity       MismatchSeverity `json:"mismatch_severity"`
	Recommendation string           `json:"recommendation"`
}

type EmotionalAnalysis struct {
	CustomerOverallEmotion     EmotionalTone     `json:"customer_overall_emotion"`
	CustomerEmotionProgression []EmotionalMoment `json:"customer_emotion_progression"`
	CustomerEmotionSummary     string            `json:"customer_emotion_summary"`
	AgentOverallTone           EmotionalTone     `json:"agent_overall_tone"`
	AgentEmpathyScore          float64           `json:"agent_empathy_score"`
	AgentPolitenessScore       float64           `json:"agent_politeness_score"`
	AgentRespectScore          float64           `json:"agent_respect_score"`
	ToneAppropriatenessScore   float64           `json:"tone_appropriateness_score"`
	ToneMismatches             []ToneMismatch    `json:"tone_mismatches"`
	Recommendations            []string          `json:"recommendations"`
}

type StageOccurrence struct {
	Stage        Stage    `json:"stage"`
	Present      bool     `json:"present"`
	Start        float64  `json:"start_time"`
	End          float64  `json:"end_time"`
	QualityScore float64  `json:"quality_score"`
	Deviations   []string `json:"deviations"`
}

type StructureAnalysis struct {
	DetectedStages   []StageOccurrence `json:"detected_stages"`
	ExpectedStages   []Stage           `json:"expected_stages"`
	MissingStages    []Stage           `json:"missing_stages"`
	OutOfOrderStages []Stage           `json:"out_of_order_stages"`
	ComplianceScore  float64           `json:"structure_compliance_score"`
	MajorDeviations  []string          `json:"major_deviations"`
	Summary          string            `json:"structure_summary"`
}

type SatisfactionIndicator struct {
	Timestamp  float64       `json:"timestamp"`
	Type       IndicatorType `json:"indicator_type"`
	Content    string        `json:"content"`
	Impact     Impact        `json:"impact"`
	Confidence float64       `json:"confidence"`
}

type SatisfactionAnalysis struct {
	Overall          SatisfactionLevel       `json:"overall_satisfaction"`
	Score            float64                 `json:"satisfaction_score"`
	Indicators       []SatisfactionIndicator `json:"satisfaction_indicators"`
	PositiveSignals  []string                `json:"positive_signals"`
	NegativeSignals  []string                `json:"negative_signals"`
	Trend            Trend                   `json:"satisfaction_trend"`
	EndCall          SatisfactionLevel       `json:"end_call_satisfaction"`
	RequiresFollowUp bool                    `json:"requires_follow_up"`
	FollowUpReason   string                  `json:"follow_up_reason,omitempty"`
}

// PolitenessElement is shared by both analyses; each fills the judgement it asks for.
type PolitenessElement struct {
	Type                  PolitenessElementType `json:"element_type"`
	Text                  string                `json:"text"`
	Speaker               Party                 `json:"speaker"`
	Timestamp             float64               `json:"timestamp"`
	CulturallyAppropriate bool                  `json:"culturally_appropriate"`
	Appropriateness       Appropriateness       `json:"appropriateness"`
}

type PolitenessAnalysis struct {
	DetectedElements             []PolitenessElement `json:"detected_elements"`
	AgentGreetingPresent         bool                `json:"agent_greeting_present"`
	AgentFarewellPresent         bool                `json:"agent_farewell_present"`
	AgentThanksPresent           bool                `json:"agent_thanks_present"`
	AgentApologiesCount          int                 `json:"agent_apologies_count"`
	CustomerGreetingPresent      bool                `json:"customer_greeting_present"`
	CustomerFarewellPresent      bool                `json:"customer_farewell_present"`
	CustomerThanksPresent        bool                `json:"customer_thanks_present"`
	Score                        float64             `json:"politeness_score"`
	MissingRequiredElements      []string            `json:"missing_required_elements"`
	CulturalAppropriatenessScore float64             `json:"cultural_appropriateness_score"`
	Recommendations              []string            `json:"recommendations"`
}

type ResolutionAttempt struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Success   string `json:"success"`
}

type ResolutionAnalysis struct {
	ProblemStatement         string              `json:"problem_statement"`
	ProblemCategory          Category            `json:"problem_category"`
	Status                   ProblemStatus       `json:"resolution_status"`
	Confidence               float64             `json:"resolution_confidence"`
	UnresolvedIndicators     []string            `json:"unresolved_indicators"`
	Attempts                 []ResolutionAttempt `json:"resolution_attempts"`
	CustomerConfirmed        bool                `json:"customer_confirmation_of_resolution"`
	RequiresEscalation       bool                `json:"requires_escalation"`
	EscalationReason         string              `json:"escalation_reason,omitempty"`
	RecommendedNextSteps     []string            `json:"recommended_next_steps"`
	SupervisorReviewRequired bool                `json:"supervisor_review_required"`
	ReviewPriority           ReviewPriority      `json:"review_priority"`
}

// Pause is a hold in the conversation. ComplianceIssue is always derived
// from Duration and Status, never taken from the oracle.
type Pause struct {
	Start            float64            `json:"timestamp_start"`
	End              float64            `json:"timestamp_end"`
	Duration         float64            `json:"duration_seconds"`
	Status           AnnouncementStatus `json:"announcement_status"`
	AnnouncementText string             `json:"announcement_text,omitempty"`
	ContextBefore    string             `json:"context_before,omitempty"`
	ContextAfter     string             `json:"context_after,omitempty"`
	ReasonGiven      string             `json:"reason_given,omitempty"`
	CustomerResponse string             `json:"customer_response,omitempty"`
	Recommendation   string             `json:"recommendation,omitempty"`
	ComplianceIssue  bool               `json:"compliance_issue"`
}

// Violates reports a long pause the customer was not properly told about.
func (p Pause) Violates() bool {
	return p.Duration > LongPauseThreshold && p.Status != ProperlyAnnounced
}

type PauseAnalysis struct {
	TotalPauses           int      `json:"total_pauses"`
	LongPauses            []Pause  `json:"long_pauses"`
	TotalPauseDuration    float64  `json:"total_pause_duration"`
	AveragePauseDuration  float64  `json:"average_pause_duration"`
	LongestPauseDuration  float64  `json:"longest_pause_duration"`
	UnannouncedLongPauses int      `json:"unannounced_long_pauses"`
	ComplianceScore       float64  `json:"compliance_score"`
	PauseHandlingIssues   []string `json:"pause_handling_issues"`
	Recommendations       []string `json:"recommendations"`
}

type Summary struct {
	SummaryLT              string   `json:"summary_lt"`
	KeyPointsLT            []string `json:"key_points_lt"`
	CustomerRequest        string   `json:"customer_request"`
	ActionsTaken           []string `json:"actions_taken"`
	Outcome                string   `json:"outcome"`
	FollowUpRequired       bool     `json:"follow_up_required"`
	FollowUpActions        []string `json:"follow_up_actions"`
	AgentPerformanceNotes  string   `json:"agent_performance_notes"`
	ImprovementSuggestions []string `json:"improvement_suggestions"`
}

type Categorization struct {
	Primary             Category     `json:"primary_category"`
	Secondary           []Category   `json:"secondary_categories"`
	Tags                []string     `json:"tags"`
	CustomerType        CustomerType `json:"customer_type"`
	ServicesMentioned   []string     `json:"service_mentioned"`
	UrgencyLevel        Urgency      `json:"urgency_level"`
	SearchableKeywords  []string     `json:"searchable_keywords"`
	AutoGeneratedLabels []string     `json:"auto_generated_labels"`
}

// ComprehensiveAnalysis is the full rubric result for one recording.
type ComprehensiveAnalysis struct {
	SessionID            string    `json:"session_id"`
	AnalyzedAt           time.Time `json:"analysis_timestamp"`
	ProcessingDurationMs int64     `json:"processing_duration_ms"`

	Transcription  Transcription        `json:"transcription"`
	Translation    Translation          `json:"translation"`
	Emotional      EmotionalAnalysis    `json:"emotional_analysis"`
	Structure      StructureAnalysis    `json:"structure_analysis"`
	Satisfaction   SatisfactionAnalysis `json:"satisfaction_analysis"`
	Politeness     PolitenessAnalysis   `json:"politeness_analysis"`
	Resolution     ResolutionAnalysis   `json:"resolution_analysis"`
	Pauses         PauseAnalysis        `json:"pause_analysis"`
	Summary        Summary              `json:"summary"`
	Categorization Categorization       `json:"categorization"`

	OverallQualityScore     float64  `json:"overall_quality_score"`
	RequiresImmediateReview bool     `json:"requires_immediate_review"`
	CriticalIssues          []string `json:"critical_issues"`
	TopRecommendations      []string `json:"top_recommendations"`

	// Degraded marks the fallback object produced when no real analysis exists.
	Degraded bool `json:"degraded,omitempty"`
}
