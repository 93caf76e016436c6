package extractor

import (
	"call-quality-go/internal/scoring"
	"call-quality-go/internal/types"
)

// ReconcileConversation turns an oracle answer (or a persisted
// conversation_analysis.json) into a ConversationAnalysis. The review
// decision is always re-derived from the findings.
func ReconcileConversation(raw any, meta types.Meta) types.ConversationAnalysis {
	obj := unwrap(raw)
	long := entries(obj, toPause, "long_pauses", "pauses")

	a := types.ConversationAnalysis{
		TotalPauses:          count(obj, 0, "total_pauses"),
		LongPauses:           long,
		ComplianceViolations: violations(long),
		PauseComplianceScore: score(obj, defaultPauseCompliance, "pause_compliance_score", "compliance_score"),

		ResolutionStatus: types.ParseResolutionStatus(text(obj, "", "resolution_status")),
		UnresolvedIssues: entries(obj, func(e map[string]any) (types.UnresolvedIssue, bool) {
			ts, ok := timestamp(e, "timestamp", "timestamp_start")
			if !ok {
				return types.UnresolvedIssue{}, false
			}
			is := types.UnresolvedIssue{
				Timestamp:         ts,
				CustomerStatement: text(e, "", "customer_statement"),
				IssueDescription:  text(e, "", "issue_description", "description"),
				AgentResponse:     text(e, "", "agent_response"),
				Severity:          types.ParseSeverity(text(e, "", "severity")),
				RequiresFollowUp:  flag(e, false, "requires_followup", "requires_follow_up"),
			}
			if is.CustomerStatement == "" && is.IssueDescription == "" {
				return types.UnresolvedIssue{}, false
			}
			return is, true
		}, "unresolved_issues"),
		CustomerSatisfactionIndicators: strs(obj, "customer_satisfaction_indicators"),
		RequiresEscalation:             flag(obj, false, "requires_escalation", "escalation_required"),
		EscalationReason:               text(obj, "", "escalation_reason"),

		PolitenessElements: entries(obj, politenessElement, "politeness_elements"),
		HasGreeting:        flag(obj, false, "has_greeting"),
		HasFarewell:        flag(obj, false, "has_farewell"),
		HasThanks:          flag(obj, false, "has_thanks"),
		PolitenessScore:    score(obj, defaultScore, "politeness_score"),

		SatisfactionSignals: entries(obj, func(e map[string]any) (types.SatisfactionSignal, bool) {
			ts, ok := timestamp(e, "timestamp")
			if !ok {
				return types.SatisfactionSignal{}, false
			}
			return types.SatisfactionSignal{
				Timestamp:  ts,
				Type:       types.ParseImpact(text(e, "", "signal_type", "type", "impact")),
				Phrase:     text(e, "", "phrase", "text", "content"),
				Confidence: unit(e, defaultWeight, "confidence"),
			}, true
		}, "satisfaction_signals"),
		FinalSatisfaction: types.ParseSatisfactionLevel(text(obj, "", "final_satisfaction")),

		ToneEvaluation: toneEvaluation(section(obj, "tone_evaluation")),
		Structure:      conversationStructure(section(obj, "structure_analysis")),

		AnalysisSummary: text(obj, "", "analysis_summary", "summary"),
		KeyFindings:     strs(obj, "key_findings"),

		SessionID:                 meta.SessionID,
		AnalyzedAt:                meta.AnalyzedAt,
		TotalConversationDuration: meta.TotalDuration,

		Degraded: flag(obj, false, "degraded"),
	}
	if a.TotalPauses < len(long) {
		a.TotalPauses = len(long)
	}
	if a.SessionID == "" {
		a.SessionID = text(obj, "", "session_id")
	}
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = parseTime(text(obj, "", "analysis_timestamp"))
	}
	if a.TotalConversationDuration == 0 {
		a.TotalConversationDuration = num(obj, 0, "total_conversation_duration")
	}

	scoring.ScoreConversation(&a)
	return a
}

func toneEvaluation(s map[string]any) types.ToneEvaluation {
	return types.ToneEvaluation{
		CustomerTone:    types.ParseEmotionalTone(text(s, "", "customer_tone")),
		AgentTone:       types.ParseAgentTone(text(s, "", "agent_tone")),
		Appropriateness: types.ParseToneAppropriateness(text(s, "", "tone_appropriateness")),
		EmpathyScore:    score(s, defaultScore, "empathy_score"),
		PolitenessScore: score(s, defaultScore, "politeness_score"),
		RespectScore:    score(s, defaultScore, "respect_score"),
		ToneMismatches:  strs(s, "tone_mismatches"),
	}
}

func conversationStructure(s map[string]any) types.ConversationStructure {
	return types.ConversationStructure{
		Stages: entries(s, func(e map[string]any) (types.ConversationStage, bool) {
			start, ok := timestamp(e, startKeys...)
			if !ok {
				return types.ConversationStage{}, false
			}
			end, ok := timestamp(e, endKeys...)
			if !ok || end < start {
				return types.ConversationStage{}, false
			}
			return types.ConversationStage{
				Type:         types.ParseStage(text(e, "", "stage_type", "stage")),
				Start:        start,
				End:          end,
				TextSnippet:  text(e, "", "text_snippet", "text"),
				Speaker:      types.ParseParty(text(e, "", "speaker")),
				Completeness: types.ParseCompleteness(text(e, "", "completeness")),
				QualityScore: score(e, defaultStageQuality, "quality_score"),
				Deviations:   strs(e, "deviations"),
			}, true
		}, "stages_identified", "stages"),
		ExpectedFlow:    enums(s, types.ParseStage, "expected_flow"),
		ActualFlow:      enums(s, types.ParseStage, "actual_flow"),
		FlowDeviations:  strs(s, "flow_deviations"),
		MissingStages:   enums(s, types.ParseStage, "missing_stages"),
		Score:           score(s, defaultScore, "structure_score"),
		Recommendations: strs(s, "recommendations"),
	}
}
