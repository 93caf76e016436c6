package extractor

import (
	"strings"
	"time"

	"call-quality-go/internal/scoring"
	"call-quality-go/internal/types"
)

// Defaults for values the oracle leaves out or gets wrong.
const (
	defaultScore           = 50.0
	defaultStageQuality    = 75.0
	defaultPauseCompliance = 100.0
	defaultConfidence      = 0.9
	defaultWeight          = 0.5
	notIdentified          = "Not identified"
)

// ReconcileComprehensive turns an oracle answer (or a persisted
// gemini_analysis.json) into a ComprehensiveAnalysis. It never fails; the
// result always carries a fresh overall score and review decision.
func ReconcileComprehensive(raw any, meta types.Meta) types.ComprehensiveAnalysis {
	obj := unwrap(raw)

	a := types.ComprehensiveAnalysis{
		SessionID:            meta.SessionID,
		AnalyzedAt:           meta.AnalyzedAt,
		ProcessingDurationMs: meta.Processing.Milliseconds(),
	}
	if a.SessionID == "" {
		a.SessionID = text(obj, "", "session_id")
	}
	if a.AnalyzedAt.IsZero() {
		a.AnalyzedAt = parseTime(text(obj, "", "analysis_timestamp"))
	}
	if a.ProcessingDurationMs == 0 {
		a.ProcessingDurationMs = int64(count(obj, 0, "processing_duration_ms"))
	}

	a.Transcription, a.Translation = transcriptionSection(obj, meta)
	a.Emotional = emotionalSection(section(obj, "emotional_analysis"))
	a.Structure = structureSection(section(obj, "structure_analysis"))
	a.Satisfaction = satisfactionSection(section(obj, "satisfaction_analysis"))
	a.Politeness = politenessSection(section(obj, "politeness_analysis"))
	a.Resolution = resolutionSection(section(obj, "resolution_analysis"))
	a.Pauses = pauseSection(section(obj, "pause_analysis"))
	a.Summary = summarySection(section(obj, "summary"))
	a.Categorization = categorizationSection(section(obj, "categorization"))

	a.RequiresImmediateReview = flag(obj, false, "requires_immediate_review")
	a.CriticalIssues = strs(obj, "critical_issues")
	a.TopRecommendations = strs(obj, "top_recommendations")
	a.Degraded = flag(obj, false, "degraded")

	scoring.ScoreComprehensive(&a)
	return a
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func transcriptionSection(obj map[string]any, meta types.Meta) (types.Transcription, types.Translation) {
	tr := section(obj, "transcription")
	tl := section(obj, "translation")

	segs, tsegs, _ := pairSegments(asList(tr["segments"]), asList(tl["translated_segments"]), types.SpeakerAgent)

	full := text(tr, "", "full_text")
	if full == "" {
		full = joinText(segs)
	}
	duration := num(tr, 0, "total_duration_seconds", "total_duration")
	for _, d := range []float64{maxEnd(segs), meta.TotalDuration} {
		if d > duration {
			duration = d
		}
	}
	transcription := types.Transcription{
		OriginalLanguage:     types.ParseLanguage(text(tr, "", "original_language", "language")),
		Segments:             segs,
		FullText:             full,
		TotalDurationSeconds: duration,
		Confidence:           unit(tr, defaultConfidence, "transcription_confidence", "confidence"),
		WordCount:            len(strings.Fields(full)),
	}

	translatedText := text(tl, "", "full_translated_text", "full_text")
	if translatedText == "" {
		translatedText = joinText(tsegs)
	}
	translation := types.Translation{
		TargetLanguage: types.LanguageLithuanian,
		Segments:       tsegs,
		FullText:       translatedText,
		Notes:          text(tl, "", "translation_notes"),
	}
	return transcription, translation
}

func emotionalSection(s map[string]any) types.EmotionalAnalysis {
	return types.EmotionalAnalysis{
		CustomerOverallEmotion: types.ParseEmotionalTone(text(s, "", "customer_overall_emotion")),
		CustomerEmotionProgression: entries(s, func(e map[string]any) (types.EmotionalMoment, bool) {
			ts, ok := timestamp(e, "timestamp", "timestamp_start")
			if !ok {
				return types.EmotionalMoment{}, false
			}
			return types.EmotionalMoment{
				Timestamp:     ts,
				Speaker:       types.ParseParty(text(e, "customer", "speaker")),
				Emotion:       types.ParseEmotionalTone(text(e, "", "emotion")),
				Intensity:     unit(e, defaultWeight, "intensity", "confidence"),
				TriggerPhrase: text(e, "", "trigger_phrase", "trigger"),
			}, true
		}, "customer_emotion_progression"),
		CustomerEmotionSummary:   text(s, "", "customer_emotion_summary"),
		AgentOverallTone:         types.ParseEmotionalTone(text(s, "", "agent_overall_tone")),
		AgentEmpathyScore:        score(s, defaultScore, "agent_empathy_score"),
		AgentPolitenessScore:     score(s, defaultScore, "agent_politeness_score"),
		AgentRespectScore:        score(s, defaultScore, "agent_respect_score"),
		ToneAppropriatenessScore: score(s, defaultScore, "tone_appropriateness_score"),
		ToneMismatches: entries(s, func(e map[string]any) (types.ToneMismatch, bool) {
			ts, ok := timestamp(e, "timestamp")
			if !ok {
				return types.ToneMismatch{}, false
			}
			return types.ToneMismatch{
				Timestamp:      ts,
				CustomerTone:   text(e, "neutral", "customer_tone"),
				AgentTone:      text(e, "neutral", "agent_tone"),
				Severity:       types.ParseMismatchSeverity(text(e, "", "mismatch_severity", "severity")),
				Recommendation: text(e, "", "recommendation"),
			}, true
		}, "tone_mismatches"),
		Recommendations: strs(s, "recommendations"),
	}
}

func structureSection(s map[string]any) types.StructureAnalysis {
	return types.StructureAnalysis{
		DetectedStages: entries(s, func(e map[string]any) (types.StageOccurrence, bool) {
			start, ok := timestamp(e, startKeys...)
			if !ok {
				return types.StageOccurrence{}, false
			}
			end, ok := timestamp(e, endKeys...)
			if !ok || end < start {
				return types.StageOccurrence{}, false
			}
			return types.StageOccurrence{
				Stage:        types.ParseStage(text(e, "", "stage", "stage_type")),
				Present:      flag(e, true, "present"),
				Start:        start,
				End:          end,
				QualityScore: score(e, defaultStageQuality, "quality_score"),
				Deviations:   strs(e, "deviations"),
			}, true
		}, "detected_stages"),
		ExpectedStages:   enums(s, types.ParseStage, "expected_stages"),
		MissingStages:    enums(s, types.ParseStage, "missing_stages"),
		OutOfOrderStages: enums(s, types.ParseStage, "out_of_order_stages"),
		ComplianceScore:  score(s, defaultScore, "structure_compliance_score"),
		MajorDeviations:  strs(s, "major_deviations"),
		Summary:          text(s, "", "structure_summary"),
	}
}

func satisfactionSection(s map[string]any) types.SatisfactionAnalysis {
	overall := types.ParseSatisfactionLevel(text(s, "", "overall_satisfaction"))
	return types.SatisfactionAnalysis{
		Overall: overall,
		Score:   score(s, defaultScore, "satisfaction_score"),
		Indicators: entries(s, func(e map[string]any) (types.SatisfactionIndicator, bool) {
			ts, ok := timestamp(e, "timestamp")
			if !ok {
				return types.SatisfactionIndicator{}, false
			}
			return types.SatisfactionIndicator{
				Timestamp:  ts,
				Type:       types.ParseIndicatorType(text(e, "", "indicator_type", "type")),
				Content:    text(e, "", "content", "indicator"),
				Impact:     types.ParseImpact(text(e, "", "impact", "sentiment")),
				Confidence: unit(e, defaultWeight, "confidence", "weight"),
			}, true
		}, "satisfaction_indicators"),
		PositiveSignals:  strs(s, "positive_signals"),
		NegativeSignals:  strs(s, "negative_signals"),
		Trend:            types.ParseTrend(text(s, "", "satisfaction_trend", "trend")),
		EndCall:          types.ParseSatisfactionLevel(text(s, string(overall), "end_call_satisfaction")),
		RequiresFollowUp: flag(s, false, "requires_follow_up"),
		FollowUpReason:   text(s, "", "follow_up_reason"),
	}
}

func politenessElement(e map[string]any) (types.PolitenessElement, bool) {
	ts, ok := timestamp(e, "timestamp")
	if !ok {
		return types.PolitenessElement{}, false
	}
	return types.PolitenessElement{
		Type:                  types.ParsePolitenessElementType(text(e, "", "element_type", "type")),
		Text:                  text(e, "", "text"),
		Speaker:               types.ParseParty(text(e, "agent", "speaker")),
		Timestamp:             ts,
		CulturallyAppropriate: flag(e, true, "culturally_appropriate"),
		Appropriateness:       types.ParseAppropriateness(text(e, "", "appropriateness")),
	}, true
}

func politenessSection(s map[string]any) types.PolitenessAnalysis {
	return types.PolitenessAnalysis{
		DetectedElements:             entries(s, politenessElement, "detected_elements"),
		AgentGreetingPresent:         flag(s, false, "agent_greeting_present"),
		AgentFarewellPresent:         flag(s, false, "agent_farewell_present"),
		AgentThanksPresent:           flag(s, false, "agent_thanks_present"),
		AgentApologiesCount:          count(s, 0, "agent_apologies_count"),
		CustomerGreetingPresent:      flag(s, false, "customer_greeting_present"),
		CustomerFarewellPresent:      flag(s, false, "customer_farewell_present"),
		CustomerThanksPresent:        flag(s, false, "customer_thanks_present"),
		Score:                        score(s, defaultScore, "politeness_score"),
		MissingRequiredElements:      strs(s, "missing_required_elements"),
		CulturalAppropriatenessScore: score(s, defaultScore, "cultural_appropriateness_score"),
		Recommendations:              strs(s, "recommendations"),
	}
}

func resolutionSection(s map[string]any) types.ResolutionAnalysis {
	return types.ResolutionAnalysis{
		ProblemStatement:     nonEmpty(s, notIdentified, "problem_statement"),
		ProblemCategory:      types.ParseCategory(text(s, "", "problem_category")),
		Status:               types.ParseProblemStatus(text(s, "", "resolution_status")),
		Confidence:           unit(s, defaultWeight, "resolution_confidence"),
		UnresolvedIndicators: strs(s, "unresolved_indicators"),
		Attempts: entries(s, func(e map[string]any) (types.ResolutionAttempt, bool) {
			action := text(e, "", "action")
			if action == "" {
				return types.ResolutionAttempt{}, false
			}
			return types.ResolutionAttempt{
				Timestamp: text(e, "0", "timestamp"),
				Action:    action,
				Success:   text(e, "false", "success"),
			}, true
		}, "resolution_attempts"),
		CustomerConfirmed:    flag(s, false, "customer_confirmation_of_resolution"),
		RequiresEscalation:   flag(s, false, "requires_escalation"),
		EscalationReason:     text(s, "", "escalation_reason"),
		RecommendedNextSteps: strs(s, "recommended_next_steps"),
		// review fields are recomputed by scoring
		SupervisorReviewRequired: flag(s, false, "supervisor_review_required"),
		ReviewPriority:           types.ParseReviewPriority(text(s, "", "review_priority")),
	}
}

// toPause converts one raw pause. Duration and ComplianceIssue are always
// recomputed; "announced" booleans are mapped onto the status enum.
func toPause(e map[string]any) (types.Pause, bool) {
	start, end, ok := span(e, startKeys, endKeys, durKeys)
	if !ok {
		return types.Pause{}, false
	}
	status := types.AnnouncementUnclear
	if s := text(e, "", "announcement_status"); s != "" {
		status = types.ParseAnnouncementStatus(s)
	} else if v, has := lookup(e, "announced"); has {
		if b, ok := asBool(v); ok {
			status = types.NotAnnounced
			if b {
				status = types.ProperlyAnnounced
			}
		}
	}
	p := types.Pause{
		Start:            start,
		End:              end,
		Duration:         round3(end - start),
		Status:           status,
		AnnouncementText: text(e, "", "announcement_text", "announcement"),
		ContextBefore:    text(e, "", "context_before"),
		ContextAfter:     text(e, "", "context_after"),
		ReasonGiven:      text(e, "", "reason_given", "reason"),
		CustomerResponse: text(e, "", "customer_response"),
		Recommendation:   text(e, "", "recommendation"),
	}
	p.ComplianceIssue = p.Violates()
	return p, true
}

func violations(pauses []types.Pause) int {
	n := 0
	for _, p := range pauses {
		if p.ComplianceIssue {
			n++
		}
	}
	return n
}

func pauseSection(s map[string]any) types.PauseAnalysis {
	long := entries(s, toPause, "long_pauses", "pauses")
	a := types.PauseAnalysis{
		TotalPauses:           count(s, 0, "total_pauses"),
		LongPauses:            long,
		TotalPauseDuration:    num(s, 0, "total_pause_duration"),
		AveragePauseDuration:  num(s, 0, "average_pause_duration"),
		LongestPauseDuration:  num(s, 0, "longest_pause_duration"),
		UnannouncedLongPauses: violations(long),
		ComplianceScore:       score(s, defaultPauseCompliance, "compliance_score"),
		PauseHandlingIssues:   strs(s, "pause_handling_issues"),
		Recommendations:       strs(s, "recommendations"),
	}
	if a.TotalPauses < len(long) {
		a.TotalPauses = len(long)
	}
	var sum float64
	for _, p := range long {
		sum += p.Duration
		if p.Duration > a.LongestPauseDuration {
			a.LongestPauseDuration = p.Duration
		}
	}
	if sum > a.TotalPauseDuration {
		a.TotalPauseDuration = round3(sum)
	}
	return a
}

func summarySection(s map[string]any) types.Summary {
	return types.Summary{
		SummaryLT:              text(s, "", "summary_lt", "summary"),
		KeyPointsLT:            strs(s, "key_points_lt", "key_points"),
		CustomerRequest:        nonEmpty(s, notIdentified, "customer_request"),
		ActionsTaken:           strs(s, "actions_taken"),
		Outcome:                text(s, "", "outcome"),
		FollowUpRequired:       flag(s, false, "follow_up_required"),
		FollowUpActions:        strs(s, "follow_up_actions"),
		AgentPerformanceNotes:  text(s, "", "agent_performance_notes"),
		ImprovementSuggestions: strs(s, "improvement_suggestions"),
	}
}

func categorizationSection(s map[string]any) types.Categorization {
	return types.Categorization{
		Primary:             types.ParseCategory(text(s, "", "primary_category")),
		Secondary:           enums(s, types.ParseCategory, "secondary_categories"),
		Tags:                strs(s, "tags"),
		CustomerType:        types.ParseCustomerType(text(s, "", "customer_type")),
		ServicesMentioned:   strs(s, "service_mentioned", "services_mentioned"),
		UrgencyLevel:        types.ParseUrgency(text(s, "", "urgency_level")),
		SearchableKeywords:  strs(s, "searchable_keywords"),
		AutoGeneratedLabels: strs(s, "auto_generated_labels"),
	}
}
