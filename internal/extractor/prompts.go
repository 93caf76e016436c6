package extractor

import (
	"fmt"
	"strings"

	"call-quality-go/internal/types"
)

// gaps and silences shorter than this are not marked in the analysis input
const markerThreshold = 2.0

// TranscriptionPrompt asks for a bilingual diarized transcript in the
// transcription.json shape.
const TranscriptionPrompt = `This is a telephone audio conversation. Transcribe it with speaker diarization and timestamps, then translate to Lithuanian.

Instructions:
1. Identify different speakers (up to 5) and label them as speaker1, speaker2, etc.
2. Include timestamps for each segment (timestamp_start, timestamp_end, in seconds).
3. Mark silence periods longer than 3 seconds with speaker_label="silence".
4. Each segment must have a unique interval_id starting from 1.
5. Keep text segments natural and complete (don't cut mid-sentence).
6. Detect the original language and store it in original_language (lt, en, ru, pl or unknown).
7. Provide TWO transcriptions:
   - "transcription": original language
   - "lithuanian_transcription": the same segments translated to Lithuanian, with the SAME timestamps, speaker labels and order
8. For silence segments, use an empty string for text in both transcriptions.
9. Also return total_duration (seconds) and num_speakers.

Return ONLY valid JSON:
{"transcription": [{"speaker_label": "", "timestamp_start": 0.0, "timestamp_end": 0.0, "text": "", "interval_id": 1}],
 "lithuanian_transcription": [...], "total_duration": 0.0, "num_speakers": 0, "original_language": ""}`

// ComprehensivePrompt asks for the full rubric in the gemini_analysis.json
// shape. The schema is described, not enforced; see ReconcileComprehensive.
const ComprehensivePrompt = `Analyze this customer service call recording and provide a comprehensive structured analysis.

REQUIRED SECTIONS (top-level JSON keys):
1. "transcription": original_language (lt/en/ru/pl), segments [{speaker (customer/agent/system), text, start_time, end_time, confidence}], full_text, total_duration_seconds, transcription_confidence.
2. "translation": translated_segments (same timestamps and speakers, Lithuanian text), full_translated_text, translation_notes.
3. "emotional_analysis": customer_overall_emotion, customer_emotion_progression [{timestamp, speaker, emotion, intensity, trigger_phrase}], customer_emotion_summary, agent_overall_tone, agent_empathy_score, agent_politeness_score, agent_respect_score, tone_appropriateness_score, tone_mismatches [{timestamp, customer_tone, agent_tone, mismatch_severity, recommendation}], recommendations.
4. "structure_analysis": detected_stages [{stage, present, start_time, end_time, quality_score, deviations}], expected_stages, missing_stages, out_of_order_stages, structure_compliance_score, major_deviations, structure_summary.
   Stages: greeting, problem_identification, information_gathering, solution_presentation, problem_resolution, closure, farewell.
5. "satisfaction_analysis": overall_satisfaction (very_satisfied/satisfied/neutral/dissatisfied/very_dissatisfied), satisfaction_score, satisfaction_indicators [{timestamp, indicator_type (phrase/sentiment/tone), content, impact (positive/negative/neutral), confidence}], positive_signals, negative_signals, satisfaction_trend (improving/stable/declining), end_call_satisfaction, requires_follow_up, follow_up_reason.
6. "politeness_analysis": detected_elements [{element_type (greeting/farewell/thanks/apology/please/courtesy_phrase), text, speaker, timestamp, culturally_appropriate}], agent_greeting_present, agent_farewell_present, agent_thanks_present, agent_apologies_count, customer_greeting_present, customer_farewell_present, customer_thanks_present, politeness_score, missing_required_elements, cultural_appropriateness_score, recommendations.
7. "resolution_analysis": problem_statement, problem_category, resolution_status (resolved/partially_resolved/unresolved/escalated/pending), resolution_confidence, unresolved_indicators, resolution_attempts [{timestamp, action, success}], customer_confirmation_of_resolution, requires_escalation, escalation_reason, recommended_next_steps, supervisor_review_required, review_priority (high/medium/low).
8. "pause_analysis": total_pauses, long_pauses [{timestamp_start, timestamp_end, duration_seconds, announced, announcement_text, reason_given, customer_response}] for pauses longer than 60 seconds, total_pause_duration, average_pause_duration, longest_pause_duration, unannounced_long_pauses, compliance_score, pause_handling_issues, recommendations.
9. "summary": summary_lt and key_points_lt in Lithuanian, customer_request, actions_taken, outcome, follow_up_required, follow_up_actions, agent_performance_notes, improvement_suggestions.
10. "categorization": primary_category (general_info/application_inquiry/technical_support/billing_issue/complaint/service_request/cancellation/other), secondary_categories, tags, customer_type (new/existing/vip/problematic/unknown), service_mentioned, urgency_level (urgent/normal/low), searchable_keywords, auto_generated_labels.
Also: requires_immediate_review, critical_issues, top_recommendations (3-5 items).

IMPORTANT:
- Be precise with timestamps (seconds).
- Use Lithuanian cultural context for politeness and satisfaction.
- All scores are 0-100; confidences are 0.0-1.0; booleans are true/false.
- Return ONLY the JSON object. No commentary, no markdown fences.`

// BuildConversationPrompt asks for the pause/resolution analysis of an
// already transcribed call.
func BuildConversationPrompt(t types.Transcript) string {
	prompt := `Analyze this customer service conversation transcript for quality and compliance issues.

CONVERSATION TRANSCRIPT:
%s

TOTAL DURATION: %.1f seconds

ANALYSIS REQUIREMENTS:

1. PAUSE ANALYSIS (total_pauses, long_pauses, compliance_violations, pause_compliance_score):
- Identify ALL pauses longer than 60 seconds. The [PAUSE] and [SILENCE] markers show gaps.
- For each pause give timestamp_start, timestamp_end, duration_seconds, announcement_status (properly_announced/not_announced/unclear), announcement_text, context_before, context_after, recommendation.
- Proper announcements include "please wait", "one moment", "let me check", "hold on".

2. RESOLUTION ANALYSIS (resolution_status, unresolved_issues, customer_satisfaction_indicators):
- resolution_status: resolved/unresolved/unclear/partial.
- unresolved_issues: timestamp, customer_statement, issue_description, agent_response (in Lithuanian), severity (low/medium/high/critical), requires_followup.
- Look for "still not working", "problem remains", "didn't help", "will call back", "not satisfied".
- Set requires_escalation and escalation_reason if the customer asks for a supervisor or the agent escalates.

3. POLITENESS (politeness_elements, has_greeting, has_farewell, has_thanks, politeness_score):
- element_type (greeting/farewell/thanks/apology/courtesy_phrase), speaker (agent/customer), timestamp, text, appropriateness (excellent/good/adequate/poor/missing).

4. SATISFACTION (satisfaction_signals, final_satisfaction):
- signal_type (positive/negative/neutral), phrase, timestamp, confidence.
- final_satisfaction: very_satisfied/satisfied/neutral/dissatisfied/very_dissatisfied.

5. TONE (tone_evaluation):
- customer_tone (angry/frustrated/neutral/satisfied/happy), agent_tone (empathetic/professional/neutral/cold/inappropriate), tone_appropriateness (excellent/good/adequate/poor/very_poor), empathy_score, politeness_score, respect_score (0-100), tone_mismatches.

6. STRUCTURE (structure_analysis):
- stages_identified [{stage_type, start_time, end_time, text_snippet, speaker, completeness (complete/partial/missing/unclear), quality_score, deviations}].
- expected_flow: greeting -> problem_identification -> problem_analysis -> solution_presentation -> closure.
- actual_flow, flow_deviations, missing_stages, structure_score, recommendations.

7. SUMMARY: analysis_summary and key_findings, in Lithuanian.

Be specific about timestamps and exact phrases used. Return ONLY valid JSON.`

	return fmt.Sprintf(prompt, FormatForAnalysis(t), t.TotalDuration)
}

// FormatForAnalysis renders the original transcript with explicit markers
// for gaps between segments and for long silences.
func FormatForAnalysis(t types.Transcript) string {
	lines := make([]string, 0, len(t.Original))
	var prevEnd float64
	for _, s := range t.Original {
		if prevEnd > 0 && s.Start-prevEnd > markerThreshold {
			lines = append(lines, fmt.Sprintf("[PAUSE: %.1f seconds from %.1fs to %.1fs]", s.Start-prevEnd, prevEnd, s.Start))
		}
		if s.Speaker.IsSilence() {
			if d := s.Duration(); d > markerThreshold {
				lines = append(lines, fmt.Sprintf("[SILENCE: %.1f seconds from %.1fs to %.1fs]", d, s.Start, s.End))
			}
		} else {
			lines = append(lines, fmt.Sprintf("[%.1fs - %.1fs] %s: %s", s.Start, s.End, strings.ToUpper(string(s.Speaker)), s.Text))
		}
		prevEnd = s.End
	}
	return strings.Join(lines, "\n")
}
