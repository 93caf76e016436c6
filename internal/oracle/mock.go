package oracle

import (
	"context"
	"fmt"
)

// Mock answers every task with a fixed, well-formed document. It backs
// USE_MOCK_LLM=true so the service runs without model credentials.
type Mock struct{}

func (Mock) Generate(_ context.Context, req Request) (string, error) {
	switch req.Task {
	case TaskTranscription:
		return mockTranscription, nil
	case TaskAnalysis:
		return mockAnalysis, nil
	case TaskConversation:
		return mockConversation, nil
	default:
		return "", fmt.Errorf("oracle: mock has no answer for task %q", req.Task)
	}
}

const mockTranscription = `{
  "transcription": [
    {"speaker_label": "speaker1", "timestamp_start": 0, "timestamp_end": 4.5, "text": "Good afternoon, customer support, how can I help?", "interval_id": 1},
    {"speaker_label": "speaker2", "timestamp_start": 4.5, "timestamp_end": 11, "text": "My internet has been down since the morning.", "interval_id": 2},
    {"speaker_label": "speaker1", "timestamp_start": 11, "timestamp_end": 16, "text": "Please stay on the line while I check your connection.", "interval_id": 3},
    {"speaker_label": "silence", "timestamp_start": 16, "timestamp_end": 85, "text": "", "interval_id": 4},
    {"speaker_label": "speaker1", "timestamp_start": 85, "timestamp_end": 93, "text": "Thank you for waiting. I have restarted your line.", "interval_id": 5}
  ],
  "lithuanian_transcription": [
    {"speaker_label": "speaker1", "timestamp_start": 0, "timestamp_end": 4.5, "text": "Laba diena, klientų aptarnavimas, kuo galiu padėti?", "interval_id": 1},
    {"speaker_label": "speaker2", "timestamp_start": 4.5, "timestamp_end": 11, "text": "Mano internetas neveikia nuo ryto.", "interval_id": 2},
    {"speaker_label": "speaker1", "timestamp_start": 11, "timestamp_end": 16, "text": "Prašau palaukti, kol patikrinsiu jūsų ryšį.", "interval_id": 3},
    {"speaker_label": "silence", "timestamp_start": 16, "timestamp_end": 85, "text": "", "interval_id": 4},
    {"speaker_label": "speaker1", "timestamp_start": 85, "timestamp_end": 93, "text": "Ačiū, kad palaukėte. Perkroviau jūsų liniją.", "interval_id": 5}
  ],
  "total_duration": 93,
  "num_speakers": 2,
  "original_language": "en"
}`

const mockAnalysis = `{
  "transcription": {
    "segments": [
      {"speaker": "agent", "text": "Good afternoon, customer support, how can I help?", "start_time": 0, "end_time": 4.5, "confidence": 0.96},
      {"speaker": "customer", "text": "My internet has been down since the morning.", "start_time": 4.5, "end_time": 11, "confidence": 0.93},
      {"speaker": "agent", "text": "Please stay on the line while I check your connection.", "start_time": 11, "end_time": 16, "confidence": 0.95},
      {"speaker": "agent", "text": "Thank you for waiting. I have restarted your line.", "start_time": 85, "end_time": 93, "confidence": 0.94}
    ],
    "original_language": "en",
    "transcription_confidence": 0.94
  },
  "translation": {
    "target_language": "lt",
    "translated_segments": [
      {"speaker": "agent", "text": "Laba diena, klientų aptarnavimas, kuo galiu padėti?", "start_time": 0, "end_time": 4.5},
      {"speaker": "customer", "text": "Mano internetas neveikia nuo ryto.", "start_time": 4.5, "end_time": 11},
      {"speaker": "agent", "text": "Prašau palaukti, kol patikrinsiu jūsų ryšį.", "start_time": 11, "end_time": 16},
      {"speaker": "agent", "text": "Ačiū, kad palaukėte. Perkroviau jūsų liniją.", "start_time": 85, "end_time": 93}
    ]
  },
  "emotional_analysis": {"customer_overall_emotion": "frustrated", "agent_overall_tone": "professional", "tone_appropriateness_score": 82},
  "structure_analysis": {"structure_compliance_score": 75, "missing_stages": ["closing"]},
  "satisfaction_analysis": {"overall_satisfaction": "neutral", "satisfaction_score": 60, "satisfaction_trend": "improving", "end_call_satisfaction": "satisfied"},
  "politeness_analysis": {"politeness_score": 85, "agent_greeting_present": true, "agent_farewell_present": false},
  "resolution_analysis": {"resolution_status": "resolved", "resolution_confidence": 0.8},
  "pause_analysis": {"long_pauses": [{"start_time": 16, "end_time": 85, "announcement_status": "properly_announced", "context_before": "Please stay on the line"}]},
  "summary": {"summary_lt": "Klientas pranešė apie neveikiantį internetą, operatorius perkrovė liniją.", "customer_request": "Restore internet connection"},
  "categorization": {"primary_category": "technical_support", "customer_type": "existing", "urgency_level": "normal"}
}`

const mockConversation = `{
  "long_pauses": [{"timestamp_start": 16, "timestamp_end": 85, "announcement_status": "properly_announced", "context_before": "Please stay on the line"}],
  "resolution_status": "resolved",
  "unresolved_issues": [],
  "politeness_elements": [{"element_type": "greeting", "speaker": "agent", "timestamp": 0, "text": "Good afternoon", "appropriateness": "good"}],
  "has_greeting": true,
  "has_farewell": false,
  "politeness_score": 80,
  "final_satisfaction": "satisfied",
  "tone_evaluation": {"customer_tone": "frustrated", "agent_tone": "professional", "tone_appropriateness": "good", "empathy_score": 75},
  "structure_analysis": {"stages_identified": [{"stage_type": "greeting", "start_time": 0, "end_time": 4.5, "completeness": "complete"}], "structure_score": 70},
  "analysis_summary": "Problema išspręsta, pauzė tinkamai paskelbta.",
  "key_findings": ["Pauzė paskelbta", "Trūksta atsisveikinimo"]
}`
