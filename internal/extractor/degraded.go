package extractor

import (
	"strings"
	"time"

	"call-quality-go/internal/scoring"
	"call-quality-go/internal/types"
)

const (
	degradedIssue          = "Analysis failed - manual review required"
	degradedRecommendation = "Manually review this recording"
	degradedFullText       = "Analysis failed"
	degradedTranslatedText = "Analizė nepavyko"
	degradedSummaryLT      = "Analizė nepilna"
	degradedKeyPoint       = "Analizės klaida"
	degradedFollowUp       = "Review recording manually"
)

// Degraded builds the stand-in analysis returned when the oracle failed or
// answered with something that is not JSON. It is schema-valid, scores 0 and
// always asks for immediate review. A transcript found in partialRaw is kept.
func Degraded(sessionID string, partialRaw any, processing time.Duration) types.ComprehensiveAnalysis {
	a := ReconcileComprehensive(map[string]any{}, types.Meta{SessionID: sessionID, Processing: processing})

	a.Transcription.FullText = degradedFullText
	a.Transcription.Confidence = 0.5
	a.Translation.FullText = degradedTranslatedText
	if partial := section(unwrap(partialRaw), "transcription"); len(partial) > 0 {
		if full := text(partial, "", "full_text"); full != "" {
			a.Transcription.FullText = full
		}
	}
	a.Transcription.WordCount = len(strings.Fields(a.Transcription.FullText))

	a.Summary.SummaryLT = degradedSummaryLT
	a.Summary.KeyPointsLT = []string{degradedKeyPoint}
	a.Summary.FollowUpRequired = true
	a.Summary.FollowUpActions = []string{degradedFollowUp}
	a.CriticalIssues = []string{degradedIssue}
	a.TopRecommendations = []string{degradedRecommendation}
	a.Degraded = true

	scoring.ScoreComprehensive(&a)
	return a
}

// DegradedConversation is the conversation-analysis counterpart of Degraded.
func DegradedConversation(meta types.Meta) types.ConversationAnalysis {
	a := ReconcileConversation(map[string]any{}, meta)
	a.AnalysisSummary = degradedTranslatedText
	a.KeyFindings = []string{degradedKeyPoint}
	a.Degraded = true
	scoring.ScoreConversation(&a)
	return a
}
