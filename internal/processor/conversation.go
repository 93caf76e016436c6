package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"call-quality-go/internal/cache"
	"call-quality-go/internal/extractor"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/types"
)

// CachedConversation returns the stored conversation analysis, if any.
func (a *Analyzer) CachedConversation(ctx context.Context, sessionID string) (types.ConversationAnalysis, bool) {
	return a.conversations.Fetch(ctx, sessionID)
}

// ReviewConversation analyzes pauses, resolution and politeness from the
// session's transcript. The transcript must already exist.
func (a *Analyzer) ReviewConversation(ctx context.Context, sessionID string, force bool) (types.ConversationAnalysis, error) {
	log := a.log.WithField("session_id", sessionID)

	tr, ok := a.transcripts.Cached(ctx, sessionID)
	if !ok {
		return types.ConversationAnalysis{}, fmt.Errorf("%w: session %s has no transcript", ErrNotAvailable, sessionID)
	}
	meta := types.Meta{SessionID: sessionID, TotalDuration: tr.TotalDuration}

	result, err := a.conversations.GetOrCreate(ctx, sessionID, func(ctx context.Context) (cache.Produced, error) {
		answer, err := a.oracle.Generate(ctx, oracle.Request{
			Task:        oracle.TaskConversation,
			Prompt:      extractor.BuildConversationPrompt(tr),
			Temperature: conversationTemperature,
		})
		if err != nil {
			return cache.Produced{}, err
		}
		raw, err := extractor.Decode(answer)
		if err != nil {
			return cache.Produced{}, err
		}
		m := meta
		m.AnalyzedAt = time.Now().UTC()
		return cache.Produced{Raw: raw, Meta: m}, nil
	}, force)
	if err != nil {
		if errors.Is(err, ErrNotAvailable) {
			return types.ConversationAnalysis{}, err
		}
		log.Errorf("conversation analysis failed, returning degraded result: %v", err)
		meta.AnalyzedAt = time.Now().UTC()
		result = extractor.DegradedConversation(meta)
	}
	if result.Degraded {
		a.metrics.ObserveDegraded(string(oracle.TaskConversation))
	}

	log.WithFields(logrus.Fields{
		"requires_review": result.Required,
		"priority":        result.Priority,
		"violations":      result.ComplianceViolations,
	}).Info("conversation analysis ready")
	return result, nil
}

// Summary is the quick view of a conversation analysis.
type Summary struct {
	SessionID            string                 `json:"session_id"`
	RequiresReview       bool                   `json:"requires_review"`
	ReviewPriority       types.ReviewPriority   `json:"review_priority"`
	ReviewReasons        []string               `json:"review_reasons"`
	ComplianceViolations int                    `json:"compliance_violations"`
	ResolutionStatus     types.ResolutionStatus `json:"resolution_status"`
	UnresolvedCount      int                    `json:"unresolved_count"`
	LongPausesCount      int                    `json:"long_pauses_count"`
	PauseComplianceScore float64                `json:"pause_compliance_score"`
	Degraded             bool                   `json:"degraded,omitempty"`
}

func Summarize(a types.ConversationAnalysis) Summary {
	return Summary{
		SessionID:            a.SessionID,
		RequiresReview:       a.Required,
		ReviewPriority:       a.Priority,
		ReviewReasons:        a.Reasons,
		ComplianceViolations: a.ComplianceViolations,
		ResolutionStatus:     a.ResolutionStatus,
		UnresolvedCount:      len(a.UnresolvedIssues),
		LongPausesCount:      len(a.LongPauses),
		PauseComplianceScore: a.PauseComplianceScore,
		Degraded:             a.Degraded,
	}
}
