// internal/processor/processor.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"call-quality-go/internal/cache"
	"call-quality-go/internal/extractor"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/metrics"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
	"call-quality-go/internal/types"
)

// ErrNotAvailable is the only error Analyze and ReviewConversation return:
// the session has no recording, or no transcript to review.
var ErrNotAvailable = errors.New("processor: not available")

const (
	analysisTemperature     = 0.3
	conversationTemperature = 0.1
)

// Analyzer runs the comprehensive and conversation analyses for a session.
type Analyzer struct {
	oracle        oracle.Oracle
	repo          *sessions.Repository
	transcripts   *transcription.Service
	analyses      *cache.Manager[types.ComprehensiveAnalysis]
	conversations *cache.Manager[types.ConversationAnalysis]
	metrics       *metrics.Metrics
	log           *logrus.Entry
}

// Deps groups what an Analyzer needs.
type Deps struct {
	Oracle        oracle.Oracle
	Repo          *sessions.Repository
	Transcripts   *transcription.Service
	Analyses      *cache.Manager[types.ComprehensiveAnalysis]
	Conversations *cache.Manager[types.ConversationAnalysis]
	Metrics       *metrics.Metrics
	Log           *logrus.Entry
}

func NewAnalyzer(d Deps) *Analyzer {
	return &Analyzer{
		oracle:        d.Oracle,
		repo:          d.Repo,
		transcripts:   d.Transcripts,
		analyses:      d.Analyses,
		conversations: d.Conversations,
		metrics:       d.Metrics,
		log:           logger.Component(d.Log, "processor"),
	}
}

// CachedAnalysis returns the stored comprehensive analysis, if any.
func (a *Analyzer) CachedAnalysis(ctx context.Context, sessionID string) (types.ComprehensiveAnalysis, bool) {
	return a.analyses.Fetch(ctx, sessionID)
}

// Analyze returns the comprehensive analysis of the session recording. When
// the oracle fails or answers with something that is not JSON, the result is
// the degraded stand-in, which is never persisted.
func (a *Analyzer) Analyze(ctx context.Context, sessionID string, force bool) (types.ComprehensiveAnalysis, error) {
	log := a.log.WithField("session_id", sessionID)
	started := time.Now()

	result, err := a.analyses.GetOrCreate(ctx, sessionID, func(ctx context.Context) (cache.Produced, error) {
		audio, meta, err := a.repo.LoadAudio(ctx, sessionID)
		if errors.Is(err, sessions.ErrNoAudio) {
			return cache.Produced{}, fmt.Errorf("%w: %v", ErrNotAvailable, err)
		}
		if err != nil {
			return cache.Produced{}, err
		}
		answer, err := a.oracle.Generate(ctx, oracle.Request{
			Task:        oracle.TaskAnalysis,
			Prompt:      extractor.ComprehensivePrompt,
			Audio:       audio,
			MIMEType:    meta.MIMEType,
			Temperature: analysisTemperature,
		})
		if err != nil {
			return cache.Produced{}, err
		}
		raw, err := extractor.Decode(answer)
		if err != nil {
			return cache.Produced{}, err
		}
		return cache.Produced{Raw: raw, Meta: types.Meta{
			SessionID:  sessionID,
			AnalyzedAt: time.Now().UTC(),
			Processing: time.Since(started),
		}}, nil
	}, force)

	switch {
	case errors.Is(err, ErrNotAvailable):
		return types.ComprehensiveAnalysis{}, err
	case err != nil:
		log.Errorf("analysis failed, returning degraded result: %v", err)
		result = extractor.Degraded(sessionID, nil, time.Since(started))
		result.AnalyzedAt = time.Now().UTC()
	}
	if result.Degraded {
		a.metrics.ObserveDegraded(string(oracle.TaskAnalysis))
	}

	log.WithFields(logrus.Fields{
		"overall_quality":  result.OverallQualityScore,
		"immediate_review": result.RequiresImmediateReview,
		"degraded":         result.Degraded,
	}).Info("analysis ready")
	return result, nil
}
