// Package cache keeps one reconciled artifact per session and artifact type,
// staged in a fast tier and persisted to the blob store.
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/extractor"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/metrics"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/types"

	"github.com/sirupsen/logrus"
)

// Lookup results reported to metrics.
const (
	resultStaged  = "staged"
	resultStored  = "stored"
	resultMiss    = "miss"
	resultInvalid = "invalid"
)

// Produced is a fresh oracle answer waiting to be reconciled.
type Produced struct {
	Raw  any
	Meta types.Meta
}

// Producer computes an artifact from scratch. It is called at most once per
// GetOrCreate.
type Producer func(ctx context.Context) (Produced, error)

// Kind describes one artifact type.
type Kind[T any] struct {
	Name      string
	File      string
	Reconcile func(raw any, meta types.Meta) T
	// Validate rejects artifacts that must not be served from the cache.
	Validate func(T) error
}

var (
	errNoTranslation = errors.New("transcript has no translation")
	errMisaligned    = errors.New("translation does not line up with the original")
	errDegraded      = errors.New("degraded analysis")
)

// TranscriptKind caches sessions/<id>/transcription.json.
func TranscriptKind() Kind[types.Transcript] {
	return Kind[types.Transcript]{
		Name: "transcription",
		File: sessions.TranscriptionFile,
		Reconcile: func(raw any, _ types.Meta) types.Transcript {
			return extractor.ReconcileTranscript(raw)
		},
		Validate: func(t types.Transcript) error {
			if !t.HasTranslation() {
				return errNoTranslation
			}
			if !t.Aligned() {
				return errMisaligned
			}
			return nil
		},
	}
}

// AnalysisKind caches sessions/<id>/gemini_analysis.json.
func AnalysisKind() Kind[types.ComprehensiveAnalysis] {
	return Kind[types.ComprehensiveAnalysis]{
		Name:      "analysis",
		File:      sessions.AnalysisFile,
		Reconcile: extractor.ReconcileComprehensive,
		Validate: func(a types.ComprehensiveAnalysis) error {
			if a.Degraded {
				return errDegraded
			}
			return nil
		},
	}
}

// ConversationKind caches sessions/<id>/conversation_analysis.json.
func ConversationKind() Kind[types.ConversationAnalysis] {
	return Kind[types.ConversationAnalysis]{
		Name:      "conversation",
		File:      sessions.ConversationFile,
		Reconcile: extractor.ReconcileConversation,
		Validate: func(a types.ConversationAnalysis) error {
			if a.Degraded {
				return errDegraded
			}
			return nil
		},
	}
}

// Manager serves one artifact kind. Concurrent GetOrCreate calls for the same
// session may both produce; the last write wins.
type Manager[T any] struct {
	kind    Kind[T]
	repo    *sessions.Repository
	stage   Stage
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// NewManager wires a manager. A nil stage keeps staged copies in memory.
func NewManager[T any](kind Kind[T], repo *sessions.Repository, stage Stage, m *metrics.Metrics, log *logrus.Entry) *Manager[T] {
	if stage == nil {
		stage = NewMemoryStage()
	}
	return &Manager[T]{
		kind:    kind,
		repo:    repo,
		stage:   stage,
		metrics: m,
		log:     logger.Component(log, "cache").WithField("artifact", kind.Name),
	}
}

func (m *Manager[T]) key(sessionID string) string {
	return m.repo.Key(sessionID, m.kind.File)
}

// Fetch returns a usable cached artifact, checking the stage first and then
// the blob store. Anything unreadable or unusable is a miss.
func (m *Manager[T]) Fetch(ctx context.Context, sessionID string) (T, bool) {
	var zero T
	log := m.log.WithField("session_id", sessionID)
	key := m.key(sessionID)

	data, ok, err := m.stage.Get(ctx, key)
	if err != nil {
		log.Warnf("stage lookup failed: %v", err)
	}
	if ok {
		if v, err := m.decode(sessionID, data); err == nil {
			m.metrics.ObserveCacheLookup(m.kind.Name, resultStaged)
			return v, true
		}
		_ = m.stage.Delete(ctx, key)
	}

	data, err = m.repo.Store().Get(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		m.metrics.ObserveCacheLookup(m.kind.Name, resultMiss)
		return zero, false
	}
	if err != nil {
		log.Warnf("blob lookup failed: %v", err)
		m.metrics.ObserveCacheLookup(m.kind.Name, resultMiss)
		return zero, false
	}

	v, err := m.decode(sessionID, data)
	if err != nil {
		log.Infof("cached artifact unusable, treating as miss: %v", err)
		m.metrics.ObserveCacheLookup(m.kind.Name, resultInvalid)
		return zero, false
	}
	m.stageValue(ctx, key, v)
	m.metrics.ObserveCacheLookup(m.kind.Name, resultStored)
	return v, true
}

// GetOrCreate serves the cached artifact unless force is set or there is
// none, in which case producer runs once and its reconciled answer is
// persisted. Producer errors are returned as is. Persist failures are only
// logged. Results that fail validation are returned but not stored.
func (m *Manager[T]) GetOrCreate(ctx context.Context, sessionID string, producer Producer, force bool) (T, error) {
	if !force {
		if v, ok := m.Fetch(ctx, sessionID); ok {
			return v, nil
		}
	}

	var zero T
	p, err := producer(ctx)
	if err != nil {
		return zero, err
	}
	if p.Meta.SessionID == "" {
		p.Meta.SessionID = sessionID
	}
	v := m.kind.Reconcile(p.Raw, p.Meta)

	log := m.log.WithField("session_id", sessionID)
	if err := m.kind.Validate(v); err != nil {
		log.Warnf("not persisting artifact: %v", err)
		return v, nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Errorf("encode artifact: %v", err)
		return v, nil
	}
	key := m.key(sessionID)
	if err := m.repo.Store().Put(ctx, key, data, "application/json"); err != nil {
		log.Errorf("persist artifact: %v", err)
	}
	if err := m.stage.Set(ctx, key, data); err != nil {
		log.Warnf("stage artifact: %v", err)
	}
	return v, nil
}

// Invalidate drops the staged copy. The persisted blob stays.
func (m *Manager[T]) Invalidate(ctx context.Context, sessionID string) error {
	return m.stage.Delete(ctx, m.key(sessionID))
}

func (m *Manager[T]) decode(sessionID string, data []byte) (T, error) {
	var zero T
	raw, err := extractor.Decode(string(data))
	if err != nil {
		return zero, err
	}
	v := m.kind.Reconcile(raw, types.Meta{SessionID: sessionID})
	if err := m.kind.Validate(v); err != nil {
		return zero, err
	}
	return v, nil
}

func (m *Manager[T]) stageValue(ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := m.stage.Set(ctx, key, data); err != nil {
		m.log.WithField("key", key).Warnf("stage artifact: %v", err)
	}
}
