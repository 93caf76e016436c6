package transcription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"call-quality-go/internal/cache"
	"call-quality-go/internal/extractor"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/types"
)

// ErrNotAvailable is returned when a session has no recording to transcribe.
var ErrNotAvailable = errors.New("transcription: not available")

const temperature = 0.1

// Service produces bilingual diarized transcripts and caches them as
// sessions/<id>/transcription.json.
type Service struct {
	oracle oracle.Oracle
	repo   *sessions.Repository
	cache  *cache.Manager[types.Transcript]
	log    *logrus.Entry
}

func NewService(o oracle.Oracle, repo *sessions.Repository, c *cache.Manager[types.Transcript], log *logrus.Entry) *Service {
	return &Service{
		oracle: o,
		repo:   repo,
		cache:  c,
		log:    logger.Component(log, "transcription"),
	}
}

// Cached returns the stored transcript without calling the oracle.
func (s *Service) Cached(ctx context.Context, sessionID string) (types.Transcript, bool) {
	return s.cache.Fetch(ctx, sessionID)
}

// Transcribe returns the cached transcript or produces a new one. force
// skips the cache. A transcript without translation is never served from
// the cache, so it is regenerated here.
func (s *Service) Transcribe(ctx context.Context, sessionID string, force bool) (types.Transcript, error) {
	log := s.log.WithField("session_id", sessionID)
	tr, err := s.cache.GetOrCreate(ctx, sessionID, func(ctx context.Context) (cache.Produced, error) {
		started := time.Now()
		audio, meta, err := s.repo.LoadAudio(ctx, sessionID)
		if errors.Is(err, sessions.ErrNoAudio) {
			return cache.Produced{}, fmt.Errorf("%w: %v", ErrNotAvailable, err)
		}
		if err != nil {
			return cache.Produced{}, err
		}

		log.WithFields(logrus.Fields{"audio": meta.Key, "bytes": len(audio)}).Info("requesting transcript")
		answer, err := s.oracle.Generate(ctx, oracle.Request{
			Task:        oracle.TaskTranscription,
			Prompt:      extractor.TranscriptionPrompt,
			Audio:       audio,
			MIMEType:    meta.MIMEType,
			Temperature: temperature,
		})
		if err != nil {
			return cache.Produced{}, err
		}
		raw, err := extractor.Decode(answer)
		if err != nil {
			return cache.Produced{}, err
		}
		return cache.Produced{Raw: raw, Meta: types.Meta{SessionID: sessionID, Processing: time.Since(started)}}, nil
	}, force)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcribe %s: %w", sessionID, err)
	}

	log.WithFields(logrus.Fields{
		"segments": len(tr.Original),
		"speakers": tr.NumSpeakers,
		"duration": tr.TotalDuration,
	}).Info("transcript ready")
	return tr, nil
}
