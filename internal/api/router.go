package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"call-quality-go/internal/logger"
	"call-quality-go/internal/processor"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	Sessions       *sessions.Repository
	Transcripts    *transcription.Service
	Analyzer       *processor.Analyzer
	MetricsHandler http.Handler
	SignedURLTTL   time.Duration
}

// New creates a Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.New()
	}
	h := &Handler{
		log:         cfg.Logger,
		sessions:    cfg.Sessions,
		transcripts: cfg.Transcripts,
		analyzer:    cfg.Analyzer,
		urlTTL:      cfg.SignedURLTTL,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger))

	r.Get("/healthz", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Get("/audio-url", h.AudioURL)

			r.Get("/transcription", h.GetTranscription)
			r.Post("/transcription", h.CreateTranscription)
			r.Get("/transcription/text", h.TranscriptionText)
			r.Get("/transcription/speakers", h.SpeakerStats)

			r.Get("/analysis", h.GetAnalysis)
			r.Post("/analysis", h.CreateAnalysis)

			r.Get("/conversation-analysis", h.GetConversation)
			r.Post("/conversation-analysis", h.CreateConversation)
			r.Get("/conversation-analysis/summary", h.ConversationSummary)
		})
	})
	return r
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithRequest(r).
				WithField("status", ww.Status()).
				WithField("duration_ms", time.Since(start).Milliseconds()).
				Info("request handled")
		})
	}
}
