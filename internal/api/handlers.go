package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"call-quality-go/internal/logger"
	"call-quality-go/internal/processor"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
	"call-quality-go/internal/types"
)

// Handler serves the session, transcript and analysis endpoints.
type Handler struct {
	log         *logger.Logger
	sessions    *sessions.Repository
	transcripts *transcription.Service
	analyzer    *processor.Analyzer
	urlTTL      time.Duration
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "ok")
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sessions.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids, "count": len(ids)})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "sessionID")
	meta, err := h.sessions.Metadata(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	_, hasTranscript := h.transcripts.Cached(ctx, id)
	_, hasAnalysis := h.analyzer.CachedAnalysis(ctx, id)
	_, hasConversation := h.analyzer.CachedConversation(ctx, id)
	resp := map[string]any{
		"session_id":                id,
		"metadata":                  meta,
		"has_transcription":         hasTranscript,
		"has_analysis":              hasAnalysis,
		"has_conversation_analysis": hasConversation,
	}
	if audio, err := h.sessions.LocateAudio(ctx, id); err == nil {
		resp["audio_key"] = audio.Key
		resp["audio_mime_type"] = audio.MIMEType
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AudioURL(w http.ResponseWriter, r *http.Request) {
	url, audio, err := h.sessions.AudioURL(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":                url,
		"mime_type":          audio.MIMEType,
		"expires_in_seconds": int(h.urlTTL.Seconds()),
	})
}

func (h *Handler) GetTranscription(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.cachedTranscript(w, r)
	if ok {
		writeJSON(w, http.StatusOK, tr)
	}
}

func (h *Handler) CreateTranscription(w http.ResponseWriter, r *http.Request) {
	tr, err := h.transcripts.Transcribe(r.Context(), chi.URLParam(r, "sessionID"), force(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (h *Handler) TranscriptionText(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.cachedTranscript(w, r)
	if !ok {
		return
	}
	translated, _ := strconv.ParseBool(r.URL.Query().Get("translated"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, tr.Text(translated))
}

func (h *Handler) SpeakerStats(w http.ResponseWriter, r *http.Request) {
	tr, ok := h.cachedTranscript(w, r)
	if ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"num_speakers":   tr.NumSpeakers,
			"total_duration": tr.TotalDuration,
			"speakers":       tr.SpeakerStats(),
		})
	}
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyzer.CachedAnalysis(r.Context(), chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.analyzer.Analyze(r.Context(), chi.URLParam(r, "sessionID"), force(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyzer.CachedConversation(r.Context(), chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	a, err := h.analyzer.ReviewConversation(r.Context(), chi.URLParam(r, "sessionID"), force(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) ConversationSummary(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyzer.CachedConversation(r.Context(), chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, processor.Summarize(a))
}

func (h *Handler) cachedTranscript(w http.ResponseWriter, r *http.Request) (types.Transcript, bool) {
	tr, ok := h.transcripts.Cached(r.Context(), chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "transcription not found")
	}
	return tr, ok
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, sessions.ErrNoAudio),
		errors.Is(err, transcription.ErrNotAvailable),
		errors.Is(err, processor.ErrNotAvailable):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.WithSession(chi.URLParam(r, "sessionID")).
			WithField("path", r.URL.Path).
			WithField("error", err.Error()).
			Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func force(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
