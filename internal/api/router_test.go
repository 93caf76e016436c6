package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/cache"
	"call-quality-go/internal/metrics"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/processor"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
	"call-quality-go/internal/types"
)

func newServer(t *testing.T, o oracle.Oracle) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	store := blobstore.NewMemory()
	require.NoError(t, store.Put(ctx, "sessions/call-1/recording.wav", []byte("RIFF"), "audio/wav"))
	require.NoError(t, store.Put(ctx, "sessions/call-1/session.json", []byte(`{"agent":"Ona"}`), "application/json"))
	require.NoError(t, store.Put(ctx, "sessions/call-2/notes.txt", []byte("no audio"), "text/plain"))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := sessions.NewRepository(store, "sessions/", time.Hour, nil)
	transcripts := transcription.NewService(o, repo, cache.NewManager(cache.TranscriptKind(), repo, nil, m, nil), nil)
	analyzer := processor.NewAnalyzer(processor.Deps{
		Oracle:        o,
		Repo:          repo,
		Transcripts:   transcripts,
		Analyses:      cache.NewManager(cache.AnalysisKind(), repo, nil, m, nil),
		Conversations: cache.NewManager(cache.ConversationKind(), repo, nil, m, nil),
		Metrics:       m,
	})

	srv := httptest.NewServer(New(&Config{
		Sessions:       repo,
		Transcripts:    transcripts,
		Analyzer:       analyzer,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		SignedURLTTL:   time.Hour,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t, oracle.Mock{})

	status, body := do(t, http.MethodGet, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))

	do(t, http.MethodGet, srv.URL+"/sessions/call-1/analysis")
	status, body = do(t, http.MethodGet, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "callquality_cache_lookups_total")
}

func TestSessions(t *testing.T) {
	srv := newServer(t, oracle.Mock{})

	status, body := do(t, http.MethodGet, srv.URL+"/sessions")
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Sessions []string `json:"sessions"`
		Count    int      `json:"count"`
	}
	decode(t, body, &list)
	assert.Equal(t, []string{"call-1", "call-2"}, list.Sessions)

	status, body = do(t, http.MethodGet, srv.URL+"/sessions/call-1")
	require.Equal(t, http.StatusOK, status)
	var detail map[string]any
	decode(t, body, &detail)
	assert.Equal(t, "Ona", detail["metadata"].(map[string]any)["agent"])
	assert.Equal(t, false, detail["has_transcription"])
	assert.Equal(t, "audio/wav", detail["audio_mime_type"])

	status, body = do(t, http.MethodGet, srv.URL+"/sessions/call-1/audio-url")
	require.Equal(t, http.StatusOK, status)
	var audio map[string]any
	decode(t, body, &audio)
	assert.Contains(t, audio["url"], "sessions/call-1/recording.wav")
	assert.Equal(t, 3600.0, audio["expires_in_seconds"])

	status, _ = do(t, http.MethodGet, srv.URL+"/sessions/call-2/audio-url")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTranscriptionFlow(t *testing.T) {
	srv := newServer(t, oracle.Mock{})
	base := srv.URL + "/sessions/call-1"

	status, _ := do(t, http.MethodGet, base+"/transcription")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, http.MethodPost, base+"/transcription")
	require.Equal(t, http.StatusOK, status)
	var tr types.Transcript
	decode(t, body, &tr)
	assert.Len(t, tr.Translated, 5)

	status, body = do(t, http.MethodGet, base+"/transcription/text?translated=true")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasPrefix(string(body), "[0.0s - 4.5s] SPEAKER1: Laba diena"))

	status, body = do(t, http.MethodGet, base+"/transcription/speakers")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"num_speakers":2`)

	status, _ = do(t, http.MethodPost, srv.URL+"/sessions/call-2/transcription")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalysisFlow(t *testing.T) {
	srv := newServer(t, oracle.Mock{})
	base := srv.URL + "/sessions/call-1"

	status, body := do(t, http.MethodPost, base+"/analysis")
	require.Equal(t, http.StatusOK, status)
	var a types.ComprehensiveAnalysis
	decode(t, body, &a)
	assert.Equal(t, 74.75, a.OverallQualityScore)

	status, _ = do(t, http.MethodGet, base+"/analysis")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, http.MethodPost, base+"/conversation-analysis")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodPost, base+"/transcription")
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodPost, base+"/conversation-analysis?force=true")
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, http.MethodGet, base+"/conversation-analysis/summary")
	require.Equal(t, http.StatusOK, status)
	var s processor.Summary
	decode(t, body, &s)
	assert.Equal(t, "call-1", s.SessionID)
	assert.Equal(t, 1, s.LongPausesCount)
}

func TestAnalysisDegradesInsteadOfFailing(t *testing.T) {
	srv := newServer(t, oracle.Func(func(context.Context, oracle.Request) (string, error) {
		return "", errors.New("model overloaded")
	}))

	status, body := do(t, http.MethodPost, srv.URL+"/sessions/call-1/analysis")
	require.Equal(t, http.StatusOK, status)
	var a types.ComprehensiveAnalysis
	decode(t, body, &a)
	assert.True(t, a.Degraded)
	assert.True(t, a.RequiresImmediateReview)

	status, _ = do(t, http.MethodGet, srv.URL+"/sessions/call-1/analysis")
	assert.Equal(t, http.StatusNotFound, status)
}
