package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/cache"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/scoring"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
	"call-quality-go/internal/types"
)

type fixture struct {
	analyzer *Analyzer
	store    *blobstore.Memory
	requests []oracle.Request
}

// newFixture answers transcription with the mock and every other task with
// answer.
func newFixture(t *testing.T, answer func(oracle.Request) (string, error)) *fixture {
	t.Helper()
	f := &fixture{store: blobstore.NewMemory()}
	require.NoError(t, f.store.Put(context.Background(), "sessions/call-1/audio.ogg", []byte("OggS"), "audio/ogg"))
	repo := sessions.NewRepository(f.store, "sessions/", time.Hour, nil)

	o := oracle.Func(func(ctx context.Context, req oracle.Request) (string, error) {
		f.requests = append(f.requests, req)
		if req.Task == oracle.TaskTranscription {
			return oracle.Mock{}.Generate(ctx, req)
		}
		return answer(req)
	})
	transcripts := transcription.NewService(o, repo, cache.NewManager(cache.TranscriptKind(), repo, nil, nil, nil), nil)
	f.analyzer = NewAnalyzer(Deps{
		Oracle:        o,
		Repo:          repo,
		Transcripts:   transcripts,
		Analyses:      cache.NewManager(cache.AnalysisKind(), repo, nil, nil, nil),
		Conversations: cache.NewManager(cache.ConversationKind(), repo, nil, nil, nil),
	})
	return f
}

func mock(req oracle.Request) (string, error) {
	return oracle.Mock{}.Generate(context.Background(), req)
}

func (f *fixture) exists(t *testing.T, name string) bool {
	t.Helper()
	ok, err := f.store.Exists(context.Background(), "sessions/call-1/"+name)
	require.NoError(t, err)
	return ok
}

func TestAnalyzeCachesResult(t *testing.T) {
	f := newFixture(t, mock)
	ctx := context.Background()

	a, err := f.analyzer.Analyze(ctx, "call-1", false)
	require.NoError(t, err)
	assert.False(t, a.Degraded)
	assert.Equal(t, "call-1", a.SessionID)
	assert.Equal(t, 74.75, a.OverallQualityScore)
	assert.Len(t, a.Transcription.Segments, 4)
	assert.Len(t, a.Translation.Segments, 4)
	assert.True(t, f.exists(t, "gemini_analysis.json"))

	require.Len(t, f.requests, 1)
	assert.Equal(t, "audio/ogg", f.requests[0].MIMEType)
	assert.Equal(t, []byte("OggS"), f.requests[0].Audio)

	again, err := f.analyzer.Analyze(ctx, "call-1", false)
	require.NoError(t, err)
	assert.Equal(t, a.OverallQualityScore, again.OverallQualityScore)
	assert.Len(t, f.requests, 1)

	cached, ok := f.analyzer.CachedAnalysis(ctx, "call-1")
	assert.True(t, ok)
	assert.Equal(t, a.SessionID, cached.SessionID)
}

func TestAnalyzeFallsBackWhenOracleFails(t *testing.T) {
	f := newFixture(t, func(oracle.Request) (string, error) {
		return "", errors.New("deadline exceeded")
	})

	a, err := f.analyzer.Analyze(context.Background(), "call-1", false)
	require.NoError(t, err)
	assert.True(t, a.Degraded)
	assert.Equal(t, 0.0, a.OverallQualityScore)
	assert.True(t, a.RequiresImmediateReview)
	assert.Equal(t, []string{"Analysis failed - manual review required"}, a.CriticalIssues)
	assert.Equal(t, types.PriorityUrgent, a.Resolution.ReviewPriority)
	assert.False(t, a.AnalyzedAt.IsZero())
	assert.False(t, f.exists(t, "gemini_analysis.json"))
}

func TestAnalyzeNeverFailsOnOracleOutput(t *testing.T) {
	answers := []string{
		"",
		"I am sorry, I cannot analyze this call.",
		"null",
		"[]",
		"42",
		`{"transcription": `,
		`{"emotional_analysis": "angry", "pause_analysis": [1, 2], "overall_quality_score": "high"}`,
		"```json\n{\"summary\": {\"summary_lt\": \"Trumpas\"}}\n```",
	}
	for _, answer := range answers {
		answer := answer
		t.Run(answer, func(t *testing.T) {
			f := newFixture(t, func(oracle.Request) (string, error) { return answer, nil })
			a, err := f.analyzer.Analyze(context.Background(), "call-1", false)
			require.NoError(t, err)

			_, err = json.Marshal(a)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, a.OverallQualityScore, 0.0)
			assert.LessOrEqual(t, a.OverallQualityScore, 100.0)
			if a.Degraded {
				assert.True(t, a.RequiresImmediateReview)
			}
		})
	}
}

func TestAnalyzeWithoutAudio(t *testing.T) {
	f := newFixture(t, mock)

	_, err := f.analyzer.Analyze(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.Empty(t, f.requests)
}

func TestReviewConversationRequiresTranscript(t *testing.T) {
	f := newFixture(t, mock)

	_, err := f.analyzer.ReviewConversation(context.Background(), "call-1", false)
	assert.ErrorIs(t, err, ErrNotAvailable)
	assert.Empty(t, f.requests)
}

func TestReviewConversation(t *testing.T) {
	f := newFixture(t, mock)
	ctx := context.Background()
	_, err := f.analyzer.transcripts.Transcribe(ctx, "call-1", false)
	require.NoError(t, err)

	a, err := f.analyzer.ReviewConversation(ctx, "call-1", false)
	require.NoError(t, err)
	assert.False(t, a.Degraded)
	assert.Equal(t, 93.0, a.TotalConversationDuration)
	assert.Equal(t, 0, a.ComplianceViolations)
	assert.False(t, a.Required)
	assert.Equal(t, types.PriorityLow, a.Priority)
	assert.True(t, f.exists(t, "conversation_analysis.json"))

	last := f.requests[len(f.requests)-1]
	assert.Equal(t, oracle.TaskConversation, last.Task)
	assert.Empty(t, last.Audio)
	assert.True(t, strings.Contains(last.Prompt, "[SILENCE: 69.0 seconds"))

	cached, ok := f.analyzer.CachedConversation(ctx, "call-1")
	require.True(t, ok)
	assert.Equal(t, a.Priority, cached.Priority)
}

func TestReviewConversationFallsBack(t *testing.T) {
	f := newFixture(t, func(oracle.Request) (string, error) {
		return "", errors.New("quota exhausted")
	})
	ctx := context.Background()
	_, err := f.analyzer.transcripts.Transcribe(ctx, "call-1", false)
	require.NoError(t, err)

	a, err := f.analyzer.ReviewConversation(ctx, "call-1", false)
	require.NoError(t, err)
	assert.True(t, a.Degraded)
	assert.True(t, a.Required)
	assert.Equal(t, types.PriorityHigh, a.Priority)
	assert.Equal(t, []string{scoring.ReasonAnalysisUnavailable}, a.Reasons)
	assert.Equal(t, 93.0, a.TotalConversationDuration)
	assert.False(t, f.exists(t, "conversation_analysis.json"))
}

func TestSummarize(t *testing.T) {
	a := types.ConversationAnalysis{
		SessionID:            "call-9",
		LongPauses:           []types.Pause{{Duration: 70}, {Duration: 10}},
		ComplianceViolations: 1,
		PauseComplianceScore: 50,
		ResolutionStatus:     types.Unresolved,
		UnresolvedIssues:     []types.UnresolvedIssue{{Severity: types.SeverityHigh}},
		ReviewDecision: types.ReviewDecision{
			Required: true,
			Priority: types.PriorityHigh,
			Reasons:  []string{scoring.ReasonUnresolvedHigh},
		},
	}

	s := Summarize(a)
	assert.Equal(t, "call-9", s.SessionID)
	assert.True(t, s.RequiresReview)
	assert.Equal(t, types.PriorityHigh, s.ReviewPriority)
	assert.Equal(t, 1, s.UnresolvedCount)
	assert.Equal(t, 2, s.LongPausesCount)
	assert.Equal(t, 1, s.ComplianceViolations)
	assert.Equal(t, 50.0, s.PauseComplianceScore)
}
