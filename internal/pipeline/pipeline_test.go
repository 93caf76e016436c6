package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-quality-go/internal/types"
)

type stubTranscriber struct {
	calls []string
	fail  map[string]bool
}

func (s *stubTranscriber) Transcribe(_ context.Context, id string, _ bool) (types.Transcript, error) {
	s.calls = append(s.calls, id)
	if s.fail[id] {
		return types.Transcript{}, errors.New("no audio")
	}
	return types.Transcript{TotalDuration: 10}, nil
}

type stubAnalyzer struct {
	analyzed    []string
	reviewed    []string
	sawDeadline bool
	force       bool
	onAnalyze   func()
}

func (s *stubAnalyzer) Analyze(ctx context.Context, id string, force bool) (types.ComprehensiveAnalysis, error) {
	s.analyzed = append(s.analyzed, id)
	_, s.sawDeadline = ctx.Deadline()
	s.force = force
	if s.onAnalyze != nil {
		s.onAnalyze()
	}
	return types.ComprehensiveAnalysis{SessionID: id}, nil
}

func (s *stubAnalyzer) ReviewConversation(_ context.Context, id string, _ bool) (types.ConversationAnalysis, error) {
	s.reviewed = append(s.reviewed, id)
	return types.ConversationAnalysis{SessionID: id}, nil
}

func TestRunAllSteps(t *testing.T) {
	tr := &stubTranscriber{fail: map[string]bool{"b": true}}
	an := &stubAnalyzer{}
	r := NewRunner(tr, an, Options{Analyze: true, Conversation: true, Force: true, SessionTimeout: time.Minute}, nil)

	rep := r.Run(context.Background(), []string{"a", "b"})
	require.Len(t, rep.Results, 2)
	assert.NotEmpty(t, rep.RunID)

	assert.Equal(t, []string{"a", "b"}, tr.calls)
	assert.Equal(t, []string{"a", "b"}, an.analyzed)
	assert.Equal(t, []string{"a"}, an.reviewed)
	assert.True(t, an.sawDeadline)
	assert.True(t, an.force)

	assert.Empty(t, rep.Results[0].Errors)
	assert.NotNil(t, rep.Results[0].Conversation)
	assert.Equal(t, []string{"transcription: no audio"}, rep.Results[1].Errors)
	assert.Nil(t, rep.Results[1].Conversation)
	assert.Len(t, rep.Analyses(), 2)
}

func TestRunSkipsUnselectedSteps(t *testing.T) {
	tr := &stubTranscriber{}
	an := &stubAnalyzer{}
	rep := NewRunner(tr, an, Options{Analyze: true}, nil).Run(context.Background(), []string{"a"})

	require.Len(t, rep.Results, 1)
	assert.Empty(t, tr.calls)
	assert.Empty(t, an.reviewed)
	assert.False(t, an.sawDeadline)
}

func TestRunStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	an := &stubAnalyzer{onAnalyze: cancel}
	rep := NewRunner(&stubTranscriber{}, an, Options{Analyze: true}, nil).Run(ctx, []string{"a", "b", "c"})

	assert.Len(t, rep.Results, 1)
	assert.Equal(t, []string{"a"}, an.analyzed)
}
