package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/extractor"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/types"
)

const translatedTranscript = `{
  "transcription": [
    {"speaker_label": "speaker1", "timestamp_start": 0, "timestamp_end": 4, "text": "Good morning"},
    {"speaker_label": "speaker2", "timestamp_start": 4, "timestamp_end": 9, "text": "Hello"}
  ],
  "lithuanian_transcription": [
    {"speaker_label": "speaker1", "timestamp_start": 0, "timestamp_end": 4, "text": "Labas rytas"},
    {"speaker_label": "speaker2", "timestamp_start": 4, "timestamp_end": 9, "text": "Sveiki"}
  ],
  "total_duration": 9,
  "original_language": "en"
}`

const untranslatedTranscript = `{
  "transcription": [
    {"speaker_label": "speaker1", "timestamp_start": 0, "timestamp_end": 4, "text": "Good morning"}
  ]
}`

type countingProducer struct {
	calls int
	raw   string
	err   error
}

func (p *countingProducer) produce(context.Context) (Produced, error) {
	p.calls++
	if p.err != nil {
		return Produced{}, p.err
	}
	var raw any = map[string]any{}
	if p.raw != "" {
		raw = mustRaw(p.raw)
	}
	return Produced{Raw: raw, Meta: types.Meta{AnalyzedAt: time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)}}, nil
}

func mustRaw(s string) any {
	raw, err := extractor.Decode(s)
	if err != nil {
		panic(err)
	}
	return raw
}

type failingPutStore struct {
	blobstore.Store
}

func (failingPutStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket is read-only")
}

func newRepo(store blobstore.Store) *sessions.Repository {
	return sessions.NewRepository(store, "sessions/", time.Hour, nil)
}

func TestGetOrCreateProducesOnceAndPersists(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	m := NewManager(TranscriptKind(), newRepo(store), nil, nil, nil)
	p := &countingProducer{raw: translatedTranscript}

	tr, err := m.GetOrCreate(ctx, "s1", p.produce, false)
	require.NoError(t, err)
	assert.Len(t, tr.Translated, 2)
	assert.Equal(t, 1, p.calls)

	ok, err := store.Exists(ctx, "sessions/s1/transcription.json")
	require.NoError(t, err)
	assert.True(t, ok)

	again, err := m.GetOrCreate(ctx, "s1", p.produce, false)
	require.NoError(t, err)
	assert.Equal(t, tr, again)
	assert.Equal(t, 1, p.calls)

	_, err = m.GetOrCreate(ctx, "s1", p.produce, true)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestFetchTranscriptWithoutTranslationIsMiss(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	require.NoError(t, store.Put(ctx, "sessions/s2/transcription.json", []byte(untranslatedTranscript), "application/json"))
	m := NewManager(TranscriptKind(), newRepo(store), nil, nil, nil)

	_, ok := m.Fetch(ctx, "s2")
	assert.False(t, ok)

	p := &countingProducer{raw: translatedTranscript}
	tr, err := m.GetOrCreate(ctx, "s2", p.produce, false)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.True(t, tr.HasTranslation())

	_, ok = m.Fetch(ctx, "s2")
	assert.True(t, ok)
}

func TestFetchUndecodableBlobIsMiss(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	require.NoError(t, store.Put(ctx, "sessions/s3/gemini_analysis.json", []byte("<html>oops</html>"), "application/json"))
	m := NewManager(AnalysisKind(), newRepo(store), nil, nil, nil)

	_, ok := m.Fetch(ctx, "s3")
	assert.False(t, ok)
}

func TestDegradedResultIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	m := NewManager(AnalysisKind(), newRepo(store), nil, nil, nil)
	p := &countingProducer{raw: `{"degraded": true}`}

	a, err := m.GetOrCreate(ctx, "s4", p.produce, false)
	require.NoError(t, err)
	assert.True(t, a.Degraded)

	ok, err := store.Exists(ctx, "sessions/s4/gemini_analysis.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = m.GetOrCreate(ctx, "s4", p.produce, false)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestPersistedDegradedAnalysisIsMiss(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	require.NoError(t, store.Put(ctx, "sessions/s5/conversation_analysis.json", []byte(`{"degraded": true}`), "application/json"))
	m := NewManager(ConversationKind(), newRepo(store), nil, nil, nil)

	_, ok := m.Fetch(ctx, "s5")
	assert.False(t, ok)
}

func TestProducerErrorIsReturned(t *testing.T) {
	m := NewManager(AnalysisKind(), newRepo(blobstore.NewMemory()), nil, nil, nil)
	boom := errors.New("oracle unavailable")
	p := &countingProducer{err: boom}

	_, err := m.GetOrCreate(context.Background(), "s6", p.produce, false)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.calls)
}

func TestPersistFailureIsNotAnError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ConversationKind(), newRepo(failingPutStore{blobstore.NewMemory()}), nil, nil, nil)
	p := &countingProducer{raw: `{"politeness_score": 90}`}

	a, err := m.GetOrCreate(ctx, "s7", p.produce, false)
	require.NoError(t, err)
	assert.Equal(t, 90.0, a.PolitenessScore)
	assert.Equal(t, "s7", a.SessionID)

	// still served from the stage
	_, err = m.GetOrCreate(ctx, "s7", p.produce, false)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestInvalidateKeepsBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemory()
	m := NewManager(TranscriptKind(), newRepo(store), nil, nil, nil)
	p := &countingProducer{raw: translatedTranscript}

	_, err := m.GetOrCreate(ctx, "s8", p.produce, false)
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(ctx, "s8"))

	_, ok := m.Fetch(ctx, "s8")
	assert.True(t, ok)
	assert.Equal(t, 1, p.calls)
}

func TestRedisStage(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	ctx := context.Background()
	stage := NewRedisStage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	_, ok, err := stage.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, stage.Set(ctx, "k", []byte("v")))
	data, ok, err := stage.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), data)

	mr.FastForward(2 * time.Minute)
	_, ok, err = stage.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, stage.Set(ctx, "k", []byte("v")))
	require.NoError(t, stage.Delete(ctx, "k"))
	_, ok, _ = stage.Get(ctx, "k")
	assert.False(t, ok)
}

func TestManagerPrefersStagedCopy(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	ctx := context.Background()
	store := blobstore.NewMemory()
	stage := NewRedisStage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	m := NewManager(TranscriptKind(), newRepo(store), stage, nil, nil)
	p := &countingProducer{raw: translatedTranscript}

	want, err := m.GetOrCreate(ctx, "s9", p.produce, false)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "sessions/s9/transcription.json", []byte("corrupt"), "application/json"))
	got, ok := m.Fetch(ctx, "s9")
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, m.Invalidate(ctx, "s9"))
	_, ok = m.Fetch(ctx, "s9")
	assert.False(t, ok)
}
