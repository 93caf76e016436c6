package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"call-quality-go/internal/blobstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T, files map[string]string) *Repository {
	t.Helper()
	store := blobstore.NewMemory()
	for k, v := range files {
		require.NoError(t, store.Put(context.Background(), k, []byte(v), "application/octet-stream"))
	}
	return NewRepository(store, "sessions", time.Hour, nil)
}

func TestLocateAudioPreferredOrder(t *testing.T) {
	repo := newRepo(t, map[string]string{
		"sessions/s1/audio.wav":     "a",
		"sessions/s1/recording.ogg": "b",
		"sessions/s1/zzz.flac":      "c",
	})

	audio, err := repo.LocateAudio(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "sessions/s1/audio.wav", audio.Key)
	assert.Equal(t, "audio/wav", audio.MIMEType)
}

func TestLocateAudioFallsBackToExtensionScan(t *testing.T) {
	repo := newRepo(t, map[string]string{
		"sessions/s2/transcription.json": "{}",
		"sessions/s2/call-0001.M4A":      "x",
		"sessions/s2/other.opus":         "y",
	})

	audio, err := repo.LocateAudio(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, "sessions/s2/call-0001.M4A", audio.Key)
	assert.Equal(t, "audio/mp4", audio.MIMEType)
}

func TestLocateAudioMissing(t *testing.T) {
	repo := newRepo(t, map[string]string{"sessions/s3/notes.txt": "hi"})

	_, err := repo.LocateAudio(context.Background(), "s3")
	assert.True(t, errors.Is(err, ErrNoAudio))
}

func TestLoadAudioAndURL(t *testing.T) {
	repo := newRepo(t, map[string]string{"sessions/s4/recording.mp3": "mp3-bytes"})

	data, audio, err := repo.LoadAudio(context.Background(), "s4")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
	assert.Equal(t, "audio/mpeg", audio.MIMEType)

	url, _, err := repo.AudioURL(context.Background(), "s4")
	require.NoError(t, err)
	assert.Contains(t, url, "sessions/s4/recording.mp3")
}

func TestMetadataFallback(t *testing.T) {
	repo := newRepo(t, map[string]string{
		"sessions/a/session.json":  `{"agent":"Ona"}`,
		"sessions/b/metadata.json": `{"agent":"Jonas"}`,
		"sessions/c/session.json":  `not json`,
	})
	ctx := context.Background()

	meta, err := repo.Metadata(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Ona", meta["agent"])

	meta, err = repo.Metadata(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Jonas", meta["agent"])

	meta, err = repo.Metadata(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestList(t *testing.T) {
	repo := newRepo(t, map[string]string{
		"sessions/b/audio.wav": "x",
		"sessions/a/audio.wav": "x",
		"sessions/a/extra.txt": "x",
		"other/c/audio.wav":    "x",
	})

	ids, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "audio/ogg", MIMEType("x.OGG"))
	assert.Equal(t, "", MIMEType("x.txt"))
}
