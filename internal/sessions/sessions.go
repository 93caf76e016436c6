// internal/sessions/sessions.go
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/logger"

	"github.com/sirupsen/logrus"
)

// Artifact file names under sessions/<id>/.
const (
	TranscriptionFile = "transcription.json"
	AnalysisFile      = "gemini_analysis.json"
	ConversationFile  = "conversation_analysis.json"
	SessionFile       = "session.json"
	MetadataFile      = "metadata.json"
)

// ErrNoAudio is returned when a session holds no recognizable recording.
var ErrNoAudio = errors.New("sessions: no audio recording found")

var preferredAudio = []string{
	"recording.wav", "audio.wav",
	"recording.ogg", "audio.ogg",
	"recording.mp3", "audio.mp3",
}

var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",
}

// knownExts keeps the fallback scan order stable.
var knownExts = []string{".wav", ".ogg", ".mp3", ".m4a", ".flac", ".aac", ".wma", ".opus"}

// Audio locates a session's recording in the blob store.
type Audio struct {
	Key      string
	MIMEType string
}

// Repository maps sessions onto blob keys.
type Repository struct {
	store  blobstore.Store
	prefix string
	urlTTL time.Duration
	log    *logrus.Entry
}

// NewRepository builds a repository rooted at prefix (e.g. "sessions/").
func NewRepository(store blobstore.Store, prefix string, urlTTL time.Duration, log *logrus.Entry) *Repository {
	if prefix == "" {
		prefix = "sessions/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &Repository{
		store:  store,
		prefix: prefix,
		urlTTL: urlTTL,
		log:    logger.Component(log, "sessions"),
	}
}

// Store exposes the underlying blob store.
func (r *Repository) Store() blobstore.Store { return r.store }

// Key returns the blob key of a file inside a session.
func (r *Repository) Key(sessionID, name string) string {
	return r.prefix + sessionID + "/" + name
}

// MIMEType returns the content type for an audio file name, or "" when the
// extension is not a known audio format.
func MIMEType(name string) string {
	return audioTypes[strings.ToLower(path.Ext(name))]
}

// LocateAudio finds the session recording, preferring the well-known names.
func (r *Repository) LocateAudio(ctx context.Context, sessionID string) (Audio, error) {
	for _, name := range preferredAudio {
		key := r.Key(sessionID, name)
		ok, err := r.store.Exists(ctx, key)
		if err != nil {
			return Audio{}, fmt.Errorf("check %s: %w", key, err)
		}
		if ok {
			return Audio{Key: key, MIMEType: MIMEType(name)}, nil
		}
	}

	keys, err := r.store.List(ctx, r.prefix+sessionID+"/")
	if err != nil {
		return Audio{}, fmt.Errorf("list session %s: %w", sessionID, err)
	}
	sort.Strings(keys)
	for _, ext := range knownExts {
		for _, key := range keys {
			if strings.EqualFold(path.Ext(key), ext) {
				return Audio{Key: key, MIMEType: audioTypes[ext]}, nil
			}
		}
	}
	return Audio{}, fmt.Errorf("%w: session %s", ErrNoAudio, sessionID)
}

// LoadAudio reads the session recording.
func (r *Repository) LoadAudio(ctx context.Context, sessionID string) ([]byte, Audio, error) {
	audio, err := r.LocateAudio(ctx, sessionID)
	if err != nil {
		return nil, Audio{}, err
	}
	data, err := r.store.Get(ctx, audio.Key)
	if err != nil {
		return nil, Audio{}, fmt.Errorf("read %s: %w", audio.Key, err)
	}
	return data, audio, nil
}

// AudioURL returns a time-limited playback URL for the session recording.
func (r *Repository) AudioURL(ctx context.Context, sessionID string) (string, Audio, error) {
	audio, err := r.LocateAudio(ctx, sessionID)
	if err != nil {
		return "", Audio{}, err
	}
	url, err := r.store.SignedURL(ctx, audio.Key, r.urlTTL)
	if err != nil {
		return "", Audio{}, fmt.Errorf("sign %s: %w", audio.Key, err)
	}
	return url, audio, nil
}

// Metadata returns session.json, falling back to metadata.json. A session
// without either yields an empty map.
func (r *Repository) Metadata(ctx context.Context, sessionID string) (map[string]any, error) {
	for _, name := range []string{SessionFile, MetadataFile} {
		data, err := r.store.Get(ctx, r.Key(sessionID, name))
		if errors.Is(err, blobstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var meta map[string]any
		if err := json.Unmarshal(data, &meta); err != nil {
			r.log.WithField("session_id", sessionID).WithField("file", name).
				Warnf("unreadable session metadata: %v", err)
			continue
		}
		return meta, nil
	}
	return map[string]any{}, nil
}

// List returns the session ids found under the prefix, sorted.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	prefixes, err := r.store.ListPrefixes(ctx, r.prefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		id := strings.TrimSuffix(strings.TrimPrefix(p, r.prefix), "/")
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
