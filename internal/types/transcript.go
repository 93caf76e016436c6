// internal/types/transcript.go
package types

import (
	"fmt"
	"sort"
	"strings"
)

// MaxEntries bounds every list the oracle can make us hold.
const MaxEntries = 100

// Segment is one diarized span of speech (or silence).
type Segment struct {
	Speaker    Speaker `json:"speaker_label"`
	Start      float64 `json:"timestamp_start"`
	End        float64 `json:"timestamp_end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IntervalID int     `json:"interval_id"`
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// SameShape reports whether two segments cover the same span with the same speaker.
func (s Segment) SameShape(o Segment) bool {
	return s.Start == o.Start && s.End == o.End && s.Speaker == o.Speaker
}

// Transcript is the persisted shape of sessions/<id>/transcription.json.
type Transcript struct {
	Original         []Segment `json:"transcription"`
	Translated       []Segment `json:"lithuanian_transcription"`
	TotalDuration    float64   `json:"total_duration"`
	NumSpeakers      int       `json:"num_speakers"`
	OriginalLanguage Language  `json:"original_language"`
}

// HasTranslation is false for transcripts that must be regenerated.
func (t Transcript) HasTranslation() bool { return len(t.Translated) > 0 }

// Aligned checks that the translation keeps the original's timestamps and speakers.
func (t Transcript) Aligned() bool {
	if len(t.Original) == 0 || len(t.Translated) == 0 {
		return true
	}
	if len(t.Original) != len(t.Translated) {
		return false
	}
	for i := range t.Original {
		if !t.Original[i].SameShape(t.Translated[i]) {
			return false
		}
	}
	return true
}

// Text renders one line per spoken segment: "[12.0s - 15.5s] SPEAKER1: text".
// Silence segments are skipped.
func (t Transcript) Text(translated bool) string {
	segs := t.Original
	if translated && t.HasTranslation() {
		segs = t.Translated
	}
	lines := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.Speaker.IsSilence() {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%.1fs - %.1fs] %s: %s", s.Start, s.End, strings.ToUpper(string(s.Speaker)), s.Text))
	}
	return strings.Join(lines, "\n")
}

type SpeakerStat struct {
	Speaker   Speaker `json:"speaker"`
	TotalTime float64 `json:"total_time"`
	Segments  int     `json:"segments"`
	Words     int     `json:"words"`
}

// SpeakerStats summarizes talk time per speaker, ordered by speaker label.
func (t Transcript) SpeakerStats() []SpeakerStat {
	by := map[Speaker]*SpeakerStat{}
	for _, s := range t.Original {
		if s.Speaker.IsSilence() {
			continue
		}
		st, ok := by[s.Speaker]
		if !ok {
			st = &SpeakerStat{Speaker: s.Speaker}
			by[s.Speaker] = st
		}
		st.TotalTime += s.Duration()
		st.Segments++
		st.Words += len(strings.Fields(s.Text))
	}
	out := make([]SpeakerStat, 0, len(by))
	for _, st := range by {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}

// CountSpeakers counts distinct speakers, ignoring silence.
func CountSpeakers(segs []Segment) int {
	seen := map[Speaker]struct{}{}
	for _, s := range segs {
		if !s.Speaker.IsSilence() {
			seen[s.Speaker] = struct{}{}
		}
	}
	return len(seen)
}
