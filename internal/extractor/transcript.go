package extractor

import (
	"strings"

	"github.com/sirupsen/logrus"

	"call-quality-go/internal/logger"
	"call-quality-go/internal/types"
)

var (
	startKeys   = []string{"timestamp_start", "start_time", "start"}
	endKeys     = []string{"timestamp_end", "end_time", "end"}
	durKeys     = []string{"duration_seconds", "duration"}
	speakerKeys = []string{"speaker_label", "speaker"}
)

// toSegment converts one raw segment. An empty defaultSpeaker means a
// segment without a speaker is rejected.
func toSegment(e map[string]any, defaultSpeaker types.Speaker, index int) (types.Segment, bool) {
	start, end, ok := span(e, startKeys, endKeys, nil)
	if !ok {
		return types.Segment{}, false
	}
	sp := defaultSpeaker
	if raw, has := lookup(e, speakerKeys...); has {
		s, _ := asString(raw)
		if sp, ok = types.ParseSpeaker(s); !ok {
			return types.Segment{}, false
		}
	}
	if sp == "" {
		return types.Segment{}, false
	}
	return types.Segment{
		Speaker:    sp,
		Start:      start,
		End:        end,
		Text:       text(e, "", "text", "content"),
		Confidence: unit(e, 0.9, "confidence"),
		IntervalID: count(e, index+1, "interval_id", "id"),
	}, true
}

// pairSegments converts the original and translated lists together so the
// translation can never drift from the original's structure. The translated
// segment i takes its timing and speaker from original i; a pair is kept or
// dropped as a unit. When the lists differ in length the translation is
// discarded and mismatch is reported.
func pairSegments(orig, trans []any, defaultSpeaker types.Speaker) (o, t []types.Segment, mismatch bool) {
	o, t = []types.Segment{}, []types.Segment{}
	paired := len(trans) > 0 && len(trans) == len(orig)
	mismatch = len(trans) > 0 && !paired

	for i, raw := range orig {
		if len(o) == types.MaxEntries {
			break
		}
		m, ok := asObject(raw)
		if !ok {
			continue
		}
		seg, ok := toSegment(m, defaultSpeaker, i)
		if !ok {
			continue
		}
		if !paired {
			o = append(o, seg)
			continue
		}
		tm, ok := asObject(trans[i])
		if !ok {
			continue
		}
		tseg := seg
		tseg.Text = text(tm, "", "text", "content")
		tseg.Confidence = unit(tm, seg.Confidence, "confidence")
		o = append(o, seg)
		t = append(t, tseg)
	}
	return o, t, mismatch
}

func maxEnd(segs []types.Segment) float64 {
	var m float64
	for _, s := range segs {
		if s.End > m {
			m = s.End
		}
	}
	return m
}

func joinText(segs []types.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if !s.Speaker.IsSilence() && s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ReconcileTranscript turns a diarization response (or a persisted
// transcription.json) into a Transcript. It never fails.
func ReconcileTranscript(raw any) types.Transcript {
	obj := unwrap(raw)
	origRaw, _ := lookup(obj, "transcription", "segments", "original_transcription")
	transRaw, _ := lookup(obj, "lithuanian_transcription", "translated_segments", "translation")

	orig, trans, mismatch := pairSegments(asList(origRaw), asList(transRaw), "")
	if mismatch {
		logger.New().WithFields(logrus.Fields{
			"component":  "reconciler",
			"original":   len(asList(origRaw)),
			"translated": len(asList(transRaw)),
		}).Warn("translation does not line up with the original; dropping it")
	}

	duration := num(obj, 0, "total_duration", "total_duration_seconds")
	if e := maxEnd(orig); e > duration {
		duration = e
	}
	return types.Transcript{
		Original:         orig,
		Translated:       trans,
		TotalDuration:    duration,
		NumSpeakers:      types.CountSpeakers(orig),
		OriginalLanguage: types.ParseLanguage(text(obj, "", "original_language", "language")),
	}
}
