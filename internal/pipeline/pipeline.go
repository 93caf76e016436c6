// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"call-quality-go/internal/logger"
	"call-quality-go/internal/types"
)

type Transcriber interface {
	Transcribe(ctx context.Context, sessionID string, force bool) (types.Transcript, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, sessionID string, force bool) (types.ComprehensiveAnalysis, error)
	ReviewConversation(ctx context.Context, sessionID string, force bool) (types.ConversationAnalysis, error)
}

// Options selects the steps run for every session.
type Options struct {
	Transcribe     bool
	Analyze        bool
	Conversation   bool
	Force          bool
	SessionTimeout time.Duration
}

// Result is the outcome for one session. A failed step leaves its field nil
// and adds to Errors; later steps still run.
type Result struct {
	SessionID    string                       `json:"session_id"`
	Transcript   *types.Transcript            `json:"-"`
	Analysis     *types.ComprehensiveAnalysis `json:"analysis,omitempty"`
	Conversation *types.ConversationAnalysis  `json:"conversation,omitempty"`
	Errors       []string                     `json:"errors,omitempty"`
	DurationMs   int64                        `json:"duration_ms"`
}

// Report is one batch run.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// Analyses returns the comprehensive analyses that were produced.
func (r Report) Analyses() []types.ComprehensiveAnalysis {
	var out []types.ComprehensiveAnalysis
	for _, res := range r.Results {
		if res.Analysis != nil {
			out = append(out, *res.Analysis)
		}
	}
	return out
}

// Runner processes sessions one at a time.
type Runner struct {
	transcriber Transcriber
	analyzer    Analyzer
	opts        Options
	log         *logrus.Entry
}

func NewRunner(t Transcriber, a Analyzer, opts Options, log *logrus.Entry) *Runner {
	return &Runner{transcriber: t, analyzer: a, opts: opts, log: logger.Component(log, "pipeline")}
}

// Run processes ids in order. It stops early when ctx is done; the report
// then holds the sessions finished so far.
func (r *Runner) Run(ctx context.Context, ids []string) Report {
	rep := Report{RunID: uuid.New().String(), StartedAt: time.Now().UTC()}
	log := r.log.WithField("run_id", rep.RunID)
	log.WithField("sessions", len(ids)).Info("batch started")

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			log.WithField("remaining", len(ids)-i).Warnf("batch interrupted: %v", err)
			break
		}
		res := r.ProcessWithContext(ctx, id)
		log.WithFields(logrus.Fields{
			"session_id":  id,
			"errors":      len(res.Errors),
			"duration_ms": res.DurationMs,
		}).Info("session processed")
		rep.Results = append(rep.Results, res)
	}
	log.WithField("processed", len(rep.Results)).Info("batch finished")
	return rep
}

// ProcessWithContext runs the selected steps for one session under the
// per-session timeout.
func (r *Runner) ProcessWithContext(ctx context.Context, sessionID string) Result {
	start := time.Now()
	if r.opts.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.SessionTimeout)
		defer cancel()
	}
	res := Result{SessionID: sessionID}
	fail := func(step string, err error) {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", step, err))
	}

	// the conversation review reads the transcript
	if r.opts.Transcribe || r.opts.Conversation {
		tr, err := r.transcriber.Transcribe(ctx, sessionID, r.opts.Force)
		if err != nil {
			fail("transcription", err)
		} else {
			res.Transcript = &tr
		}
	}
	if r.opts.Analyze {
		a, err := r.analyzer.Analyze(ctx, sessionID, r.opts.Force)
		if err != nil {
			fail("analysis", err)
		} else {
			res.Analysis = &a
		}
	}
	if r.opts.Conversation && res.Transcript != nil {
		c, err := r.analyzer.ReviewConversation(ctx, sessionID, r.opts.Force)
		if err != nil {
			fail("conversation", err)
		} else {
			res.Conversation = &c
		}
	}

	res.DurationMs = time.Since(start).Milliseconds()
	return res
}
