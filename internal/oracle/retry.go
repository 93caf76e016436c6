package oracle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"

	"call-quality-go/internal/logger"
	"call-quality-go/internal/metrics"
)

// RetryPolicy bounds how long a call may keep retrying.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	// AttemptTimeout caps a single attempt. Zero leaves the caller's deadline.
	AttemptTimeout time.Duration
}

// DefaultRetryPolicy mirrors the limits used for the hosted model.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 500 * time.Millisecond,
		MaxElapsed:      45 * time.Second,
		AttemptTimeout:  5 * time.Minute,
	}
}

// Retrying wraps an Oracle with exponential backoff. Client errors and
// blocked prompts are not retried.
type Retrying struct {
	next    Oracle
	policy  RetryPolicy
	metrics *metrics.Metrics
	log     *logrus.Entry
}

func NewRetrying(next Oracle, policy RetryPolicy, m *metrics.Metrics, log *logrus.Entry) *Retrying {
	return &Retrying{
		next:    next,
		policy:  policy,
		metrics: m,
		log:     logger.Component(log, "oracle"),
	}
}

func (r *Retrying) Generate(ctx context.Context, req Request) (string, error) {
	log := r.log.WithField("task", req.Task)
	started := time.Now()

	var (
		answer   string
		lastErr  error
		attempts int
	)
	op := func() error {
		attempts++
		actx, cancel := ctx, context.CancelFunc(func() {})
		if r.policy.AttemptTimeout > 0 {
			actx, cancel = context.WithTimeout(ctx, r.policy.AttemptTimeout)
		}
		defer cancel()

		out, err := r.next.Generate(actx, req)
		if err != nil {
			lastErr = err
			if isPermanent(ctx, err) {
				return backoff.Permanent(err)
			}
			log.WithField("attempt", attempts).Warnf("oracle call failed: %v", err)
			return err
		}
		answer, lastErr = out, nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	b.MaxElapsedTime = r.policy.MaxElapsed

	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	elapsed := time.Since(started)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		r.metrics.ObserveOracleCall(string(req.Task), "error", elapsed.Seconds())
		log.WithFields(logrus.Fields{"attempts": attempts, "elapsed": elapsed}).Errorf("oracle gave up: %v", lastErr)
		return "", lastErr
	}
	r.metrics.ObserveOracleCall(string(req.Task), "ok", elapsed.Seconds())
	log.WithFields(logrus.Fields{"attempts": attempts, "elapsed": elapsed}).Info("oracle answered")
	return answer, nil
}

type httpCoder interface{ HTTPCode() int }

// isPermanent reports errors that another attempt cannot fix.
func isPermanent(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return true
	}
	code := 0
	var gerr *googleapi.Error
	var coder httpCoder
	switch {
	case errors.As(err, &gerr):
		code = gerr.Code
	case errors.As(err, &coder):
		code = coder.HTTPCode()
	}
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}
