// Package app wires the services shared by the API server and the batch CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"call-quality-go/internal/blobstore"
	"call-quality-go/internal/cache"
	"call-quality-go/internal/config"
	"call-quality-go/internal/logger"
	"call-quality-go/internal/metrics"
	"call-quality-go/internal/oracle"
	"call-quality-go/internal/processor"
	"call-quality-go/internal/sessions"
	"call-quality-go/internal/transcription"
)

// App holds the wired services.
type App struct {
	Sessions    *sessions.Repository
	Transcripts *transcription.Service
	Analyzer    *processor.Analyzer
	Metrics     *metrics.Metrics

	closers []func() error
}

// Build wires every service from cfg. reg receives the metrics; nil uses the
// default registerer.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*App, error) {
	if log == nil {
		log = logger.New()
	}
	a := &App{Metrics: metrics.New(reg)}

	store, err := BuildBlobStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.Sessions = NewSessions(store, cfg)

	stage := a.buildStage(ctx, cfg, log)

	o, err := a.buildOracle(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	transcriptModel := o
	if !cfg.UseMockLLM && cfg.GeminiTranscribeModel != cfg.GeminiAnalysisModel {
		if transcriptModel, err = a.buildGemini(ctx, cfg, cfg.GeminiTranscribeModel, log); err != nil {
			return nil, err
		}
	}

	a.Transcripts = transcription.NewService(
		transcriptModel,
		a.Sessions,
		cache.NewManager(cache.TranscriptKind(), a.Sessions, stage, a.Metrics, log.Entry),
		log.Entry,
	)
	a.Analyzer = processor.NewAnalyzer(processor.Deps{
		Oracle:        o,
		Repo:          a.Sessions,
		Transcripts:   a.Transcripts,
		Analyses:      cache.NewManager(cache.AnalysisKind(), a.Sessions, stage, a.Metrics, log.Entry),
		Conversations: cache.NewManager(cache.ConversationKind(), a.Sessions, stage, a.Metrics, log.Entry),
		Metrics:       a.Metrics,
		Log:           log.Entry,
	})
	return a, nil
}

// Close releases clients opened by Build.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSessions roots a session repository at SESSIONS_PREFIX.
func NewSessions(store blobstore.Store, cfg *config.Config) *sessions.Repository {
	return sessions.NewRepository(store, cfg.SessionsPrefix, cfg.SignedURLTTL, nil)
}

// BuildBlobStore returns the S3 store, or the in-memory one when
// BLOB_BACKEND=memory.
func BuildBlobStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (blobstore.Store, error) {
	if log == nil {
		log = logger.New()
	}
	switch cfg.BlobBackend {
	case "memory":
		log.Warn("using in-memory blob store; artifacts are lost on exit")
		return blobstore.NewMemory(), nil
	case "s3", "":
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, errors.New("S3_BUCKET is required for the s3 blob backend")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	log.WithField("bucket", cfg.S3Bucket).Info("using s3 blob store")
	return blobstore.NewS3StoreFromClient(client, cfg.S3Bucket, log.Entry), nil
}

// buildStage returns a Redis stage when REDIS_ADDR is set and reachable,
// otherwise nil so the managers stage in memory.
func (a *App) buildStage(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Stage {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithField("error", err.Error()).Warn("redis not available; staging in memory")
		_ = client.Close()
		return nil
	}
	a.closers = append(a.closers, client.Close)
	log.WithField("addr", cfg.RedisAddr).Info("staging artifacts in redis")
	return cache.NewRedisStage(client, cfg.StageTTL)
}

func (a *App) buildOracle(ctx context.Context, cfg *config.Config, log *logger.Logger) (oracle.Oracle, error) {
	if cfg.UseMockLLM {
		log.Info("mock LLM mode ON - oracle returns deterministic answers")
		return oracle.Mock{}, nil
	}
	return a.buildGemini(ctx, cfg, cfg.GeminiAnalysisModel, log)
}

func (a *App) buildGemini(ctx context.Context, cfg *config.Config, model string, log *logger.Logger) (oracle.Oracle, error) {
	g, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, model, log.Entry)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, g.Close)

	policy := oracle.DefaultRetryPolicy()
	if cfg.OracleMaxRetry > 0 {
		policy.MaxElapsed = cfg.OracleMaxRetry
	}
	if cfg.OracleTimeout > 0 {
		policy.AttemptTimeout = cfg.OracleTimeout
	}
	return oracle.NewRetrying(g, policy, a.Metrics, log.Entry), nil
}
