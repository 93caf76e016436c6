package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Blob storage
	BlobBackend         string
	S3Bucket            string
	SessionsPrefix      string
	AWSRegion           string
	AWSEndpointOverride string
	SignedURLTTL        time.Duration

	// Oracle
	GeminiAPIKey          string
	GeminiTranscribeModel string
	GeminiAnalysisModel   string
	OracleTimeout         time.Duration
	OracleMaxRetry        time.Duration
	UseMockLLM            bool

	// Staging tier in front of the blob store
	RedisAddr     string
	RedisPassword string
	StageTTL      time.Duration

	// Batch runs
	BatchSessionTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "local"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BlobBackend:         strings.ToLower(strings.TrimSpace(getEnv("BLOB_BACKEND", "s3"))),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		SessionsPrefix:      getEnv("SESSIONS_PREFIX", "sessions/"),
		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SignedURLTTL:        getEnvAsDuration("SIGNED_URL_TTL", time.Hour),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiTranscribeModel: getEnv("GEMINI_TRANSCRIBE_MODEL", "gemini-2.0-flash"),
		GeminiAnalysisModel:   getEnv("GEMINI_ANALYSIS_MODEL", "gemini-2.5-flash"),
		OracleTimeout:         getEnvAsDuration("ORACLE_TIMEOUT", 5*time.Minute),
		OracleMaxRetry:        getEnvAsDuration("ORACLE_MAX_RETRY", 45*time.Second),
		UseMockLLM:            getEnvAsBool("USE_MOCK_LLM", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		StageTTL:      getEnvAsDuration("STAGE_TTL", 30*time.Minute),

		BatchSessionTimeout: getEnvAsDuration("BATCH_SESSION_TIMEOUT", 10*time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
