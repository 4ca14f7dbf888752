package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	LogLevel        string

	DatabaseURL string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	CVBucket        string
	CVPrefix        string
	SSEKMSKeyID     string

	// S3-compatible endpoint (Supabase Storage, R2, MinIO) with static keys.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	LLMProvider     string
	LLMModel        string
	LLMMessageModel string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	GeminiAPIKey    string

	EmailProvider    string
	ResendAPIKey     string
	ResendBaseURL    string
	EmailFromAddress string

	RedisURL      string
	MatchCacheTTL time.Duration
	MatchTTL      time.Duration

	QueueBackend      string
	SQSQueueURL       string
	AMQPURL           string
	AMQPQueue         string
	WorkerConcurrency int

	JWTSecret string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("APP_ENV", getEnv("ENV", "dev")))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	queueURL := os.Getenv("SQS_QUEUE_URL")
	amqpURL := os.Getenv("AMQP_URL")

	return Config{
		Port:              getEnv("PORT", "8080"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGIN", "http://localhost:8080,http://localhost:5173")),
		Env:               env,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       dbURL,
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		CVBucket:          getEnv("CV_BUCKET", "cvs"),
		CVPrefix:          getEnv("CV_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		LLMProvider:       normalizeLLMProvider(getEnv("LLM_PROVIDER", ""), openAIKey, geminiKey),
		LLMModel:          getEnv("LLM_MODEL", ""),
		LLMMessageModel:   getEnv("LLM_MESSAGE_MODEL", ""),
		OpenAIAPIKey:      openAIKey,
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      geminiKey,
		EmailProvider:     normalizeEmailProvider(getEnv("EMAIL_PROVIDER", ""), os.Getenv("RESEND_API_KEY")),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:     getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		EmailFromAddress:  getEnv("EMAIL_FROM_ADDRESS", "onboarding@resend.dev"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MatchCacheTTL:     getDuration("MATCH_CACHE_TTL", 10*time.Minute),
		MatchTTL:          getDuration("MATCH_TTL", 0),
		QueueBackend:      normalizeQueueBackend(getEnv("QUEUE_BACKEND", ""), queueURL, amqpURL),
		SQSQueueURL:       queueURL,
		AMQPURL:           amqpURL,
		AMQPQueue:         getEnv("AMQP_QUEUE", "lbs-connect-jobs"),
		WorkerConcurrency: getInt("WORKER_CONCURRENCY", 2),
		JWTSecret:         getEnv("JWT_SECRET", getEnv("SUPABASE_JWT_SECRET", "")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// getDuration accepts Go duration strings ("15m") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeLLMProvider(raw, openAIKey, geminiKey string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "gemini":
		return "gemini"
	case "placeholder":
		return "placeholder"
	}
	switch {
	case openAIKey != "":
		return "openai"
	case geminiKey != "":
		return "gemini"
	default:
		return "placeholder"
	}
}

func normalizeEmailProvider(raw, resendKey string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "resend":
		return "resend"
	case "log":
		return "log"
	}
	if resendKey != "" {
		return "resend"
	}
	return "log"
}

func normalizeQueueBackend(raw, sqsURL, amqpURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sqs":
		return "sqs"
	case "amqp", "rabbitmq":
		return "amqp"
	case "none":
		return "none"
	}
	switch {
	case sqsURL != "":
		return "sqs"
	case amqpURL != "":
		return "amqp"
	default:
		return "none"
	}
}
