package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Env  string
	Port string

	DatabaseURL     string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnLifetime  time.Duration
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string

	JWTSecret          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendURL        string

	CORSAllowOrigins []string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiModel   string
	LLMTimeout    time.Duration
	AnalysisQueue string
	WorkerConc    int

	CacheTTL       time.Duration
	FreePlanLimit  int
	RateLimitRPS   float64
	RateLimitBurst int
	AIRateLimitRPM int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Env:  normalizeEnv(getEnv("ENV", "development")),
		Port: getEnv("PORT", "8080"),

		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:  getInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime:  getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),

		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTTTL:             getDuration("JWT_TTL", 7*24*time.Hour),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		CORSAllowOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LLMTimeout:    time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		AnalysisQueue: getEnv("ANALYSIS_QUEUE_URL", ""),
		WorkerConc:    getInt("WORKER_CONCURRENCY", 4),

		CacheTTL:       getDuration("CACHE_TTL", 24*time.Hour),
		FreePlanLimit:  getInt("FREE_PLAN_LIMIT", 25),
		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 20),
		AIRateLimitRPM: getInt("AI_RATE_LIMIT_RPM", 10),
	}
}

// Validate enforces the settings production cannot run without.
func (c Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.ObjectStoreType == "s3" && c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required when OBJECT_STORE=s3"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

// getDuration accepts Go durations ("90m") or plain seconds ("3600").
func getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
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
		return "development"
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
