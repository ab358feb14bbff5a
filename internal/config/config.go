package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// OCR provider names
const (
	OCRProviderOpenAI = "openai"
	OCRProviderGemini = "gemini"
	OCRProviderNone   = "none"
)

const (
	defaultOpenAIOCRModel = "gpt-4o-mini"
	defaultGeminiOCRModel = "gemini-2.0-flash"
)

// defaultCORSOrigins are the local dev servers of the practice front end
var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173", "http://localhost:5174", "http://localhost:5175",
	"http://localhost:5176", "http://localhost:5177", "http://localhost:5178",
	"http://localhost:5179", "http://localhost:5180",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173", "http://127.0.0.1:5174", "http://127.0.0.1:5175",
	"http://127.0.0.1:5176", "http://127.0.0.1:5177", "http://127.0.0.1:5178",
	"http://127.0.0.1:5179", "http://127.0.0.1:5180",
}

// Config holds the application configuration
// Note: This is a stateless service - nothing is persisted between requests
type Config struct {
	// Environment
	Environment string
	Host        string
	Port        string
	Debug       bool

	// Text recognition for tempo markings
	OpenAIAPIKey string // OpenAI API key for vision OCR
	GeminiAPIKey string // Google Gemini API key
	OCRProvider  string // openai, gemini or none
	OCRModel     string
	OCRTimeout   time.Duration

	// Pipeline
	DetectionTimeout time.Duration // per detector sub-step
	MaxUploadBytes   int64
	TuningFile       string  // optional YAML detector tuning
	RandomSeed       *uint64 // pins progression generation when set

	// HTTP
	CORSAllowedOrigins []string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Host:               getEnv("API_HOST", "0.0.0.0"),
		Port:               getEnv("PORT", getEnv("API_PORT", "8080")),
		Debug:              getEnv("DEBUG", "false") == "true",
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OCRProvider:        strings.ToLower(getEnv("OCR_PROVIDER", "")),
		OCRModel:           getEnv("OCR_MODEL", ""),
		OCRTimeout:         getDuration("OCR_TIMEOUT", 20*time.Second),
		DetectionTimeout:   getDuration("DETECTION_TIMEOUT", 10*time.Second),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_MB", 20)) << 20,
		TuningFile:         getEnv("TUNING_FILE", ""),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:  getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:  getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:       getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:    getEnv("LANGFUSE_ENABLED", "false") == "true",
	}

	if cfg.OCRProvider == "" {
		cfg.OCRProvider = inferOCRProvider(cfg)
	}
	if cfg.OCRModel == "" {
		switch cfg.OCRProvider {
		case OCRProviderOpenAI:
			cfg.OCRModel = defaultOpenAIOCRModel
		case OCRProviderGemini:
			cfg.OCRModel = defaultGeminiOCRModel
		}
	}

	if raw := os.Getenv("RANDOM_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Printf("⚠️  Ignoring invalid RANDOM_SEED %q: %v", raw, err)
		} else {
			cfg.RandomSeed = &seed
		}
	}

	return cfg
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func inferOCRProvider(c *Config) string {
	switch {
	case c.OpenAIAPIKey != "":
		return OCRProviderOpenAI
	case c.GeminiAPIKey != "":
		return OCRProviderGemini
	default:
		return OCRProviderNone
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("⚠️  Ignoring invalid %s=%q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("15s", "1m") or plain seconds ("15")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️  Ignoring invalid %s=%q, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
