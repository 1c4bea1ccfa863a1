package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"quizwhiz-backend/internal/quizgen"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL   string
	SessionTTL time.Duration

	// Auth
	JWTSecret         string
	AdminEmails       []string
	AdminPasswordHash string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTemperature    float64
	GeminiConcurrentReqs int

	// Generation
	ContentLanguage     string
	QuizPDFMin          int
	QuizPDFMax          int
	QuizTopicMin        int
	QuizTopicMax        int
	FlashFactsMin       int
	FlashFactsMax       int
	UndercountWarnRatio float64
	EmptyPolicy         string
	FlashFactDenyList   []string
	FeedbackConcurrency int

	// Workers
	WorkerCount int

	// Storage
	StoragePath string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		DatabaseURL: mustGetEnv("DATABASE_URL"),
		RedisURL:    mustGetEnv("REDIS_URL"),
		SessionTTL:  getEnvAsDurationOrDefault("SESSION_TTL", 24*time.Hour),

		JWTSecret:         mustGetEnv("JWT_SECRET"),
		AdminEmails:       getEnvAsListOrDefault("ADMIN_EMAILS", nil),
		AdminPasswordHash: getEnvOrDefault("ADMIN_PASSWORD_HASH", ""),

		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTemperature:    getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.9),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),

		ContentLanguage:     getEnvOrDefault("CONTENT_LANGUAGE", "French"),
		QuizPDFMin:          getEnvAsIntOrDefault("QUIZ_PDF_MIN", 5),
		QuizPDFMax:          getEnvAsIntOrDefault("QUIZ_PDF_MAX", 1000),
		QuizTopicMin:        getEnvAsIntOrDefault("QUIZ_TOPIC_MIN", 5),
		QuizTopicMax:        getEnvAsIntOrDefault("QUIZ_TOPIC_MAX", 50),
		FlashFactsMin:       getEnvAsIntOrDefault("FLASH_FACTS_MIN", 1),
		FlashFactsMax:       getEnvAsIntOrDefault("FLASH_FACTS_MAX", 20),
		UndercountWarnRatio: getEnvAsFloatOrDefault("UNDERCOUNT_WARN_RATIO", 0.5),
		EmptyPolicy:         getEnvOrDefault("GENERATION_EMPTY_POLICY", string(quizgen.PolicyFail)),
		FlashFactDenyList:   getEnvAsListOrDefault("FLASH_FACT_DENYLIST", nil),
		FeedbackConcurrency: getEnvAsIntOrDefault("FEEDBACK_CONCURRENCY", 4),

		WorkerCount: getEnvAsIntOrDefault("WORKER_COUNT", 4),
		StoragePath: getEnvOrDefault("STORAGE_PATH", "./uploads"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	return cfg
}

// GenerationOptions converts the generation settings into pipeline options.
// The configured deny list extends the built-in one.
func (c *Config) GenerationOptions() quizgen.Options {
	deny := make([]string, 0, len(quizgen.DefaultDenyList)+len(c.FlashFactDenyList))
	deny = append(deny, quizgen.DefaultDenyList...)
	deny = append(deny, c.FlashFactDenyList...)

	return quizgen.Options{
		DocumentQuizBounds: quizgen.Bounds{Min: c.QuizPDFMin, Max: c.QuizPDFMax},
		TopicQuizBounds:    quizgen.Bounds{Min: c.QuizTopicMin, Max: c.QuizTopicMax},
		FlashFactBounds:    quizgen.Bounds{Min: c.FlashFactsMin, Max: c.FlashFactsMax},
		WarnRatio:          c.UndercountWarnRatio,
		EmptyPolicy:        quizgen.ParseEmptyPolicy(c.EmptyPolicy),
		DenyList:           deny,
		Language:           c.ContentLanguage,
	}
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if strings.ToLower(a) == email {
			return true
		}
	}
	return false
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// getEnvAsListOrDefault splits a comma-separated value, dropping blanks.
func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
