package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string
	JWTSecret   string

	// AI provider: "gemini", "ollama" or "auto"
	AIProvider    string
	GeminiApiKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string

	GraphBaseURL string

	// Sync lock shared by API replicas; empty RedisAddr keeps locks in-process
	RedisAddr     string
	RedisPassword string
	SyncLockTTL   time.Duration
	SyncTimeout   time.Duration

	GmailPageSize    int
	CalendarPageSize int
	TasksPageSize    int
	TeamsPageSize    int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=workhub port=5432 sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AIProvider:       getEnv("AI_PROVIDER", "auto"),
		GeminiApiKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		GraphBaseURL:     getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		SyncLockTTL:      getDuration("SYNC_LOCK_TTL", 5*time.Minute),
		SyncTimeout:      getDuration("SYNC_TIMEOUT", 2*time.Minute),
		GmailPageSize:    getInt("GMAIL_PAGE_SIZE", 10),
		CalendarPageSize: getInt("CALENDAR_PAGE_SIZE", 10),
		TasksPageSize:    getInt("TASKS_PAGE_SIZE", 20),
		TeamsPageSize:    getInt("TEAMS_PAGE_SIZE", 20),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
