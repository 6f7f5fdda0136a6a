package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	WorkbookPath    string
	BackupDir       string
	SessionDuration time.Duration
	NightlyBackup   bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	GeminiAPIKey string
	GeminiModel  string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	RateLimitPerMinute int
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	sessionHours := getEnvInt("SESSION_HOURS", 24)

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		WorkbookPath:    getEnv("WORKBOOK_PATH", "./roboteamup.xlsx"),
		BackupDir:       getEnv("BACKUP_DIR", "./backups"),
		SessionDuration: time.Duration(sessionHours) * time.Hour,
		NightlyBackup:   getEnvBool("NIGHTLY_BACKUP", false),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "RoboTeamUp"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
