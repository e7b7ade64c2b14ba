package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Email configuration; an empty SMTPHost disables delivery.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	CleanupIntervalHours int
	RateLimitPerMinute   int
	RateLimitBurst       int
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	cleanupHours, _ := strconv.Atoi(getEnv("CLEANUP_INTERVAL_HOURS", "24"))
	ratePerMinute, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	rateBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))

	return &Config{
		Port: getEnv("PORT", "8080"),

		// Empty means no durable store is configured and the service
		// falls back to the ephemeral in-memory repository.
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@rideboard.local"),
		FromName:     getEnv("FROM_NAME", "RideBoard"),

		CleanupIntervalHours: cleanupHours,
		RateLimitPerMinute:   ratePerMinute,
		RateLimitBurst:       rateBurst,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
