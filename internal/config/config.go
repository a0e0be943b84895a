package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string // empty keeps orders in memory only
	AMQPURL        string // empty disables event publishing
	SessionSecret  string
	SeedOrders     int
	SyncSchedule   string
	LogFile        string
	AllowedOrigins []string
}

// Load reads the environment, after loading .env when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8081"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AMQPURL:        getEnv("AMQP_URL", ""),
		SessionSecret:  getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		SeedOrders:     getEnvInt("SEED_ORDERS", 12),
		SyncSchedule:   getEnv("SYNC_SCHEDULE", "@every 5s"),
		LogFile:        getEnv("LOG_FILE", "./logs/app.log"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
