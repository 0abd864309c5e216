package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string
	LOG_LEVEL   string

	// Optional: empty disables the catalog cache.
	REDIS_ADDR        string
	CATALOG_CACHE_TTL time.Duration

	STRIPE_SECRET_KEY     string
	STRIPE_PRODUCT_ID     string
	STRIPE_WEBHOOK_SECRET string

	// Frontend base URL for checkout redirects.
	APP_URL string
)

func LoadEnv() {
	LoadDatabaseEnv()

	PORT = getEnv("PORT", "8080")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:5173")

	REDIS_ADDR = getEnv("REDIS_ADDR", "")
	CATALOG_CACHE_TTL = getDuration("CATALOG_CACHE_TTL", 5*time.Minute)

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_PRODUCT_ID = getEnv("STRIPE_PRODUCT_ID", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	APP_URL = getEnv("APP_URL", "http://localhost:5173")
}

// LoadDatabaseEnv loads only what the migration tool needs.
func LoadDatabaseEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	DB_URL = mustEnv("DB_URL")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
