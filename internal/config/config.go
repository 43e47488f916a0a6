package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	Production  bool
	ServerKey   string
	ClientKey   string
	BaseURL     string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins []string
}

// Load reads configuration from environment variables. A .env file is loaded
// first if present (local development only).
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "3000"))

	serverKey := getEnv("MIDTRANS_SERVER_KEY", "")
	if serverKey == "" {
		return nil, fmt.Errorf("MIDTRANS_SERVER_KEY is required")
	}

	clientKey := getEnv("MIDTRANS_CLIENT_KEY", "")
	if clientKey == "" {
		return nil, fmt.Errorf("MIDTRANS_CLIENT_KEY is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:        port,
		Production:  getEnv("APP_ENV", "development") == "production",
		ServerKey:   serverKey,
		ClientKey:   clientKey,
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		CORSOrigins: origins,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
