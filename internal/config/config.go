package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	StatePath   string
	LogLevel    string
	LogFormat   string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		BaseURL:     EnvDefault("SHOP_BASE_URL", "http://127.0.0.1:3007"),
		HTTPTimeout: time.Duration(EnvIntDefault("SHOP_HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		StatePath:   EnvDefault("SHOP_STATE_PATH", defaultStatePath()),
		LogLevel:    EnvDefault("SHOP_LOG_LEVEL", "info"),
		LogFormat:   EnvDefault("SHOP_LOG_FORMAT", "text"),
	}

	return config, nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "shopclient.db"
	}
	return filepath.Join(home, ".shopclient", "state.db")
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
