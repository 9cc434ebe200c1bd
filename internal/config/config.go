package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Config holds server configuration read from the environment
type Config struct {
	Host string
	Port int

	// StorageType selects the backend: "memory", "redis" or "sqlite"
	StorageType string
	RedisURL    string
	SQLitePath  string

	// JWTSecret signs bearer tokens. Required outside local development.
	JWTSecret string

	// QuestionsPath points at the prompt corpus JSON file
	QuestionsPath string

	LogFormat string // "json" or "text"
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Host:          "",
		Port:          8080,
		StorageType:   "memory",
		RedisURL:      "redis://localhost:6379",
		SQLitePath:    "partyquiz.db",
		JWTSecret:     "dev-secret-change-me",
		QuestionsPath: "data/questions.json",
		LogFormat:     "json",
	}
}

// Load reads configuration from the environment on top of defaults
func Load() Config {
	cfg := Default()
	if raw := os.Getenv("HOST"); raw != "" {
		cfg.Host = raw
	}
	if raw := os.Getenv("PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Port = value
		}
	}
	if raw := os.Getenv("STORAGE_TYPE"); raw != "" {
		cfg.StorageType = raw
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		cfg.RedisURL = raw
	}
	if raw := os.Getenv("SQLITE_PATH"); raw != "" {
		cfg.SQLitePath = raw
	}
	if raw := os.Getenv("JWT_SECRET"); raw != "" {
		cfg.JWTSecret = raw
	}
	if raw := os.Getenv("QUESTIONS_PATH"); raw != "" {
		cfg.QuestionsPath = raw
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.LogFormat = raw
	}
	return cfg
}
