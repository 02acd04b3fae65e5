package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingConfig is returned when a required setting is absent.
var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	Port                    string
	Env                     string
	SecretKey               string
	DatabaseURL             string
	LoginURL                string
	SiteURL                 string
	AdminName               string
	AdminPageSize           int
	LogLevel                string
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists. Every missing required setting is named in the
// returned error.
func Load() (*Config, error) {
	return load(true)
}

// LoadDatabase is Load for commands that only talk to the database; the
// secret key is not required.
func LoadDatabase() (*Config, error) {
	return load(false)
}

func load(needSecret bool) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, assuming environment variables are set")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		SecretKey:               os.Getenv("SECRET_KEY"),
		DatabaseURL:             firstEnv("DATABASE_URL", "SQLALCHEMY_DATABASE_URI"),
		LoginURL:                getEnv("LOGIN_URL", "https://digitalblog.repl.co/auth/login"),
		SiteURL:                 getEnv("SITE_URL", "https://digitalblog.repl.co/"),
		AdminName:               getEnv("ADMIN_NAME", "DigitalBlog"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		MongoURI:                os.Getenv("MONGO_URI"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "digitalblog"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
	}

	pageSize, err := strconv.Atoi(getEnv("ADMIN_PAGE_SIZE", "10"))
	if err != nil || pageSize < 1 {
		return nil, fmt.Errorf("ADMIN_PAGE_SIZE must be a positive integer, got %q", os.Getenv("ADMIN_PAGE_SIZE"))
	}
	cfg.AdminPageSize = pageSize

	var missing []string
	if needSecret && cfg.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return cfg, nil
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
