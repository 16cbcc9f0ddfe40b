package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port int `yaml:"port"`
	// DatabaseURL selects the backend. Empty means the SQLite file at DBPath.
	DatabaseURL string `yaml:"database_url"`
	DBPath      string `yaml:"db_path"`
	// Passcode gates the whole application when set.
	Passcode  string `yaml:"passcode"`
	ExportDir string `yaml:"export_dir"`
	Timezone  string `yaml:"timezone"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// MCP adapter
	ServerURL string `yaml:"server_url"`
}

func defaults() *Config {
	return &Config{
		Port:      8501,
		DBPath:    "liberal_arts.db",
		ExportDir: ".",
		Timezone:  "Local",
		LogLevel:  "info",
		LogFormat: "json",
		ServerURL: "http://localhost:8501",
	}
}

// Load reads an optional .env file, an optional YAML file named by
// JOURNAL_CONFIG, then environment variables, each overriding the last.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("JOURNAL_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = envInt("PORT", c.Port)
	c.DatabaseURL = envStr("DATABASE_URL", c.DatabaseURL)
	c.DBPath = envStr("JOURNAL_DB_PATH", c.DBPath)
	c.Passcode = envStr("JOURNAL_PASSCODE", c.Passcode)
	c.ExportDir = envStr("JOURNAL_EXPORT_DIR", c.ExportDir)
	c.Timezone = envStr("JOURNAL_TZ", c.Timezone)
	c.LogLevel = envStr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envStr("LOG_FORMAT", c.LogFormat)
	c.ServerURL = envStr("JOURNAL_SERVER_URL", c.ServerURL)
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		return fmt.Errorf("JOURNAL_DB_PATH must not be empty when DATABASE_URL is unset")
	}
	if c.ExportDir == "" {
		return fmt.Errorf("JOURNAL_EXPORT_DIR must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("JOURNAL_TZ: %w", err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	return nil
}

// DSN is the connection string handed to store.Open.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Location is the time zone used for the default daily memo date.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
