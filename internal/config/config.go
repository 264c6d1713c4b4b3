package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	LogLevel     slog.Level
	LogFile      string // empty logs to stderr
	ScenarioPath string // empty uses the embedded scenario
	RedisURL     string // empty disables event publishing
	GameSeed     uint64 // 0 picks a random seed
}

func Load() *Config {
	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", ""),
		ScenarioPath: getEnv("SCENARIO_PATH", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
		GameSeed:     parseSeed(getEnv("GAME_SEED", "0")),
	}
}

// LoadDotEnv loads variables from an env file into the environment. A missing
// file is not an error; variables already set are left alone.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseSeed(s string) uint64 {
	seed, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return seed
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
