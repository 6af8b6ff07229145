package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ScenariosDir string
	SourcesDir   string
	RunsDBPath   string
	TSGenDBDSN   string
	LogLevel     string
	MaxParallel  int
	MetricsFile  string
}

// Load reads TSGEN_* variables. A .env file in the working directory fills
// in variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ScenariosDir: getEnv("TSGEN_SCENARIOS_DIR", "./scenarios"),
		SourcesDir:   getEnv("TSGEN_SOURCES_DIR", "./sources"),
		RunsDBPath:   getEnv("TSGEN_RUNS_DB", "./tsgen-runs.sqlite"),
		TSGenDBDSN:   getEnv("TSGEN_DB", ""),
		LogLevel:     getEnv("TSGEN_LOG_LEVEL", "info"),
		MaxParallel:  getEnvInt("TSGEN_MAX_PARALLEL", 4),
		MetricsFile:  getEnv("TSGEN_METRICS_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
