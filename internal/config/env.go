package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognised by the CLI
const (
	EnvDBPath      = "PSU_DB_PATH"
	EnvLogLevel    = "PSU_LOG_LEVEL"
	EnvMetricsFile = "PSU_METRICS_FILE"
)

// Env holds process-level settings that do not belong in a run configuration
type Env struct {
	DBPath      string
	LogLevel    string
	MetricsFile string
}

// LoadEnv reads settings from the environment, after loading a .env file from
// the working directory when one exists.
func LoadEnv() Env {
	// A missing .env is normal
	_ = godotenv.Load()

	return Env{
		DBPath:      getEnv(EnvDBPath, "psupdate.db"),
		LogLevel:    strings.ToLower(getEnv(EnvLogLevel, "info")),
		MetricsFile: getEnv(EnvMetricsFile, ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
