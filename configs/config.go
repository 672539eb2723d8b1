package config

import (
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Host        string
	Port        string
	Environment string

	// 起動時に読み込むデータファイル
	DatasetPath string
	ZipMapPath  string
	TypeMapPath string
	ModelPath   string

	LogLevel  string
	LogFormat string

	// 空または "*" の場合は全オリジンを許可
	CORSAllowedOrigins []string

	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "5000"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		DatasetPath:        getEnv("DATASET_PATH", "data_311_2023_analysis_ver1.csv"),
		ZipMapPath:         getEnv("ZIP_MAP_PATH", "zip_code_map.csv"),
		TypeMapPath:        getEnv("TYPE_MAP_PATH", "request_type_map.csv"),
		ModelPath:          getEnv("MODEL_PATH", "model.json"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// IsProduction 本番環境かどうか
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv falls back to the default on unparsable or non-positive values
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
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
