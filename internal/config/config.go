package config

import (
	"os"
	"strconv"
)

// Config структура конфигурации приложения
type Config struct {
	Server struct {
		Port int
		Host string
	}
	Upstream struct {
		BaseURL      string
		Timeout      int // в секундах
		PollInterval int // в секундах, 0 отключает опрос
	}
	Camera struct {
		StaticDir     string
		HistoryLength int // Длина истории позиций по умолчанию
	}
	Logging struct {
		Level string
	}
	Environment string
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() *Config {
	cfg := &Config{}

	// Конфигурация сервера
	cfg.Server.Port = getEnvInt("SERVER_PORT", 8080)
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")

	// Конфигурация внешнего API позиций, опрос отключен по умолчанию
	cfg.Upstream.BaseURL = getEnv("UPSTREAM_API_BASE_URL", "")
	cfg.Upstream.Timeout = getEnvInt("UPSTREAM_API_TIMEOUT_SECONDS", 30)
	cfg.Upstream.PollInterval = getEnvInt("UPSTREAM_POLL_INTERVAL_SECONDS", 0)

	// Конфигурация камеры
	cfg.Camera.StaticDir = getEnv("STATIC_DIR", "./static")
	cfg.Camera.HistoryLength = getEnvInt("HISTORY_LENGTH", 50)

	// Конфигурация логирования
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	cfg.Environment = getEnv("ENVIRONMENT", "development")

	return cfg
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает int значение переменной окружения или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
