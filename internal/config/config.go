package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	APIBaseURL  string        `env:"INCIDENT_API_URL"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"warn"`
	StateDir    string        `env:"STATE_DIR"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		APIBaseURL:  os.Getenv("INCIDENT_API_URL"),
		HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
		LogLevel:    getEnv("LOG_LEVEL", "warn"),
		StateDir:    getEnv("STATE_DIR", defaultStateDir()),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("INCIDENT_API_URL environment variable is required")
	}

	return cfg, nil
}

// defaultStateDir возвращает каталог для хранения сессии
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".incident-reports"
	}
	return filepath.Join(home, ".incident-reports")
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
