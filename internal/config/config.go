package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port string `json:"port"`

	// Статический Bearer токен для /api. Пустой токен отключает
	// аутентификацию (локальная разработка)
	AuthToken string `json:"-"`

	// SOAP CRM
	CRMURL          string        `json:"crm_url"`
	CRMAppName      string        `json:"crm_app_name"`
	CRMUsername     string        `json:"crm_username"`
	CRMPasswordHash string        `json:"-"`
	CRMTimeout      time.Duration `json:"crm_timeout"`
	CRMRateInterval time.Duration `json:"crm_rate_interval"`

	// Хранилище
	SnapshotDBPath string `json:"snapshot_db_path"`
	SettingsPath   string `json:"settings_path"`

	// Рендеринг
	CompilerPath  string        `json:"compiler_path"`
	RenderTimeout time.Duration `json:"render_timeout"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port:      getEnv("SERVER_PORT", "8000"),
		AuthToken: os.Getenv("AUTH_TOKEN"),

		// CRM
		CRMURL:          os.Getenv("CRM_SOAP_URL"),
		CRMAppName:      getEnv("CRM_APP_NAME", "contractor"),
		CRMUsername:     os.Getenv("CRM_USERNAME"),
		CRMPasswordHash: os.Getenv("CRM_PASSWORD_HASH"),
		CRMTimeout:      getEnvDuration("CRM_TIMEOUT", 30*time.Second),
		CRMRateInterval: getEnvDuration("CRM_RATE_INTERVAL", 200*time.Millisecond),

		// Хранилище
		SnapshotDBPath: getEnv("SNAPSHOT_DB_PATH", "snapshots.db"),
		SettingsPath:   getEnv("SETTINGS_PATH", "settings.json"),

		// Рендеринг
		CompilerPath:  getEnv("XELATEX_PATH", "xelatex"),
		RenderTimeout: getEnvDuration("RENDER_TIMEOUT", 2*time.Minute),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if c.CRMURL == "" {
		return fmt.Errorf("CRM_SOAP_URL is required")
	}
	if c.CRMUsername == "" {
		return fmt.Errorf("CRM_USERNAME is required")
	}
	if c.CRMPasswordHash == "" {
		return fmt.Errorf("CRM_PASSWORD_HASH is required")
	}
	if c.CRMTimeout <= 0 {
		return fmt.Errorf("CRM timeout must be positive")
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render timeout must be positive")
	}
	return nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
