// Package config конфигурация CLI и dev-сервера: значения по умолчанию,
// поверх них YAML-файл пользователя, поверх него переменные окружения.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config настройки клиента
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	GeocoderURL    string        `yaml:"geocoder_url"`
	IPLookupURL    string        `yaml:"ip_lookup_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Load собирает конфигурацию клиента. Отсутствующий или битый файл
// не фатален: остаются умолчания и окружение
func Load() Config {
	cfg := Config{
		APIBaseURL:     "http://localhost:9090",
		GeocoderURL:    "https://nominatim.openstreetmap.org",
		IPLookupURL:    "http://ip-api.com",
		RequestTimeout: 30 * time.Second,
		LogLevel:       "warn",
	}
	if path, err := DefaultConfigPath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, &cfg)
		}
	}
	cfg.APIBaseURL = getenv("MEDIFIND_API_URL", cfg.APIBaseURL)
	cfg.GeocoderURL = getenv("MEDIFIND_GEOCODER_URL", cfg.GeocoderURL)
	cfg.IPLookupURL = getenv("MEDIFIND_IP_LOOKUP_URL", cfg.IPLookupURL)
	cfg.RequestTimeout = getenvDuration("MEDIFIND_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.LogLevel = getenv("MEDIFIND_LOG_LEVEL", cfg.LogLevel)
	return cfg
}

// DefaultConfigPath YAML-файл в пользовательском каталоге конфигурации
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "medifind", "config.yaml"), nil
}

// ServerConfig настройки dev-сервера
type ServerConfig struct {
	HTTPAddr     string
	JWTSecret    string
	JWTIssuer    string
	TokenTTL     time.Duration
	MaxImageSize int
}

// LoadServer конфигурация dev-сервера из окружения
func LoadServer() ServerConfig {
	return ServerConfig{
		HTTPAddr:     getenv("MEDIFIND_HTTP_ADDR", ":9090"),
		JWTSecret:    getenv("MEDIFIND_JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:    getenv("MEDIFIND_JWT_ISSUER", "medifind-devserver"),
		TokenTTL:     getenvDuration("MEDIFIND_TOKEN_TTL", 24*time.Hour),
		MaxImageSize: getenvInt("MEDIFIND_MAX_IMAGE_BYTES", 2<<20),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
