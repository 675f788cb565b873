// Пакет config — загрузка и валидация конфигурации Editor Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Editor Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8050-8059)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Repository API (upstream) ---

	// Базовый URL Repository API
	RepoURL string
	// Таймаут запросов к Repository API
	RepoTimeout time.Duration
	// Статический bearer-токен сервисного аккаунта (пусто — без Authorization)
	RepoToken string

	// --- Редактор ---

	// Интервал дебаунса пополевой валидации
	ValidateDebounce time.Duration
	// TTL неактивной сессии редактора
	SessionTTL time.Duration
	// Размер LRU-кэша поиска участников
	SearchCacheSize int
	// TTL записи кэша поиска участников
	SearchCacheTTL time.Duration

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Dependency health ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках dephealth
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// EM_PORT — порт HTTP-сервера (по умолчанию 8050)
	cfg.Port, err = getEnvInt("EM_PORT", 8050)
	if err != nil {
		return nil, fmt.Errorf("EM_PORT: %w", err)
	}

	// EM_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("EM_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("EM_LOG_LEVEL: %w", err)
	}

	// EM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("EM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("EM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Repository API ---

	// EM_REPO_URL — базовый URL Repository API (обязательная)
	cfg.RepoURL, err = getEnvRequired("EM_REPO_URL")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(cfg.RepoURL, "http://") && !strings.HasPrefix(cfg.RepoURL, "https://") {
		return nil, fmt.Errorf("EM_REPO_URL: должен начинаться с http:// или https://, получено %q", cfg.RepoURL)
	}

	// EM_REPO_TIMEOUT — таймаут запросов к Repository API (по умолчанию 30s)
	cfg.RepoTimeout, err = getEnvDuration("EM_REPO_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_REPO_TIMEOUT: %w", err)
	}

	// EM_REPO_TOKEN — статический bearer-токен (опциональная)
	cfg.RepoToken = getEnvDefault("EM_REPO_TOKEN", "")

	// --- Редактор ---

	// EM_VALIDATE_DEBOUNCE — интервал дебаунса валидации (по умолчанию 600ms)
	cfg.ValidateDebounce, err = getEnvDuration("EM_VALIDATE_DEBOUNCE", 600*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("EM_VALIDATE_DEBOUNCE: %w", err)
	}

	// EM_SESSION_TTL — TTL неактивной сессии редактора (по умолчанию 2h)
	cfg.SessionTTL, err = getEnvDuration("EM_SESSION_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("EM_SESSION_TTL: %w", err)
	}

	// EM_SEARCH_CACHE_SIZE — размер кэша поиска участников (по умолчанию 512)
	cfg.SearchCacheSize, err = getEnvInt("EM_SEARCH_CACHE_SIZE", 512)
	if err != nil {
		return nil, fmt.Errorf("EM_SEARCH_CACHE_SIZE: %w", err)
	}
	if cfg.SearchCacheSize <= 0 {
		return nil, fmt.Errorf("EM_SEARCH_CACHE_SIZE: значение должно быть > 0")
	}

	// EM_SEARCH_CACHE_TTL — TTL записи кэша поиска (по умолчанию 5m)
	cfg.SearchCacheTTL, err = getEnvDuration("EM_SEARCH_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("EM_SEARCH_CACHE_TTL: %w", err)
	}

	// --- HTTP Server Timeouts ---

	// EM_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("EM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_HTTP_READ_TIMEOUT: %w", err)
	}

	// EM_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 60s)
	// Больше таймаута чтения: загрузки архивов проксируются в upstream.
	cfg.HTTPWriteTimeout, err = getEnvDuration("EM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// EM_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("EM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Dependency health ---

	// EM_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 30s)
	cfg.DephealthCheckInterval, err = getEnvDuration("EM_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// EM_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию modelstore)
	cfg.DephealthGroup = getEnvDefault("EM_DEPHEALTH_GROUP", "modelstore")

	// --- Graceful shutdown ---

	// EM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("EM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("EM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
