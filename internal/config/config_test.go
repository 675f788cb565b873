package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"EM_REPO_URL": "https://repo.modelstore.lan",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8050 {
		t.Errorf("Port = %d, ожидается 8050", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.RepoURL != "https://repo.modelstore.lan" {
		t.Errorf("RepoURL = %q, ожидается https://repo.modelstore.lan", cfg.RepoURL)
	}
	if cfg.RepoTimeout != 30*time.Second {
		t.Errorf("RepoTimeout = %v, ожидается 30s", cfg.RepoTimeout)
	}
	if cfg.RepoToken != "" {
		t.Errorf("RepoToken = %q, ожидается пустой", cfg.RepoToken)
	}
	if cfg.ValidateDebounce != 600*time.Millisecond {
		t.Errorf("ValidateDebounce = %v, ожидается 600ms", cfg.ValidateDebounce)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, ожидается 2h", cfg.SessionTTL)
	}
	if cfg.SearchCacheSize != 512 {
		t.Errorf("SearchCacheSize = %d, ожидается 512", cfg.SearchCacheSize)
	}
	if cfg.SearchCacheTTL != 5*time.Minute {
		t.Errorf("SearchCacheTTL = %v, ожидается 5m", cfg.SearchCacheTTL)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Errorf("HTTPReadTimeout = %v, ожидается 30s", cfg.HTTPReadTimeout)
	}
	if cfg.HTTPWriteTimeout != 60*time.Second {
		t.Errorf("HTTPWriteTimeout = %v, ожидается 60s", cfg.HTTPWriteTimeout)
	}
	if cfg.DephealthGroup != "modelstore" {
		t.Errorf("DephealthGroup = %q, ожидается modelstore", cfg.DephealthGroup)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	setEnvs(t, map[string]string{
		"EM_PORT":              "8055",
		"EM_LOG_LEVEL":         "debug",
		"EM_LOG_FORMAT":        "text",
		"EM_REPO_URL":          "http://repo.local:8000",
		"EM_REPO_TIMEOUT":      "10s",
		"EM_REPO_TOKEN":        "svc-token",
		"EM_VALIDATE_DEBOUNCE": "250ms",
		"EM_SESSION_TTL":       "45m",
		"EM_SEARCH_CACHE_SIZE": "64",
		"EM_SEARCH_CACHE_TTL":  "1m",
		"EM_DEPHEALTH_GROUP":   "staging",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8055 {
		t.Errorf("Port = %d, ожидается 8055", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.RepoTimeout != 10*time.Second {
		t.Errorf("RepoTimeout = %v, ожидается 10s", cfg.RepoTimeout)
	}
	if cfg.RepoToken != "svc-token" {
		t.Errorf("RepoToken = %q, ожидается svc-token", cfg.RepoToken)
	}
	if cfg.ValidateDebounce != 250*time.Millisecond {
		t.Errorf("ValidateDebounce = %v, ожидается 250ms", cfg.ValidateDebounce)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Errorf("SessionTTL = %v, ожидается 45m", cfg.SessionTTL)
	}
	if cfg.SearchCacheSize != 64 {
		t.Errorf("SearchCacheSize = %d, ожидается 64", cfg.SearchCacheSize)
	}
	if cfg.DephealthGroup != "staging" {
		t.Errorf("DephealthGroup = %q, ожидается staging", cfg.DephealthGroup)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		envs map[string]string
	}{
		{
			name: "нет EM_REPO_URL",
			envs: map[string]string{"EM_REPO_URL": ""},
		},
		{
			name: "EM_REPO_URL без схемы",
			envs: map[string]string{"EM_REPO_URL": "repo.local:8000"},
		},
		{
			name: "некорректный порт",
			envs: map[string]string{"EM_REPO_URL": "http://repo.local", "EM_PORT": "не-число"},
		},
		{
			name: "некорректный уровень логирования",
			envs: map[string]string{"EM_REPO_URL": "http://repo.local", "EM_LOG_LEVEL": "trace"},
		},
		{
			name: "некорректный формат логов",
			envs: map[string]string{"EM_REPO_URL": "http://repo.local", "EM_LOG_FORMAT": "xml"},
		},
		{
			name: "некорректная длительность",
			envs: map[string]string{"EM_REPO_URL": "http://repo.local", "EM_SESSION_TTL": "два часа"},
		},
		{
			name: "нулевой размер кэша",
			envs: map[string]string{"EM_REPO_URL": "http://repo.local", "EM_SEARCH_CACHE_SIZE": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.envs)
			if _, err := Load(); err == nil {
				t.Error("ожидалась ошибка Load()")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogLevel(%q): ошибка = %v, ожидалась ошибка: %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, ожидается %v", tt.input, got, tt.want)
			}
		})
	}
}
