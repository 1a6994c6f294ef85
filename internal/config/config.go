// Пакет config — загрузка и валидация конфигурации Web Module
// из переменных окружения (и опционального файла .env).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Web Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- Backend (REST API системы резерваций) ---

	// Базовый URL backend (без /api)
	BackendURL string
	// Таймаут одного запроса к backend
	BackendTimeout time.Duration
	// Путь к CA-сертификату backend (опционально)
	BackendCACertPath string

	// --- Сессии ---

	// Ключ шифрования cookie-сессии (пустой — случайный при старте)
	SessionSecret string
	// Secure flag для cookie
	SessionSecureCookie bool
	// Максимальный срок жизни сессии
	SessionMaxAge time.Duration
	// TTL кэша проверки токена через /auth/me (0 — без кэша)
	SessionValidateTTL time.Duration

	// --- Redis (опционально, серверное хранилище сессий) ---

	// Адрес Redis host:port (пустой — cookie-хранилище)
	RedisAddr string
	// Пароль Redis
	RedisPassword string
	// Номер БД Redis
	RedisDB int

	// --- UI ---

	// Язык по умолчанию (cs, en)
	DefaultLang string

	// --- topologymetrics ---

	// Группа в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
// Если в рабочем каталоге есть файл .env — он загружается первым,
// не перезаписывая уже заданные переменные окружения.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".env: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// CR_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("CR_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("CR_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("CR_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("CR_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CR_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("CR_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("CR_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("CR_HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("CR_HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("CR_HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, fmt.Errorf("CR_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("CR_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("CR_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Backend ---

	cfg.BackendURL = strings.TrimRight(getEnvDefault("CR_BACKEND_URL", "http://localhost:5000"), "/")
	if !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		return nil, fmt.Errorf("CR_BACKEND_URL: ожидается http:// или https:// URL, получено %q", cfg.BackendURL)
	}

	cfg.BackendTimeout, err = getEnvDuration("CR_BACKEND_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CR_BACKEND_TIMEOUT: %w", err)
	}

	cfg.BackendCACertPath = getEnvDefault("CR_BACKEND_CA_CERT_PATH", "")

	// --- Сессии ---

	cfg.SessionSecret = os.Getenv("CR_SESSION_SECRET")

	cfg.SessionSecureCookie, err = getEnvBool("CR_SESSION_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("CR_SESSION_SECURE_COOKIE: %w", err)
	}

	// Backend выдаёт токены на 8 часов — сессия не живёт дольше
	cfg.SessionMaxAge, err = getEnvDuration("CR_SESSION_MAX_AGE", 8*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("CR_SESSION_MAX_AGE: %w", err)
	}
	if cfg.SessionMaxAge <= 0 {
		return nil, fmt.Errorf("CR_SESSION_MAX_AGE: значение должно быть положительным")
	}

	cfg.SessionValidateTTL, err = getEnvDuration("CR_SESSION_VALIDATE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CR_SESSION_VALIDATE_TTL: %w", err)
	}
	if cfg.SessionValidateTTL < 0 {
		return nil, fmt.Errorf("CR_SESSION_VALIDATE_TTL: значение не может быть отрицательным")
	}

	// --- Redis ---

	cfg.RedisAddr = getEnvDefault("CR_REDIS_ADDR", "")
	cfg.RedisPassword = getEnvDefault("CR_REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvInt("CR_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("CR_REDIS_DB: %w", err)
	}

	// --- UI ---

	cfg.DefaultLang = getEnvDefault("CR_DEFAULT_LANG", "cs")
	if cfg.DefaultLang != "cs" && cfg.DefaultLang != "en" {
		return nil, fmt.Errorf("CR_DEFAULT_LANG: недопустимое значение %q, допустимые: cs, en", cfg.DefaultLang)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("CR_DEPHEALTH_GROUP", "carreserve")
	cfg.DephealthCheckInterval, err = getEnvDuration("CR_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CR_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("CR_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("CR_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// RedisEnabled сообщает, выбрано ли серверное хранилище сессий.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
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

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (используйте true/false)", val)
	}
	return b, nil
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
