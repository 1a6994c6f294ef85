// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Web Module мониторит REST backend системы резерваций (HTTP checker, critical).
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для backend
	"github.com/prometheus/client_golang/prometheus"
)

// BackendDependency — имя зависимости REST backend в метриках.
const BackendDependency = "reservation-backend"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
//
// Параметры:
//   - serviceID — имя вершины графа текущего приложения ("web-module")
//   - group — имя группы в метриках (CR_DEPHEALTH_GROUP)
//   - backendURL — базовый URL backend (CR_BACKEND_URL)
//   - checkInterval — интервал проверки (CR_DEPHEALTH_CHECK_INTERVAL)
func NewDephealthService(
	serviceID string,
	group string,
	backendURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, backendURL, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	backendURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, backendURL, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	backendURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP(BackendDependency,
			dephealth.FromURL(backendURL),
			dephealth.WithHTTPHealthPath(backendHealthPath(backendURL)),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		),
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// backendHealthPath — путь проверки backend. Отдельного health endpoint
// у backend нет, Flask отдаёт SPA на корне пути приложения.
func backendHealthPath(backendURL string) string {
	if parsed, err := url.Parse(backendURL); err == nil && parsed.Path != "" && parsed.Path != "/" {
		return parsed.Path
	}
	return "/"
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (REST backend)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// CheckReady реализует проверку готовности по состоянию backend.
// Пока первая проверка не выполнена — "degraded".
func (ds *DephealthService) CheckReady() (string, string) {
	if ds == nil {
		return "degraded", "мониторинг зависимостей не запущен"
	}
	return readinessFromHealth(ds.Health(), BackendDependency)
}

// readinessFromHealth переводит карту состояний в статус готовности.
// Ключи Health() могут содержать суффикс endpoint'а, поэтому
// учитываются все записи с префиксом имени зависимости.
func readinessFromHealth(health map[string]bool, dependency string) (string, string) {
	seen := false
	for key, ok := range health {
		if key != dependency && !hasDependencyPrefix(key, dependency) {
			continue
		}
		seen = true
		if !ok {
			return "fail", "backend недоступен"
		}
	}
	if !seen {
		return "degraded", "проверка backend ещё не выполнена"
	}
	return "ok", ""
}

func hasDependencyPrefix(key, dependency string) bool {
	return len(key) > len(dependency) && key[:len(dependency)] == dependency &&
		(key[len(dependency)] == ':' || key[len(dependency)] == '/')
}
