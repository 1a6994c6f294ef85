// Пакет backend — HTTP-клиент REST API системы резервации (префикс /api).
// Поддерживает TLS с кастомным CA (CR_BACKEND_CA_CERT_PATH).
// Bearer-токен берётся из context (WithToken); ответ 401 возвращается
// как *AuthError, отсутствие ответа — как *NetworkError,
// прочие статусы вне 2xx — как *RequestError.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// maxResponseSize — верхняя граница размера тела ответа backend.
const maxResponseSize = 8 << 20

// Метрики обращений к backend
var (
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cr_backend_requests_total",
			Help: "Количество запросов к REST backend",
		},
		[]string{"group", "method", "status"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cr_backend_request_duration_seconds",
			Help:    "Длительность запросов к REST backend в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"group"},
	)
)

// tokenKey — ключ bearer-токена в context.
type tokenKey struct{}

// WithToken возвращает context с bearer-токеном для запросов к backend.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext извлекает bearer-токен (пустая строка, если нет).
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client — HTTP-клиент REST backend. Безопасен для конкурентного использования.
type Client struct {
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger

	Auth           *AuthAPI
	Vehicles       *VehiclesAPI
	Reservations   *ReservationsAPI
	Users          *UsersAPI
	ServiceRecords *ServiceRecordsAPI
	DamageRecords  *DamageRecordsAPI
}

// New создаёт клиент backend.
// baseURL — адрес backend без /api; caCertPath — путь к CA-сертификату
// (пустая строка — стандартный пул).
func New(baseURL string, timeout time.Duration, caCertPath string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный адрес backend %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("некорректная схема адреса backend %q: ожидается http или https", baseURL)
	}

	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата backend: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат backend добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	c := &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(baseURL, "/") + "/api",
		logger:     logger.With(slog.String("component", "backend_client")),
	}
	c.Auth = &AuthAPI{c: c}
	c.Vehicles = &VehiclesAPI{c: c}
	c.Reservations = &ReservationsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	c.ServiceRecords = &ServiceRecordsAPI{c: c}
	c.DamageRecords = &DamageRecordsAPI{c: c}
	return c, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит PEM-блоков", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

// request описывает один вызов REST API.
type request struct {
	// group — группа endpoint'ов для метрик ("auth", "vehicles", ...)
	group string
	// op — имя операции для ошибок и логов
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// errorResponse — тело ошибки backend: {"error": "..."}.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// do выполняет запрос и декодирует JSON-ответ в out (nil — тело игнорируется).
func (c *Client) do(ctx context.Context, req request, out any) error {
	reqURL := c.apiURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("кодирование запроса %s: %w", req.op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("создание запроса %s: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	backendRequestDuration.WithLabelValues(req.group).Observe(time.Since(start).Seconds())
	if err != nil {
		backendRequestsTotal.WithLabelValues(req.group, req.method, "network_error").Inc()
		c.logger.Debug("Backend недоступен",
			slog.String("op", req.op),
			slog.String("error", err.Error()),
		)
		return &NetworkError{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	backendRequestsTotal.WithLabelValues(req.group, req.method, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &NetworkError{Op: req.op, Err: fmt.Errorf("чтение ответа: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Op: req.op, Message: parseErrorMessage(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Debug("Backend вернул ошибку",
			slog.String("op", req.op),
			slog.Int("status", resp.StatusCode),
		)
		return &RequestError{
			Op:         req.op,
			StatusCode: resp.StatusCode,
			Message:    parseErrorMessage(body),
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("декодирование ответа %s: %w", req.op, err)
	}
	return nil
}

// parseErrorMessage извлекает текст ошибки из JSON-тела.
// Flask отдаёт {"error": ...}, flask-jwt-extended — {"msg": ...};
// HTML-страницы ошибок игнорируются.
func parseErrorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}
	switch {
	case er.Error != "":
		return er.Error
	case er.Message != "":
		return er.Message
	default:
		return er.Msg
	}
}

// idPath формирует путь вида /prefix/{id}[/suffix].
func idPath(prefix string, id int, suffix ...string) string {
	return prefix + "/" + strconv.Itoa(id) + strings.Join(suffix, "")
}

// backendTimeLayout — формат времени в query-параметрах backend.
const backendTimeLayout = "2006-01-02T15:04:05"

// backendDateLayout — формат даты в query-параметрах backend.
const backendDateLayout = "2006-01-02"
