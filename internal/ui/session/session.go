// Пакет session — состояние аутентификации браузерной сессии.
// Provider проверяет сохранённые учётные данные через backend (/auth/me),
// выполняет вход и выход, решает, что делать при ответе 401.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/domain/rbac"
	"github.com/bigkaa/carreserve/web-module/internal/ui/auth"
)

// validationCacheSize — максимальное число токенов в кэше проверок.
const validationCacheSize = 10000

// sessionValidationsTotal — результаты проверки сохранённых учётных данных.
var sessionValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cr_session_validations_total",
		Help: "Результаты проверки сохранённых учётных данных через /auth/me",
	},
	[]string{"result"},
)

// ErrCredentialStore — backend принял вход, но учётные данные
// не удалось сохранить (например, Redis недоступен).
var ErrCredentialStore = errors.New("хранилище учётных данных недоступно")

// State — состояние сессии.
type State int

const (
	// StateInitializing — проверка ещё не завершена (backend недоступен).
	StateInitializing State = iota
	// StateAnonymous — пользователь не вошёл.
	StateAnonymous
	// StateAuthenticated — токен подтверждён backend.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session — состояние аутентификации для одного запроса.
type Session struct {
	// User — профиль (nil вне StateAuthenticated)
	User *model.UserProfile
	// State — состояние
	State State
	// Token — bearer-токен (пусто вне StateAuthenticated)
	Token string
}

// IsAuthenticated — true только в StateAuthenticated.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State == StateAuthenticated
}

// Loading — true, пока проверка не завершена.
func (s *Session) Loading() bool {
	return s != nil && s.State == StateInitializing
}

func anonymous() *Session {
	return &Session{State: StateAnonymous}
}

func authenticated(token string, user *model.UserProfile) *Session {
	return &Session{State: StateAuthenticated, Token: token, User: user}
}

// AuthBackend — операции /auth, нужные Provider.
type AuthBackend interface {
	Login(ctx context.Context, intranetID string) (*backend.LoginResponse, error)
	Me(ctx context.Context) (*model.UserProfile, error)
	Logout(ctx context.Context) error
}

// Provider — владелец состояния аутентификации. Безопасен для конкурентного
// использования: собственного изменяемого состояния, кроме кэша, нет.
type Provider struct {
	auth   AuthBackend
	store  auth.CredentialStore
	cache  *expirable.LRU[string, *model.UserProfile]
	logger *slog.Logger
}

// NewProvider создаёт Provider.
// validateTTL — время жизни успешной проверки токена (0 — проверять каждый запрос).
func NewProvider(authAPI AuthBackend, store auth.CredentialStore, validateTTL time.Duration, logger *slog.Logger) *Provider {
	p := &Provider{
		auth:   authAPI,
		store:  store,
		logger: logger.With(slog.String("component", "session_provider")),
	}
	if validateTTL > 0 {
		p.cache = expirable.NewLRU[string, *model.UserProfile](validationCacheSize, nil, validateTTL)
	}
	return p
}

// cacheKey — ключ кэша: токен не хранится в памяти в открытом виде.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (p *Provider) forget(token string) {
	if p.cache != nil && token != "" {
		p.cache.Remove(cacheKey(token))
	}
}

// Init определяет состояние сессии запроса.
//   - учётных данных нет → StateAnonymous;
//   - /auth/me успешен → StateAuthenticated со свежим профилем backend;
//   - AuthError или RequestError → данные удаляются, StateAnonymous;
//   - NetworkError → StateInitializing, данные сохраняются.
func (p *Provider) Init(ctx context.Context, w http.ResponseWriter, r *http.Request) *Session {
	cred, err := p.store.Load(r)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			p.logger.Debug("Повреждённые учётные данные удалены",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr),
			)
			p.clear(w, r)
			return anonymous()
		}
		p.logger.Warn("Хранилище сессий недоступно",
			slog.String("error", err.Error()),
		)
		return &Session{State: StateInitializing}
	}
	if cred == nil {
		return anonymous()
	}

	if p.cache != nil {
		if user, ok := p.cache.Get(cacheKey(cred.Token)); ok {
			sessionValidationsTotal.WithLabelValues("cache_hit").Inc()
			return authenticated(cred.Token, user)
		}
	}

	user, err := p.auth.Me(backend.WithToken(ctx, cred.Token))
	if err != nil {
		if backend.IsNetworkError(err) {
			sessionValidationsTotal.WithLabelValues("network_error").Inc()
			p.logger.Warn("Backend недоступен, проверка сессии отложена",
				slog.String("error", err.Error()),
			)
			return &Session{State: StateInitializing}
		}

		sessionValidationsTotal.WithLabelValues("rejected").Inc()
		p.logger.Info("Сохранённый токен отклонён backend, сессия удалена",
			slog.String("intranet_id", cred.User.IntranetID),
			slog.String("error", err.Error()),
		)
		p.clear(w, r)
		return anonymous()
	}

	sessionValidationsTotal.WithLabelValues("ok").Inc()
	if p.cache != nil {
		p.cache.Add(cacheKey(cred.Token), user)
	}
	return authenticated(cred.Token, user)
}

// Login выполняет вход по intranet ID.
// Пустой (после обрезки пробелов) ID — *backend.ValidationError без обращения к backend.
// При успехе токен и профиль сохраняются вместе.
func (p *Provider) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, intranetID string) (*Session, error) {
	intranetID = strings.TrimSpace(intranetID)
	if intranetID == "" {
		return anonymous(), &backend.ValidationError{Field: "intranet_id", Message: "intranet ID je povinný"}
	}

	resp, err := p.auth.Login(ctx, intranetID)
	if err != nil {
		p.logger.Info("Вход отклонён",
			slog.String("intranet_id", intranetID),
			slog.String("error", err.Error()),
		)
		return anonymous(), err
	}

	user := resp.User
	if err := p.store.Save(w, r, auth.NewCredential(resp.AccessToken, &user)); err != nil {
		p.logger.Error("Ошибка сохранения учётных данных",
			slog.String("intranet_id", intranetID),
			slog.String("error", err.Error()),
		)
		return anonymous(), fmt.Errorf("%w: %w", ErrCredentialStore, err)
	}

	if p.cache != nil {
		p.cache.Add(cacheKey(resp.AccessToken), &user)
	}

	p.logger.Info("Пользователь вошёл",
		slog.String("intranet_id", user.IntranetID),
		slog.String("role", user.RoleName),
	)
	return authenticated(resp.AccessToken, &user), nil
}

// Logout уведомляет backend и удаляет учётные данные.
// Ошибки backend игнорируются: данные удаляются всегда.
func (p *Provider) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) *Session {
	cred, err := p.store.Load(r)
	if err == nil && cred != nil {
		if err := p.auth.Logout(backend.WithToken(ctx, cred.Token)); err != nil {
			p.logger.Debug("Ошибка logout на backend проигнорирована",
				slog.String("error", err.Error()),
			)
		}
		p.forget(cred.Token)
		p.logger.Info("Пользователь вышел",
			slog.String("intranet_id", cred.User.IntranetID),
		)
	}

	p.clear(w, r)
	return anonymous()
}

// IsAdmin — есть ли у пользователя сессии возможность администратора автопарка.
func (p *Provider) IsAdmin(s *Session) bool {
	if !s.IsAuthenticated() {
		return false
	}
	return rbac.Can(s.User, rbac.CapabilityFleetAdmin)
}

// HandleAuthError обрабатывает 401 от backend во время страницы:
// удаляет учётные данные (только если в хранилище всё ещё тот же токен)
// и перенаправляет на страницу входа.
func (p *Provider) HandleAuthError(w http.ResponseWriter, r *http.Request, s *Session) {
	if s != nil && s.Token != "" {
		p.forget(s.Token)
		if _, err := p.store.ClearIfToken(w, r, s.Token); err != nil {
			p.logger.Warn("Ошибка удаления учётных данных после 401",
				slog.String("error", err.Error()),
			)
		}
	}

	next := ""
	if r.Method == http.MethodGet {
		next = r.URL.RequestURI()
	}
	http.Redirect(w, r, LoginURL(next), http.StatusFound)
}

func (p *Provider) clear(w http.ResponseWriter, r *http.Request) {
	if err := p.store.Clear(w, r); err != nil {
		p.logger.Warn("Ошибка удаления учётных данных",
			slog.String("error", err.Error()),
		)
	}
}

// SafeNext возвращает next, если это локальный путь, иначе "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// LoginURL формирует адрес страницы входа с параметром next.
func LoginURL(next string) string {
	next = SafeNext(next)
	if next == "/" || strings.HasPrefix(next, "/login") {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
