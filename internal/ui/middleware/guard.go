// Пакет middleware — HTTP middleware Web Module.
// guard.go — защита страниц: требуется подтверждённая сессия,
// для /admin/* — дополнительно возможность администратора.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

const (
	// ContextKeySession — сессия в контексте запроса.
	ContextKeySession contextKey = "ui_session"
)

// Guard — проверка доступа к страницам. Состояние пересчитывается
// на каждом запросе; сам Guard ничего не кэширует.
type Guard struct {
	provider *session.Provider
	// loading — страница ожидания, пока backend недоступен
	loading http.Handler
	logger  *slog.Logger
}

// NewGuard создаёт Guard.
func NewGuard(provider *session.Provider, loading http.Handler, logger *slog.Logger) *Guard {
	return &Guard{
		provider: provider,
		loading:  loading,
		logger:   logger.With(slog.String("component", "ui_guard")),
	}
}

// RequireSession пропускает только подтверждённые сессии.
//   - проверка не завершена → страница ожидания (повтор через refresh);
//   - нет сессии → 302 на /login?next=<запрошенный путь>;
//   - есть сессия → сессия и токен backend помещаются в context.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := g.provider.Init(r.Context(), w, r)

		switch s.State {
		case session.StateInitializing:
			g.loading.ServeHTTP(w, r)
			return
		case session.StateAnonymous:
			target := ""
			if r.Method == http.MethodGet {
				target = r.URL.RequestURI()
			}
			g.logger.Debug("Нет сессии, redirect на login",
				slog.String("path", r.URL.Path),
			)
			http.Redirect(w, r, session.LoginURL(target), http.StatusFound)
			return
		}

		ctx := WithSession(r.Context(), s)
		ctx = backend.WithToken(ctx, s.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только администраторов автопарка.
// Остальных перенаправляет на главную страницу.
// Применяется после RequireSession.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if !g.provider.IsAdmin(s) {
			if s != nil && s.User != nil {
				g.logger.Info("Доступ к административной странице запрещён",
					slog.String("intranet_id", s.User.IntranetID),
					slog.String("path", r.URL.Path),
				)
			}
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext извлекает сессию из контекста запроса.
// Возвращает nil, если запрос не прошёл через RequireSession.
func SessionFromContext(ctx context.Context) *session.Session {
	s, ok := ctx.Value(ContextKeySession).(*session.Session)
	if !ok {
		return nil
	}
	return s
}

// WithSession помещает сессию в context; SessionFromContext её достаёт.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}
