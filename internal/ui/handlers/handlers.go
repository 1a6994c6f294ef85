// Пакет handlers — HTTP-обработчики страниц Web Module.
// Все обращения к backend идут с context запроса; 401 от backend
// передаётся в session.Provider.HandleAuthError, прочие ошибки
// показываются на странице локализованным сообщением.
package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// Deps — общие зависимости обработчиков страниц.
type Deps struct {
	Pages    *pages.Pages
	Bundle   *i18n.Bundle
	Provider *session.Provider
	Client   *backend.Client
	// SecureCookie — флаг Secure для cookie языка и flash-сообщений
	SecureCookie bool
}

// base — общая часть обработчиков: рендеринг, layout, ошибки backend.
type base struct {
	Deps
	logger *slog.Logger
}

func newBase(deps Deps, component string, logger *slog.Logger) base {
	return base{
		Deps:   deps,
		logger: logger.With(slog.String("component", component)),
	}
}

// t переводит ключ на язык запроса.
func (b *base) t(r *http.Request, key string) string {
	return b.Bundle.T(r.Context(), key)
}

// layout собирает общие данные страницы и забирает flash-сообщение.
func (b *base) layout(w http.ResponseWriter, r *http.Request) pages.Layout {
	l := pages.Layout{
		Lang:        b.Bundle.LangFromContext(r.Context()),
		CurrentPath: r.URL.Path,
	}
	if s := uimiddleware.SessionFromContext(r.Context()); s != nil {
		l.User = s.User
		l.IsAdmin = b.Provider.IsAdmin(s)
	}
	if f := popFlash(w, r, b.SecureCookie); f != nil {
		if f.Error {
			l.Error = f.Message
		} else {
			l.Flash = f.Message
		}
	}
	return l
}

// render отдаёт страницу. Если клиент уже ушёл, ничего не пишет.
func (b *base) render(w http.ResponseWriter, r *http.Request, status int, page string, c templ.Component) {
	if r.Context().Err() != nil {
		b.logger.Debug("Запрос отменён, страница не отображается",
			slog.String("page", page),
		)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		b.logger.Error("Ошибка рендеринга страницы",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// backendError разбирает ошибку backend при загрузке страницы.
// Возвращает done=true, если ответ уже сформирован (401 → redirect на
// вход, отменённый запрос → ответа нет). Иначе — текст для показа.
func (b *base) backendError(w http.ResponseWriter, r *http.Request, err error, fallbackKey string) (msg string, done bool) {
	if r.Context().Err() != nil {
		return "", true
	}
	if backend.IsAuthError(err) {
		b.Provider.HandleAuthError(w, r, uimiddleware.SessionFromContext(r.Context()))
		return "", true
	}

	b.logger.Warn("Ошибка запроса к backend",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	return backend.UserMessage(err, b.t(r, fallbackKey)), false
}

// actionDone завершает POST-действие: flash-сообщение и redirect (303).
// Ошибка backend превращается в flash с ошибкой; 401 — в redirect на вход.
func (b *base) actionDone(w http.ResponseWriter, r *http.Request, err error, okKey, errKey, target string) {
	if err != nil {
		msg, done := b.backendError(w, r, err, errKey)
		if done {
			return
		}
		setFlash(w, flash{Message: msg, Error: true}, b.SecureCookie)
	} else {
		setFlash(w, flash{Message: b.t(r, okKey)}, b.SecureCookie)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// idParam извлекает числовой параметр маршрута.
func idParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt — числовой query-параметр; 0, если отсутствует или некорректен.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// localReferer возвращает путь Referer, если он ведёт на этот же хост.
func localReferer(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && !strings.EqualFold(u.Host, r.Host)) {
		return fallback
	}
	return session.SafeNext(u.RequestURI())
}
