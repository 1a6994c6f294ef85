// auth.go — вход по intranet ID и выход.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// AuthHandler — обработчики входа и выхода.
type AuthHandler struct {
	base
	loading http.Handler
}

// NewAuthHandler создаёт новый AuthHandler.
// loading — страница ожидания для случая, когда backend недоступен.
func NewAuthHandler(deps Deps, loading http.Handler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		base:    newBase(deps, "ui.auth", logger),
		loading: loading,
	}
}

// HandleLoginPage — GET /login.
// Уже вошедший пользователь перенаправляется на next.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := session.SafeNext(r.URL.Query().Get("next"))

	s := h.Provider.Init(r.Context(), w, r)
	switch {
	case s.IsAuthenticated():
		http.Redirect(w, r, next, http.StatusFound)
		return
	case s.Loading():
		h.loading.ServeHTTP(w, r)
		return
	}

	data := pages.LoginData{
		Layout: h.layout(w, r),
		Next:   next,
	}
	h.render(w, r, http.StatusOK, "login", h.Pages.Login(data))
}

// HandleLogin — POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, h.t(r, "common.error"), http.StatusBadRequest)
		return
	}
	intranetID := r.PostFormValue("intranet_id")
	next := session.SafeNext(r.PostFormValue("next"))

	_, err := h.Provider.Login(r.Context(), w, r, intranetID)
	if err == nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	status := http.StatusUnauthorized
	var msg string
	var valErr *backend.ValidationError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		msg = h.t(r, "login.required")
	case errors.Is(err, session.ErrCredentialStore):
		status = http.StatusServiceUnavailable
		msg = h.t(r, "login.store_error")
	case backend.IsNetworkError(err):
		status = http.StatusBadGateway
		msg = h.t(r, "login.failed")
	default:
		msg = backend.UserMessage(err, h.t(r, "login.failed"))
	}

	layout := h.layout(w, r)
	layout.Error = msg
	data := pages.LoginData{
		Layout:     layout,
		IntranetID: intranetID,
		Next:       next,
	}
	h.render(w, r, status, "login", h.Pages.Login(data))
}

// HandleLogout — POST /logout. Учётные данные удаляются всегда.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Provider.Logout(r.Context(), w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
