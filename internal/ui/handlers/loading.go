// loading.go — страница ожидания, пока сессию нельзя проверить.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
)

// loadingRefreshSeconds — интервал автоматического повтора проверки.
const loadingRefreshSeconds = 3

// LoadingHandler отдаёт 503 со страницей ожидания и Retry-After.
type LoadingHandler struct {
	base
}

// NewLoadingHandler создаёт новый LoadingHandler.
func NewLoadingHandler(deps Deps, logger *slog.Logger) *LoadingHandler {
	return &LoadingHandler{base: newBase(deps, "ui.loading", logger)}
}

// ServeHTTP реализует http.Handler.
func (h *LoadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", strconv.Itoa(loadingRefreshSeconds))
	w.Header().Set("Cache-Control", "no-store")

	data := pages.LoadingData{
		Layout:         pages.Layout{Lang: h.Bundle.LangFromContext(r.Context())},
		RefreshSeconds: loadingRefreshSeconds,
	}
	h.render(w, r, http.StatusServiceUnavailable, "loading", h.Pages.Loading(data))
}
