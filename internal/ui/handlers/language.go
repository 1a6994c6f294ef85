// language.go — переключение языка интерфейса.
package handlers

import (
	"net/http"

	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
)

// LanguageHandler — обработчик POST /set-language.
type LanguageHandler struct {
	bundle       *i18n.Bundle
	secureCookie bool
}

// NewLanguageHandler создаёт новый LanguageHandler.
func NewLanguageHandler(bundle *i18n.Bundle, secureCookie bool) *LanguageHandler {
	return &LanguageHandler{bundle: bundle, secureCookie: secureCookie}
}

// HandleSetLanguage устанавливает cookie "lang" и возвращает на
// предыдущую страницу этого же сайта.
// Неподдерживаемый язык заменяется языком по умолчанию.
func (h *LanguageHandler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = h.bundle.DefaultLang()
	}

	i18n.SetLangCookie(w, lang, h.secureCookie)
	http.Redirect(w, r, localReferer(r, "/"), http.StatusSeeOther)
}
