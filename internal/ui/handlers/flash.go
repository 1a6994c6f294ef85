// flash.go — однократные сообщения после POST-действий (PRG).
package handlers

import (
	"net/http"
	"net/url"
	"strings"
)

// flashCookieName — cookie с сообщением для следующей страницы.
const flashCookieName = "carreserve_flash"

// flashMaxAge — сообщение не переживает минуту.
const flashMaxAge = 60

// flash — сообщение об итоге действия.
type flash struct {
	Message string
	Error   bool
}

// Префиксы вида сообщения в значении cookie.
const (
	flashPrefixOK    = "ok:"
	flashPrefixError = "err:"
)

func setFlash(w http.ResponseWriter, f flash, secure bool) {
	prefix := flashPrefixOK
	if f.Error {
		prefix = flashPrefixError
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(prefix + f.Message),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash читает сообщение и сразу удаляет cookie.
func popFlash(w http.ResponseWriter, r *http.Request, secure bool) *flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	switch {
	case strings.HasPrefix(raw, flashPrefixError):
		return &flash{Message: strings.TrimPrefix(raw, flashPrefixError), Error: true}
	case strings.HasPrefix(raw, flashPrefixOK):
		return &flash{Message: strings.TrimPrefix(raw, flashPrefixOK)}
	default:
		return nil
	}
}
