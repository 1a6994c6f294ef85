// Пакет auth — хранение учётных данных пользователя Web Module.
// Токен backend и профиль пользователя хранятся одной единицей:
// записываются и удаляются только вместе.
// Реализации: зашифрованный cookie (AES-256-GCM) и Redis.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// SessionCookieName — имя cookie сессии (зашифрованные данные или ID сессии в Redis).
const SessionCookieName = "carreserve_session"

var (
	// ErrIncompleteCredential — попытка сохранить токен без профиля или наоборот.
	ErrIncompleteCredential = errors.New("учётные данные неполные: нужны токен и профиль")
	// ErrInvalidCredential — cookie повреждён или не расшифровывается.
	ErrInvalidCredential = errors.New("учётные данные повреждены")
)

// StoredCredential — сохранённые учётные данные.
type StoredCredential struct {
	// Token — bearer-токен backend
	Token string `json:"token"`
	// User — профиль пользователя на момент входа
	User *model.UserProfile `json:"user"`
	// ExpiresAt — время истечения токена (claim exp); нулевое — неизвестно
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Complete сообщает, присутствуют ли и токен, и профиль.
func (c *StoredCredential) Complete() bool {
	return c != nil && c.Token != "" && c.User != nil
}

// Expired проверяет, истёк ли токен к моменту now.
func (c *StoredCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// CredentialStore — хранилище учётных данных браузерной сессии.
// Load возвращает nil, nil при отсутствии данных.
// Одновременные вкладки: побеждает последняя запись.
type CredentialStore interface {
	Load(r *http.Request) (*StoredCredential, error)
	Save(w http.ResponseWriter, r *http.Request, c *StoredCredential) error
	Clear(w http.ResponseWriter, r *http.Request) error
	// ClearIfToken удаляет данные, только если сохранён именно token.
	// Возвращает true, если данные удалены.
	ClearIfToken(w http.ResponseWriter, r *http.Request, token string) (bool, error)
}

// TokenExpiry извлекает claim exp из JWT без проверки подписи.
// Подлинность токена проверяет backend (/auth/me); здесь exp
// только ограничивает срок жизни cookie.
func TokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// NewCredential формирует StoredCredential, заполняя ExpiresAt из токена.
func NewCredential(token string, user *model.UserProfile) *StoredCredential {
	c := &StoredCredential{Token: token, User: user}
	if exp, ok := TokenExpiry(token); ok {
		c.ExpiresAt = exp
	}
	return c
}

// cookieMaxAge вычисляет MaxAge cookie: maxAge, но не дольше жизни токена.
func cookieMaxAge(c *StoredCredential, maxAge time.Duration, now time.Time) time.Duration {
	if !c.ExpiresAt.IsZero() {
		if left := c.ExpiresAt.Sub(now); left < maxAge {
			return left
		}
	}
	return maxAge
}

// sessionCookie формирует cookie сессии.
func sessionCookie(value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// expiredSessionCookie формирует cookie, удаляющий сессию в браузере.
func expiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
