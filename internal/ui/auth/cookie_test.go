package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// signedToken создаёт HS256 JWT с заданным exp (как flask-jwt-extended).
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("подпись токена: %v", err)
	}
	return s
}

func testUser() *model.UserProfile {
	return &model.UserProfile{UserID: 1, IntranetID: "admin", FirstName: "Admin", RoleName: "Fleet Administrator"}
}

// requestWithCookies переносит Set-Cookie ответа в новый запрос.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func newTestCookieStore(t *testing.T, key string) *CookieStore {
	t.Helper()
	s, err := NewCookieStore(key, false, 8*time.Hour)
	if err != nil {
		t.Fatalf("Ошибка создания CookieStore: %v", err)
	}
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(8 * time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	if !ok {
		t.Fatal("exp не извлечён")
	}
	if !got.Equal(exp) {
		t.Errorf("exp = %v, ожидается %v", got, exp)
	}

	if _, ok := TokenExpiry("not-a-jwt"); ok {
		t.Error("для не-JWT токена exp не должен извлекаться")
	}
}

func TestCookieStore_SaveLoad(t *testing.T) {
	s := newTestCookieStore(t, "")
	token := signedToken(t, time.Now().Add(time.Hour))

	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/login", nil), NewCredential(token, testUser())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("ожидался 1 cookie, получено %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != SessionCookieName || !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("неожиданные атрибуты cookie: %+v", cookie)
	}
	// MaxAge ограничен жизнью токена (час), а не maxAge хранилища (8 часов)
	if cookie.MaxAge > 3600 || cookie.MaxAge < 3500 {
		t.Errorf("MaxAge = %d, ожидается около 3600", cookie.MaxAge)
	}

	c, err := s.Load(requestWithCookies(rec))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c == nil || c.Token != token || c.User.IntranetID != "admin" {
		t.Fatalf("неожиданные данные: %+v", c)
	}
}

func TestCookieStore_LoadAbsent(t *testing.T) {
	s := newTestCookieStore(t, "")
	c, err := s.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || c != nil {
		t.Errorf("Load без cookie = (%v, %v), ожидается (nil, nil)", c, err)
	}
}

func TestCookieStore_SaveRejectsPartial(t *testing.T) {
	s := newTestCookieStore(t, "")
	tests := []struct {
		name string
		c    *StoredCredential
	}{
		{"только токен", &StoredCredential{Token: "t"}},
		{"только профиль", &StoredCredential{User: testUser()}},
		{"пусто", &StoredCredential{}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), tt.c)
			if !errors.Is(err, ErrIncompleteCredential) {
				t.Errorf("ожидалась ErrIncompleteCredential, получено %v", err)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("при ошибке cookie не должен записываться")
			}
		})
	}
}

func TestCookieStore_WrongKey(t *testing.T) {
	writer := newTestCookieStore(t, "key-one")
	reader := newTestCookieStore(t, "key-two")

	rec := httptest.NewRecorder()
	if err := writer.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), &StoredCredential{Token: "t", User: testUser()}); err != nil {
		t.Fatal(err)
	}

	c, err := reader.Load(requestWithCookies(rec))
	if !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("ожидалась ErrInvalidCredential, получено %v", err)
	}
	if c != nil {
		t.Error("чужой cookie не должен давать учётные данные")
	}
}

func TestCookieStore_ExpiredToken(t *testing.T) {
	s := newTestCookieStore(t, "")
	rec := httptest.NewRecorder()
	cred := &StoredCredential{Token: "t", User: testUser(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), cred); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	c, err := s.Load(requestWithCookies(rec))
	if err != nil || c != nil {
		t.Errorf("просроченный токен: (%v, %v), ожидается (nil, nil)", c, err)
	}
}

func TestCookieStore_Clear(t *testing.T) {
	s := newTestCookieStore(t, "")
	rec := httptest.NewRecorder()
	if err := s.Clear(rec, httptest.NewRequest(http.MethodPost, "/logout", nil)); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 || cookies[0].Value != "" {
		t.Errorf("ожидалось удаление cookie: %+v", cookies)
	}
}

func TestCookieStore_ClearIfToken(t *testing.T) {
	s := newTestCookieStore(t, "")
	rec := httptest.NewRecorder()
	if err := s.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), &StoredCredential{Token: "current", User: testUser()}); err != nil {
		t.Fatal(err)
	}
	req := requestWithCookies(rec)

	out := httptest.NewRecorder()
	cleared, err := s.ClearIfToken(out, req, "stale")
	if err != nil || cleared {
		t.Errorf("другой токен: cleared=%v err=%v", cleared, err)
	}
	if len(out.Result().Cookies()) != 0 {
		t.Error("cookie не должен удаляться для другого токена")
	}

	out = httptest.NewRecorder()
	cleared, err = s.ClearIfToken(out, req, "current")
	if err != nil || !cleared {
		t.Errorf("тот же токен: cleared=%v err=%v", cleared, err)
	}
	if len(out.Result().Cookies()) != 1 {
		t.Error("ожидалось удаление cookie")
	}
}
