package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/auth"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockBackend — mock REST backend с mock SSO: "admin" — администратор,
// остальные — сотрудники. Токен — "token-<intranet_id>".
type mockBackend struct {
	meStatus     atomic.Int32
	logoutStatus atomic.Int32
	loginCalls   atomic.Int32
	meCalls      atomic.Int32
	logoutCalls  atomic.Int32
}

func profileFor(intranetID string) model.UserProfile {
	u := model.UserProfile{UserID: 2, IntranetID: intranetID, FirstName: "Jan", LastName: "Novák", RoleName: "Employee", IsActive: true}
	if intranetID == "admin" {
		u = model.UserProfile{UserID: 1, IntranetID: "admin", FirstName: "Admin", LastName: "Uživatel", RoleName: "Fleet Administrator", IsActive: true}
	}
	return u
}

func (m *mockBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/login":
		m.loginCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		id := body["intranet_id"]
		if id == "blocked" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Účet je zablokován"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + id,
			"user":         profileFor(id),
		})
	case "/api/auth/me":
		m.meCalls.Add(1)
		if status := m.meStatus.Load(); status != 0 {
			w.WriteHeader(int(status))
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "odmítnuto"})
			return
		}
		id := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer token-")
		u := profileFor(id)
		u.LastName = "Aktuální"
		_ = json.NewEncoder(w).Encode(u)
	case "/api/auth/logout":
		m.logoutCalls.Add(1)
		if status := m.logoutStatus.Load(); status != 0 {
			w.WriteHeader(int(status))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testEnv struct {
	mock     *mockBackend
	client   *backend.Client
	store    *auth.CookieStore
	provider *Provider
}

func newTestEnv(t *testing.T, validateTTL time.Duration) *testEnv {
	t.Helper()
	mock := &mockBackend{}
	server := httptest.NewServer(mock)
	t.Cleanup(server.Close)

	client, err := backend.New(server.URL, 5*time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	store, err := auth.NewCookieStore("test-key", false, 8*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		mock:     mock,
		client:   client,
		store:    store,
		provider: NewProvider(client.Auth, store, validateTTL, testLogger()),
	}
}

// requestWithCookies переносит Set-Cookie ответа в новый запрос.
func requestWithCookies(rec *httptest.ResponseRecorder, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// login выполняет вход и возвращает запрос с cookie сессии.
func (e *testEnv) login(t *testing.T, intranetID string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	s, err := e.provider.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), intranetID)
	if err != nil {
		t.Fatalf("Login(%q): %v", intranetID, err)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("после входа состояние %v", s.State)
	}
	return requestWithCookies(rec, "/")
}

// clearedCookie проверяет, что ответ удаляет cookie сессии.
func clearedCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestInit_NoCredential(t *testing.T) {
	env := newTestEnv(t, 0)
	s := env.provider.Init(context.Background(), httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if s.State != StateAnonymous {
		t.Errorf("State = %v, ожидается anonymous", s.State)
	}
	if env.mock.meCalls.Load() != 0 {
		t.Error("без учётных данных backend не должен вызываться")
	}
}

func TestLogin_AdminAndEmployee(t *testing.T) {
	tests := []struct {
		intranetID string
		wantAdmin  bool
	}{
		{"admin", true},
		{"employee", false},
	}
	for _, tt := range tests {
		t.Run(tt.intranetID, func(t *testing.T) {
			env := newTestEnv(t, 0)
			rec := httptest.NewRecorder()
			s, err := env.provider.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), "  "+tt.intranetID+" ")
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if got := env.provider.IsAdmin(s); got != tt.wantAdmin {
				t.Errorf("IsAdmin() = %v, ожидается %v", got, tt.wantAdmin)
			}

			cred, err := env.store.Load(requestWithCookies(rec, "/"))
			if err != nil || cred == nil {
				t.Fatalf("учётные данные не сохранены: (%v, %v)", cred, err)
			}
			if cred.Token != "token-"+tt.intranetID || cred.User.IntranetID != tt.intranetID {
				t.Errorf("сохранено: %+v", cred)
			}
		})
	}
}

func TestLogin_EmptyInput(t *testing.T) {
	env := newTestEnv(t, 0)
	for _, input := range []string{"", "   ", "\t\n"} {
		rec := httptest.NewRecorder()
		s, err := env.provider.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), input)
		var valErr *backend.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("Login(%q): ожидался ValidationError, получено %v", input, err)
		}
		if s.IsAuthenticated() {
			t.Error("состояние не должно быть authenticated")
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("cookie не должен записываться")
		}
	}
	if env.mock.loginCalls.Load() != 0 {
		t.Errorf("backend вызван %d раз для пустого ввода", env.mock.loginCalls.Load())
	}
}

func TestLogin_BackendRejects(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := httptest.NewRecorder()
	_, err := env.provider.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), "blocked")
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if msg := backend.UserMessage(err, "Přihlášení se nezdařilo"); msg != "Účet je zablokován" {
		t.Errorf("сообщение = %q", msg)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("при ошибке входа cookie не должен записываться")
	}
}

// failingStore — хранилище, которое не может сохранить учётные данные.
type failingStore struct {
	auth.CredentialStore
}

func (failingStore) Save(http.ResponseWriter, *http.Request, *auth.StoredCredential) error {
	return errors.New("redis: connection refused")
}

func TestLogin_StoreFailure(t *testing.T) {
	env := newTestEnv(t, 0)
	provider := NewProvider(env.client.Auth, failingStore{CredentialStore: env.store}, 0, testLogger())

	rec := httptest.NewRecorder()
	s, err := provider.Login(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/login", nil), "employee")
	if !errors.Is(err, ErrCredentialStore) {
		t.Fatalf("ожидалась ErrCredentialStore, получено %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("исходная ошибка потеряна: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("без сохранённых учётных данных сессия не должна быть authenticated")
	}
}

func TestInit_ValidatesWithFreshProfile(t *testing.T) {
	env := newTestEnv(t, 0)
	req := env.login(t, "admin")

	s := env.provider.Init(context.Background(), httptest.NewRecorder(), req)
	if !s.IsAuthenticated() {
		t.Fatalf("State = %v", s.State)
	}
	if s.User.LastName != "Aktuální" {
		t.Errorf("ожидался свежий профиль из /auth/me, получено %q", s.User.LastName)
	}
	if !env.provider.IsAdmin(s) {
		t.Error("администратор должен сохранять IsAdmin")
	}
}

func TestInit_RejectedTokenClearsStorage(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			env := newTestEnv(t, 0)
			req := env.login(t, "employee")
			env.mock.meStatus.Store(int32(status))

			rec := httptest.NewRecorder()
			s := env.provider.Init(context.Background(), rec, req)
			if s.State != StateAnonymous {
				t.Errorf("State = %v, ожидается anonymous", s.State)
			}
			if !clearedCookie(rec) {
				t.Error("учётные данные должны быть удалены")
			}
		})
	}
}

func TestInit_NetworkErrorKeepsStorage(t *testing.T) {
	store, err := auth.NewCookieStore("test-key", false, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	if err := store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), &auth.StoredCredential{Token: "t", User: &model.UserProfile{IntranetID: "employee"}}); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := backend.New(server.URL, time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	provider := NewProvider(client.Auth, store, 0, testLogger())

	out := httptest.NewRecorder()
	s := provider.Init(context.Background(), out, requestWithCookies(rec, "/"))
	if !s.Loading() {
		t.Errorf("State = %v, ожидается initializing", s.State)
	}
	if len(out.Result().Cookies()) != 0 {
		t.Error("при недоступном backend учётные данные не должны удаляться")
	}
}

func TestInit_CorruptCookie(t *testing.T) {
	env := newTestEnv(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})

	rec := httptest.NewRecorder()
	s := env.provider.Init(context.Background(), rec, req)
	if s.State != StateAnonymous {
		t.Errorf("State = %v", s.State)
	}
	if !clearedCookie(rec) {
		t.Error("повреждённый cookie должен удаляться")
	}
}

func TestInit_ValidationCache(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	req := env.login(t, "employee")

	for i := 0; i < 3; i++ {
		if s := env.provider.Init(context.Background(), httptest.NewRecorder(), req); !s.IsAuthenticated() {
			t.Fatalf("итерация %d: State = %v", i, s.State)
		}
	}
	// Вход кладёт профиль в кэш: /auth/me не вызывается
	if got := env.mock.meCalls.Load(); got != 0 {
		t.Errorf("/auth/me вызван %d раз, ожидается 0", got)
	}
}

func TestLogout_AlwaysClears(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	req := env.login(t, "admin")
	env.mock.logoutStatus.Store(http.StatusInternalServerError)

	rec := httptest.NewRecorder()
	s := env.provider.Logout(context.Background(), rec, req)
	if s.State != StateAnonymous {
		t.Errorf("State = %v", s.State)
	}
	if !clearedCookie(rec) {
		t.Error("cookie должен удаляться даже при ошибке backend")
	}
	if env.mock.logoutCalls.Load() != 1 {
		t.Errorf("logout вызван %d раз", env.mock.logoutCalls.Load())
	}

	// Токен удалён из кэша: следующая проверка идёт в backend
	env.mock.meStatus.Store(http.StatusUnauthorized)
	if s := env.provider.Init(context.Background(), httptest.NewRecorder(), req); s.IsAuthenticated() {
		t.Error("после выхода токен не должен подтверждаться из кэша")
	}
}

func TestLogout_WithoutCredential(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := httptest.NewRecorder()
	env.provider.Logout(context.Background(), rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if env.mock.logoutCalls.Load() != 0 {
		t.Error("без учётных данных backend не вызывается")
	}
	if !clearedCookie(rec) {
		t.Error("cookie удаляется всегда")
	}
}

func TestIsAdmin_NotAuthenticated(t *testing.T) {
	env := newTestEnv(t, 0)
	sessions := []*Session{
		nil,
		{State: StateAnonymous},
		{State: StateInitializing, User: &model.UserProfile{RoleName: "Fleet Administrator"}},
	}
	for _, s := range sessions {
		if env.provider.IsAdmin(s) {
			t.Errorf("IsAdmin(%+v) = true", s)
		}
	}
}

func TestHandleAuthError(t *testing.T) {
	env := newTestEnv(t, 0)
	loginReq := env.login(t, "employee")

	req := httptest.NewRequest(http.MethodGet, "/vehicles?status=all", nil)
	for _, c := range loginReq.Cookies() {
		req.AddCookie(c)
	}
	s := &Session{State: StateAuthenticated, Token: "token-employee", User: &model.UserProfile{IntranetID: "employee"}}

	rec := httptest.NewRecorder()
	env.provider.HandleAuthError(rec, req, s)

	if rec.Code != http.StatusFound {
		t.Errorf("Code = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fvehicles%3Fstatus%3Dall" {
		t.Errorf("Location = %q", loc)
	}
	if !clearedCookie(rec) {
		t.Error("учётные данные должны удаляться")
	}
}

func TestHandleAuthError_StaleToken(t *testing.T) {
	env := newTestEnv(t, 0)
	req := env.login(t, "employee")

	// 401 пришёл по токену, который уже заменён новым входом
	s := &Session{State: StateAuthenticated, Token: "token-old"}
	rec := httptest.NewRecorder()
	env.provider.HandleAuthError(rec, req, s)

	if clearedCookie(rec) {
		t.Error("учётные данные нового входа не должны удаляться")
	}
	if rec.Header().Get("Location") != "/login" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/vehicles", "/vehicles"},
		{"/calendar?start=2025-03-10", "/calendar?start=2025-03-10"},
		{"//evil.example.com", "/"},
		{"/\\evil.example.com", "/"},
		{"https://evil.example.com/", "/"},
		{"vehicles", "/"},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.in); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, ожидается %q", tt.in, got, tt.want)
		}
	}
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/login"},
		{"/", "/login"},
		{"/login?next=%2F", "/login"},
		{"/admin/users", "/login?next=%2Fadmin%2Fusers"},
		{"//evil", "/login"},
	}
	for _, tt := range tests {
		if got := LoginURL(tt.next); got != tt.want {
			t.Errorf("LoginURL(%q) = %q, ожидается %q", tt.next, got, tt.want)
		}
	}
}
