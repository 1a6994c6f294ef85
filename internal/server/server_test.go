package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	apihandlers "github.com/bigkaa/carreserve/web-module/internal/api/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/config"
	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/auth"
	"github.com/bigkaa/carreserve/web-module/internal/ui/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// routerEnv — полный router над mock backend.
type routerEnv struct {
	handler http.Handler
	ui      *UIComponents
	store   *auth.CookieStore
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") {
		case "token-admin":
			_ = json.NewEncoder(w).Encode(model.UserProfile{UserID: 1, IntranetID: "admin", RoleName: "Fleet Administrator"})
		case "token-employee":
			_ = json.NewEncoder(w).Encode(model.UserProfile{UserID: 2, IntranetID: "employee", RoleName: "Employee"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("/api/users", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.UserProfile{})
	})
	mux.HandleFunc("/api/roles", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.Role{})
	})
	backendServer := httptest.NewServer(mux)
	t.Cleanup(backendServer.Close)

	client, err := backend.New(backendServer.URL, 5*time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	bundle := i18n.NewBundle(i18n.LangEN, testLogger())
	if err := i18n.LoadFromEmbedFS(bundle, testLogger()); err != nil {
		t.Fatal(err)
	}
	p := pages.New(bundle)
	store, err := auth.NewCookieStore("server-key", false, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	provider := session.NewProvider(client.Auth, store, 0, testLogger())
	deps := handlers.Deps{Pages: p, Bundle: bundle, Provider: provider, Client: client}
	loading := handlers.NewLoadingHandler(deps, testLogger())

	ui := &UIComponents{
		Bundle:              bundle,
		Guard:               uimiddleware.NewGuard(provider, loading, testLogger()),
		AuthHandler:         handlers.NewAuthHandler(deps, loading, testLogger()),
		LanguageHandler:     handlers.NewLanguageHandler(bundle, false),
		DashboardHandler:    handlers.NewDashboardHandler(deps, testLogger()),
		CalendarHandler:     handlers.NewCalendarHandler(deps, testLogger()),
		VehiclesHandler:     handlers.NewVehiclesHandler(deps, testLogger()),
		ReservationsHandler: handlers.NewReservationsHandler(deps, testLogger()),
		AdminHandler:        handlers.NewAdminHandler(deps, testLogger()),
	}

	return &routerEnv{
		handler: NewRouter(testLogger(), apihandlers.NewHealthHandler(nil, nil), ui),
		ui:      ui,
		store:   store,
	}
}

// do выполняет запрос; token != "" — с сохранённой сессией.
func (e *routerEnv) do(t *testing.T, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		rec := httptest.NewRecorder()
		if err := e.store.Save(rec, req, auth.NewCredential(token, &model.UserProfile{IntranetID: token})); err != nil {
			t.Fatal(err)
		}
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		target       string
		token        string
		wantCode     int
		wantLocation string
	}{
		{"liveness", http.MethodGet, "/health/live", "", http.StatusOK, ""},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, ""},
		{"стили", http.MethodGet, "/static/css/app.css", "", http.StatusOK, ""},
		{"скрипты", http.MethodGet, "/static/js/app.js", "", http.StatusOK, ""},
		{"страница входа", http.MethodGet, "/login", "", http.StatusOK, ""},
		{"главная без сессии", http.MethodGet, "/", "", http.StatusFound, "/login"},
		{"календарь без сессии", http.MethodGet, "/calendar", "", http.StatusFound, "/login?next=%2Fcalendar"},
		{"отмена без сессии", http.MethodPost, "/reservations/5/cancel", "", http.StatusFound, "/login"},
		{"админка без сессии", http.MethodGet, "/admin/users", "", http.StatusFound, "/login?next=%2Fadmin%2Fusers"},
		{"админка сотрудника", http.MethodGet, "/admin/users", "token-employee", http.StatusFound, "/"},
		{"архивирование сотрудником", http.MethodPost, "/vehicles/3/archive", "token-employee", http.StatusFound, "/"},
		{"админка администратора", http.MethodGet, "/admin/users", "token-admin", http.StatusOK, ""},
		{"вход с сессией", http.MethodGet, "/login", "token-employee", http.StatusFound, "/"},
		{"неизвестный путь", http.MethodGet, "/unknown", "", http.StatusNotFound, ""},
		{"неверный метод", http.MethodGet, "/logout", "", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRouterEnv(t)
			rec := env.do(t, tt.method, tt.target, tt.token)

			if rec.Code != tt.wantCode {
				t.Errorf("Code = %d, ожидается %d", rec.Code, tt.wantCode)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLocation)
			}
		})
	}
}

func TestRouter_LanguageFromCookie(t *testing.T) {
	env := newRouterEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: i18n.LangCookieName, Value: i18n.LangCS})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `lang="cs"`) {
		t.Error("страница не отрисована на чешском")
	}
}

func TestNew_Timeouts(t *testing.T) {
	cfg := &config.Config{
		Port:             9090,
		HTTPReadTimeout:  time.Second,
		HTTPWriteTimeout: 2 * time.Second,
		HTTPIdleTimeout:  3 * time.Second,
		ShutdownTimeout:  time.Second,
	}
	env := newRouterEnv(t)

	srv := New(cfg, testLogger(), apihandlers.NewHealthHandler(nil, nil), env.ui)
	if srv.httpServer.Addr != ":9090" {
		t.Errorf("Addr = %q", srv.httpServer.Addr)
	}
	if srv.httpServer.ReadTimeout != time.Second || srv.httpServer.WriteTimeout != 2*time.Second ||
		srv.httpServer.IdleTimeout != 3*time.Second {
		t.Errorf("таймауты не перенесены из конфигурации: %+v", srv.httpServer)
	}
}
