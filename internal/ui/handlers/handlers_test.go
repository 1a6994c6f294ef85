package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/auth"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// testNow — фиксированное «сейчас» для обработчиков.
var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv — обработчики над mock backend (http.ServeMux с префиксом /api).
type testEnv struct {
	deps   Deps
	mux    *http.ServeMux
	bundle *i18n.Bundle
	store  *auth.CookieStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := backend.New(server.URL, 5*time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	bundle := i18n.NewBundle(i18n.LangEN, testLogger())
	if err := i18n.LoadFromEmbedFS(bundle, testLogger()); err != nil {
		t.Fatal(err)
	}
	p := pages.New(bundle)
	store, err := auth.NewCookieStore("handlers-key", false, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		deps: Deps{
			Pages:    p,
			Bundle:   bundle,
			Provider: session.NewProvider(client.Auth, store, 0, testLogger()),
			Client:   client,
		},
		mux:    mux,
		bundle: bundle,
		store:  store,
	}
}

// handle регистрирует обработчик mock backend, возвращающий JSON.
func (e *testEnv) handle(pattern string, status int, body any) *atomic.Int32 {
	calls := &atomic.Int32{}
	e.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	return calls
}

var (
	employee = &model.UserProfile{UserID: 2, IntranetID: "employee", FirstName: "Jan", LastName: "Novák", RoleName: "Employee"}
	admin    = &model.UserProfile{UserID: 1, IntranetID: "admin", FirstName: "Admin", RoleName: "Fleet Administrator"}
)

// request создаёт запрос; user != nil — как после Guard.RequireSession.
func request(method, target string, user *model.UserProfile, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	ctx := i18n.WithLang(req.Context(), i18n.LangEN)
	if user != nil {
		s := &session.Session{State: session.StateAuthenticated, User: user, Token: "token-" + user.IntranetID}
		ctx = uimiddleware.WithSession(ctx, s)
		ctx = backend.WithToken(ctx, s.Token)
	}
	return req.WithContext(ctx)
}

// withURLParam добавляет параметр маршрута chi.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func flashFrom(t *testing.T, rec *httptest.ResponseRecorder) *flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return popFlash(httptest.NewRecorder(), req, false)
}

func TestComputeDashboardStats(t *testing.T) {
	vehicles := []model.Vehicle{
		{Status: model.VehicleStatusActive},
		{Status: model.VehicleStatusInService},
		{Status: model.VehicleStatusActive},
	}
	reservations := []model.Reservation{
		{Status: model.ReservationStatusConfirmed, EndTime: model.Time{Time: testNow.Add(time.Hour)}},
		{Status: model.ReservationStatusConfirmed, EndTime: model.Time{Time: testNow.Add(-time.Hour)}},
		{Status: model.ReservationStatusCancelled, EndTime: model.Time{Time: testNow.Add(time.Hour)}},
	}

	tests := []struct {
		name         string
		reservations []model.Reservation
		vehicles     []model.Vehicle
		want         pages.DashboardStats
	}{
		{"пустые списки", nil, nil, pages.DashboardStats{}},
		{"смешанные данные", reservations, vehicles, pages.DashboardStats{
			ActiveVehicles: 2, TotalVehicles: 3, UpcomingReservations: 1, TotalReservations: 3,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeDashboardStats(tt.reservations, tt.vehicles, testNow); got != tt.want {
				t.Errorf("computeDashboardStats() = %+v, ожидается %+v", got, tt.want)
			}
		})
	}
}

func TestActiveVehicles(t *testing.T) {
	var vehicles []model.Vehicle
	for i := 1; i <= 8; i++ {
		status := model.VehicleStatusActive
		if i == 2 {
			status = model.VehicleStatusInService
		}
		vehicles = append(vehicles, model.Vehicle{VehicleID: i, Status: status})
	}

	got := activeVehicles(firstN(vehicles, dashboardVehiclesScan), dashboardVehiclesShown)
	if len(got) != 4 {
		t.Fatalf("получено %d автомобилей, ожидается 4", len(got))
	}
	want := []int{1, 3, 4, 5}
	for i, v := range got {
		if v.VehicleID != want[i] {
			t.Errorf("позиция %d: vehicle_id = %d, ожидается %d", i, v.VehicleID, want[i])
		}
	}
}

func TestHandleDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/reservations", http.StatusOK, []map[string]any{
		{"reservation_id": 1, "user_id": 2, "status": "Confirmed", "purpose": "Schůzka v Brně",
			"start_time": "2025-03-15T08:00:00", "end_time": "2025-03-15T18:00:00"},
	})
	env.handle("GET /api/vehicles", http.StatusOK, []map[string]any{
		{"vehicle_id": 4, "make": "Škoda", "model": "Octavia", "license_plate": "1AB 2345", "status": "Active"},
		{"vehicle_id": 5, "make": "Ford", "model": "Transit", "license_plate": "2CD 6789", "status": "In Service"},
	})

	h := NewDashboardHandler(env.deps, testLogger())
	h.now = func() time.Time { return testNow }

	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, request(http.MethodGet, "/", employee, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа %d, ожидается 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Schůzka v Brně", "Škoda Octavia", "of 2 total"} {
		if !strings.Contains(body, want) {
			t.Errorf("страница не содержит %q", want)
		}
	}
	if strings.Contains(body, "Ford Transit") {
		t.Error("автомобиль в сервисе не должен быть в списке доступных")
	}
}

func TestHandleDashboard_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantCode     int
		wantLocation string
		wantText     string
	}{
		{"ошибка backend", http.StatusInternalServerError, http.StatusOK, "", "Failed to load dashboard data"},
		{"токен отклонён", http.StatusUnauthorized, http.StatusFound, "/login", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.handle("GET /api/reservations", http.StatusOK, []any{})
			env.handle("GET /api/vehicles", tt.status, map[string]string{"error": "boom"})

			rec := httptest.NewRecorder()
			NewDashboardHandler(env.deps, testLogger()).HandleDashboard(rec, request(http.MethodGet, "/", employee, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("код ответа %d, ожидается %d", rec.Code, tt.wantCode)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLocation)
			}
			if tt.wantText != "" && !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("страница не содержит %q", tt.wantText)
			}
		})
	}
}

func TestHandleDashboard_CancelledRequest(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/reservations", http.StatusOK, []any{})
	env.handle("GET /api/vehicles", http.StatusOK, []any{})

	req := request(http.MethodGet, "/", employee, nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()

	rec := httptest.NewRecorder()
	NewDashboardHandler(env.deps, testLogger()).HandleDashboard(rec, req.WithContext(ctx))

	if rec.Body.Len() != 0 {
		t.Error("после отмены запроса страница не должна отображаться")
	}
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name         string
		intranetID   string
		status       int
		body         any
		wantCode     int
		wantLocation string
		wantText     string
		wantCalls    int32
	}{
		{"пустой ID", "   ", http.StatusOK, nil, http.StatusBadRequest, "", "Enter your intranet ID", 0},
		{"backend отклонил", "ghost", http.StatusUnauthorized, map[string]string{"error": "Invalid intranet ID"},
			http.StatusUnauthorized, "", "Invalid intranet ID", 1},
		{"backend без сообщения", "ghost", http.StatusInternalServerError, map[string]string{},
			http.StatusUnauthorized, "", "Sign-in failed", 1},
		{"успех", "employee", http.StatusOK, map[string]any{
			"access_token": "tok-1",
			"user":         map[string]any{"user_id": 2, "intranet_id": "employee", "role_name": "Employee"},
		}, http.StatusSeeOther, "/calendar", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			calls := env.handle("POST /api/auth/login", tt.status, tt.body)
			h := NewAuthHandler(env.deps, http.NotFoundHandler(), testLogger())

			form := url.Values{"intranet_id": {tt.intranetID}, "next": {"/calendar"}}
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, request(http.MethodPost, "/login", nil, form))

			if rec.Code != tt.wantCode {
				t.Fatalf("код ответа %d, ожидается %d", rec.Code, tt.wantCode)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLocation)
			}
			if tt.wantText != "" && !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("страница не содержит %q", tt.wantText)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("вызовов backend %d, ожидается %d", got, tt.wantCalls)
			}

			hasSession := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.SessionCookieName && c.MaxAge > 0 {
					hasSession = true
				}
			}
			if hasSession != (tt.wantCode == http.StatusSeeOther) {
				t.Errorf("cookie сессии установлена = %v", hasSession)
			}
		})
	}
}

// failingStore — хранилище учётных данных, отказывающее в записи.
type failingStore struct {
	auth.CredentialStore
}

func (failingStore) Save(http.ResponseWriter, *http.Request, *auth.StoredCredential) error {
	return errors.New("redis: connection refused")
}

func TestHandleLogin_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.handle("POST /api/auth/login", http.StatusOK, map[string]any{
		"access_token": "tok-1",
		"user":         map[string]any{"user_id": 2, "intranet_id": "employee"},
	})
	deps := env.deps
	deps.Provider = session.NewProvider(env.deps.Client.Auth, failingStore{CredentialStore: env.store}, 0, testLogger())
	h := NewAuthHandler(deps, http.NotFoundHandler(), testLogger())

	form := url.Values{"intranet_id": {"employee"}, "next": {"/calendar"}}
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, request(http.MethodPost, "/login", nil, form))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("код ответа %d, ожидается 503", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Session could not be saved") {
		t.Error("нет сообщения об ошибке хранилища")
	}
	if strings.Contains(body, "Sign-in failed") {
		t.Error("ошибка хранилища не должна выглядеть как отказ во входе")
	}
	if !strings.Contains(body, `value="employee"`) {
		t.Error("введённый intranet ID не сохранён в форме")
	}
}

func TestHandleLogin_ExternalNext(t *testing.T) {
	env := newTestEnv(t)
	env.handle("POST /api/auth/login", http.StatusOK, map[string]any{
		"access_token": "tok-1",
		"user":         map[string]any{"user_id": 2, "intranet_id": "employee"},
	})
	h := NewAuthHandler(env.deps, http.NotFoundHandler(), testLogger())

	form := url.Values{"intranet_id": {"employee"}, "next": {"//evil.example.com/"}}
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, request(http.MethodPost, "/login", nil, form))

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, ожидается /", loc)
	}
}

func TestHandleLogout_IgnoresBackendError(t *testing.T) {
	env := newTestEnv(t)
	calls := env.handle("POST /api/auth/logout", http.StatusInternalServerError, map[string]string{"error": "boom"})
	h := NewAuthHandler(env.deps, http.NotFoundHandler(), testLogger())

	req := request(http.MethodPost, "/logout", nil, url.Values{})
	saved := httptest.NewRecorder()
	if err := env.store.Save(saved, req, auth.NewCredential("tok-1", employee)); err != nil {
		t.Fatal(err)
	}
	for _, c := range saved.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if calls.Load() != 1 {
		t.Errorf("вызовов logout %d, ожидается 1", calls.Load())
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("ответ %d %q, ожидается 303 /login", rec.Code, rec.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("cookie сессии не удалена после ошибки backend")
	}
}

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name         string
		lang         string
		referer      string
		wantLang     string
		wantLocation string
	}{
		{"английский", "en", "http://example.com/vehicles?status=all", "en", "/vehicles?status=all"},
		{"неизвестный язык", "de", "http://example.com/calendar", "en", "/calendar"},
		{"чужой referer", "cs", "http://evil.example.org/phish", "cs", "/"},
		{"без referer", "cs", "", "cs", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := NewLanguageHandler(env.bundle, false)

			req := request(http.MethodPost, "/set-language", nil, url.Values{"lang": {tt.lang}})
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			h.HandleSetLanguage(rec, req)

			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидается %q", loc, tt.wantLocation)
			}
			var got string
			for _, c := range rec.Result().Cookies() {
				if c.Name == i18n.LangCookieName {
					got = c.Value
				}
			}
			if got != tt.wantLang {
				t.Errorf("cookie lang = %q, ожидается %q", got, tt.wantLang)
			}
		})
	}
}

func TestLoadingHandler(t *testing.T) {
	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	NewLoadingHandler(env.deps, testLogger()).ServeHTTP(rec, request(http.MethodGet, "/vehicles", nil, nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("код ответа %d, ожидается 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("нет заголовка Retry-After")
	}
	if !strings.Contains(rec.Body.String(), `http-equiv="refresh"`) {
		t.Error("нет автоматического обновления страницы")
	}
}

func TestHandleMy_OnlyOwnReservations(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/reservations", http.StatusOK, []map[string]any{
		{"reservation_id": 1, "user_id": 2, "status": "Confirmed", "purpose": "Moje cesta",
			"start_time": "2025-03-15T08:00:00", "end_time": "2025-03-15T18:00:00"},
		{"reservation_id": 2, "user_id": 3, "status": "Confirmed", "purpose": "Cizí cesta",
			"start_time": "2025-03-15T08:00:00", "end_time": "2025-03-15T18:00:00"},
	})
	h := NewReservationsHandler(env.deps, testLogger())
	h.now = func() time.Time { return testNow }

	rec := httptest.NewRecorder()
	h.HandleMy(rec, request(http.MethodGet, "/my-reservations", employee, nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Moje cesta") {
		t.Error("нет собственной резервации")
	}
	if strings.Contains(body, "Cizí cesta") {
		t.Error("чужая резервация в списке «мои резервации»")
	}
	if !strings.Contains(body, `action="/reservations/1/cancel"`) {
		t.Error("нет кнопки отмены для резервации, до начала которой больше 2 часов")
	}
}

func TestHandleCancel(t *testing.T) {
	tests := []struct {
		name        string
		user        *model.UserProfile
		ownerID     int
		start       string
		wantCancel  int32
		wantFlashOK bool
	}{
		{"владелец, заранее", employee, 2, "2025-03-14T17:00:00", 1, true},
		{"владелец, меньше 2 часов", employee, 2, "2025-03-14T13:00:00", 0, false},
		{"чужая резервация", employee, 3, "2025-03-14T17:00:00", 0, false},
		{"администратор", admin, 3, "2025-03-14T13:00:00", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.handle("GET /api/reservations/7", http.StatusOK, map[string]any{
				"reservation_id": 7, "user_id": tt.ownerID, "status": "Confirmed",
				"start_time": tt.start, "end_time": "2025-03-14T20:00:00",
			})
			cancelCalls := env.handle("DELETE /api/reservations/7", http.StatusOK, map[string]string{"message": "ok"})

			h := NewReservationsHandler(env.deps, testLogger())
			h.now = func() time.Time { return testNow }

			req := request(http.MethodPost, "/reservations/7/cancel", tt.user, url.Values{"next": {"/admin/reservations"}})
			rec := httptest.NewRecorder()
			h.HandleCancel(rec, withURLParam(req, "id", "7"))

			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/reservations" {
				t.Errorf("ответ %d %q, ожидается 303 /admin/reservations", rec.Code, rec.Header().Get("Location"))
			}
			if got := cancelCalls.Load(); got != tt.wantCancel {
				t.Errorf("вызовов DELETE %d, ожидается %d", got, tt.wantCancel)
			}
			f := flashFrom(t, rec)
			if f == nil {
				t.Fatal("нет flash-сообщения")
			}
			if f.Error == tt.wantFlashOK {
				t.Errorf("flash ошибка = %v, сообщение %q", f.Error, f.Message)
			}
		})
	}
}

func TestHandleArchive_BackendMessage(t *testing.T) {
	env := newTestEnv(t)
	env.handle("DELETE /api/vehicles/4", http.StatusBadRequest,
		map[string]string{"error": "Cannot archive vehicle with active reservations"})

	req := withURLParam(request(http.MethodPost, "/vehicles/4/archive", admin, url.Values{}), "id", "4")
	rec := httptest.NewRecorder()
	NewVehiclesHandler(env.deps, testLogger()).HandleArchive(rec, req)

	f := flashFrom(t, rec)
	if f == nil || !f.Error || f.Message != "Cannot archive vehicle with active reservations" {
		t.Errorf("flash = %+v, ожидается сообщение backend", f)
	}
}

func TestHandleDetail_Availability(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCalls int32
		wantText  string
	}{
		{"без интервала", "", 0, ""},
		{"свободен", "?start_time=2025-03-20T08:00&end_time=2025-03-20T12:00", 1, "The vehicle is free in this period"},
		{"конец раньше начала", "?start_time=2025-03-20T12:00&end_time=2025-03-20T08:00", 0, "Enter a valid time range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.handle("GET /api/vehicles/4", http.StatusOK, map[string]any{
				"vehicle_id": 4, "make": "Škoda", "model": "Octavia", "status": "Active",
			})
			calls := env.handle("GET /api/vehicles/4/availability", http.StatusOK, map[string]any{
				"vehicle_id": 4, "available": true,
			})

			req := withURLParam(request(http.MethodGet, "/vehicles/4"+tt.query, employee, nil), "id", "4")
			rec := httptest.NewRecorder()
			NewVehiclesHandler(env.deps, testLogger()).HandleDetail(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("код ответа %d", rec.Code)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("проверок доступности %d, ожидается %d", got, tt.wantCalls)
			}
			if tt.wantText != "" && !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("страница не содержит %q", tt.wantText)
			}
		})
	}
}

func TestHandleDetail_HistoryErrors(t *testing.T) {
	env := newTestEnv(t)
	env.handle("GET /api/vehicles/4", http.StatusOK, map[string]any{
		"vehicle_id": 4, "make": "Škoda", "model": "Octavia", "status": "Active",
	})
	env.handle("GET /api/vehicles/4/service-records", http.StatusInternalServerError, map[string]string{"error": "db down"})
	env.handle("GET /api/vehicles/4/damage-records", http.StatusOK, []any{})

	req := withURLParam(request(http.MethodGet, "/vehicles/4", admin, nil), "id", "4")
	rec := httptest.NewRecorder()
	NewVehiclesHandler(env.deps, testLogger()).HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "db down") {
		t.Error("ошибка загрузки сервисных записей не показана")
	}
	if strings.Contains(body, "No service records") {
		t.Error("при ошибке не должно быть сообщения о пустой истории")
	}
	if !strings.Contains(body, "No damage records") {
		t.Error("пустая история повреждений не показана")
	}
}

func TestFilterVehiclesError(t *testing.T) {
	tests := []struct {
		name   string
		target string
		serve  func(w http.ResponseWriter, r *http.Request, env *testEnv)
	}{
		{
			name:   "календарь",
			target: "/calendar",
			serve: func(w http.ResponseWriter, r *http.Request, env *testEnv) {
				h := NewCalendarHandler(env.deps, testLogger())
				h.now = func() time.Time { return testNow }
				h.HandleCalendar(w, r)
			},
		},
		{
			name:   "сервисные записи",
			target: "/admin/service-records",
			serve: func(w http.ResponseWriter, r *http.Request, env *testEnv) {
				NewAdminHandler(env.deps, testLogger()).HandleServiceRecords(w, r)
			},
		},
		{
			name:   "повреждения",
			target: "/admin/damage-records",
			serve: func(w http.ResponseWriter, r *http.Request, env *testEnv) {
				NewAdminHandler(env.deps, testLogger()).HandleDamageRecords(w, r)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.handle("GET /api/calendar", http.StatusOK, []any{})
			env.handle("GET /api/service-records", http.StatusOK, []any{})
			env.handle("GET /api/damage-records", http.StatusOK, []any{})
			env.handle("GET /api/vehicles", http.StatusInternalServerError, map[string]string{"error": "vehicles db down"})

			rec := httptest.NewRecorder()
			tt.serve(rec, request(http.MethodGet, tt.target, admin, nil), env)

			if rec.Code != http.StatusOK {
				t.Fatalf("код ответа %d, ожидается 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "vehicles db down") {
				t.Error("ошибка загрузки автомобилей не показана")
			}
		})
	}
}

func TestHandleUpdateRole_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	calls := env.handle("PUT /api/users/5/role", http.StatusOK, map[string]any{})

	req := withURLParam(request(http.MethodPost, "/admin/users/5/role", admin, url.Values{"role_id": {"abc"}}), "id", "5")
	rec := httptest.NewRecorder()
	NewAdminHandler(env.deps, testLogger()).HandleUpdateRole(rec, req)

	if calls.Load() != 0 {
		t.Error("некорректный role_id не должен уходить в backend")
	}
	if f := flashFrom(t, rec); f == nil || !f.Error {
		t.Errorf("flash = %+v, ожидается ошибка", f)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"пятница", time.Date(2025, 3, 14, 15, 30, 0, 0, time.Local), time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"понедельник", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
		{"воскресенье", time.Date(2025, 3, 16, 23, 59, 0, 0, time.Local), time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("weekStart() = %v, ожидается %v", got, tt.want)
			}
		})
	}
}

func TestGroupByDay(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	at := func(day, hour int) model.Time {
		return model.Time{Time: time.Date(2025, 3, day, hour, 0, 0, 0, time.Local)}
	}
	events := []model.CalendarEvent{
		{ID: 1, Start: at(10, 8), End: at(10, 12)},
		{ID: 2, Start: at(11, 20), End: at(13, 9)},
		{ID: 3, Start: at(16, 0), End: at(17, 0)},
	}

	days := groupByDay(events, start, testNow)
	if len(days) != 7 {
		t.Fatalf("дней %d, ожидается 7", len(days))
	}

	want := map[int][]int{0: {1}, 1: {2}, 2: {2}, 3: {2}, 6: {3}}
	for i, day := range days {
		var ids []int
		for _, ev := range day.Events {
			ids = append(ids, ev.ID)
		}
		if len(ids) != len(want[i]) {
			t.Errorf("день %d: события %v, ожидается %v", i, ids, want[i])
			continue
		}
		for j := range ids {
			if ids[j] != want[i][j] {
				t.Errorf("день %d: события %v, ожидается %v", i, ids, want[i])
			}
		}
	}
	if !days[4].IsToday {
		t.Error("пятница 14.03 должна быть отмечена как сегодня")
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, flash{Message: "Rezervace byla zrušena; 100 %", Error: false}, false)

	f := flashFrom(t, rec)
	if f == nil || f.Error || f.Message != "Rezervace byla zrušena; 100 %" {
		t.Errorf("flash = %+v", f)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "garbage"})
	if f := popFlash(httptest.NewRecorder(), req, false); f != nil {
		t.Errorf("некорректное значение должно игнорироваться, получено %+v", f)
	}
}
