package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupMockBackend создаёт mock REST backend.
func setupMockBackend(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL, 5*time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return server, client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	tests := []string{"localhost:5000", "ftp://backend", "://bad"}
	for _, raw := range tests {
		if _, err := New(raw, time.Second, "", testLogger()); err == nil {
			t.Errorf("New(%q): ожидалась ошибка", raw)
		}
	}
}

func TestNew_MissingCACert(t *testing.T) {
	if _, err := New("https://backend", time.Second, "/nonexistent/ca.pem", testLogger()); err == nil {
		t.Error("ожидалась ошибка для отсутствующего CA-сертификата")
	}
}

func TestAuth_Login(t *testing.T) {
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Login не должен передавать Authorization без токена в context")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("декодирование тела: %v", err)
		}
		if body["intranet_id"] != "admin" {
			t.Errorf("intranet_id = %q", body["intranet_id"])
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok-1",
			"user": map[string]any{
				"user_id": 1, "intranet_id": "admin", "first_name": "Admin",
				"last_name": "Uživatel", "role_name": "Fleet Administrator", "is_active": true,
			},
		})
	})

	resp, err := client.Auth.Login(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken != "tok-1" {
		t.Errorf("AccessToken = %q", resp.AccessToken)
	}
	if resp.User.RoleName != "Fleet Administrator" {
		t.Errorf("RoleName = %q", resp.User.RoleName)
	}
}

func TestAuth_MeAttachesToken(t *testing.T) {
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-2" {
			t.Errorf("Authorization = %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_id": 5, "role_name": "Employee"})
	})

	ctx := WithToken(context.Background(), "tok-2")
	user, err := client.Auth.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.UserID != 5 {
		t.Errorf("UserID = %d", user.UserID)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantAuth    bool
		wantStatus  int
		wantMessage string
	}{
		{"401 от flask-jwt", http.StatusUnauthorized, `{"msg": "Token has expired"}`, true, 0, "Token has expired"},
		{"400 с полем error", http.StatusBadRequest, `{"error": "intranet_id je povinný"}`, false, 400, "intranet_id je povinný"},
		{"403 админ", http.StatusForbidden, `{"error": "Admin access required"}`, false, 403, "Admin access required"},
		{"404 HTML", http.StatusNotFound, `<html>Not Found</html>`, false, 404, ""},
		{"500 пустое тело", http.StatusInternalServerError, ``, false, 500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Auth.Me(WithToken(context.Background(), "t"))
			if err == nil {
				t.Fatal("ожидалась ошибка")
			}

			if tt.wantAuth {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("ожидался AuthError, получено %T", err)
				}
				if authErr.Message != tt.wantMessage {
					t.Errorf("Message = %q", authErr.Message)
				}
				return
			}

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("ожидался RequestError, получено %T", err)
			}
			if reqErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d", reqErr.StatusCode)
			}
			if reqErr.Message != tt.wantMessage {
				t.Errorf("Message = %q", reqErr.Message)
			}
			if IsAuthError(err) {
				t.Error("RequestError не должен считаться AuthError")
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := New(url, time.Second, "", testLogger())
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Auth.Me(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("ожидался NetworkError, получено %v", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Vehicle{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Vehicles.List(ctx, "")
	if !IsNetworkError(err) {
		t.Fatalf("ожидался NetworkError, получено %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ожидалась context.Canceled в цепочке: %v", err)
	}
}

func TestVehicles_QueryParams(t *testing.T) {
	var gotQuery map[string]string
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{"path": r.URL.Path}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		switch r.URL.Path {
		case "/api/vehicles":
			writeJSON(w, http.StatusOK, []model.Vehicle{{VehicleID: 1, Status: "Active"}})
		case "/api/vehicles/3/availability":
			writeJSON(w, http.StatusOK, map[string]any{"vehicle_id": 3, "available": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	vehicles, err := client.Vehicles.List(ctx, model.VehicleStatusAll)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(vehicles) != 1 || gotQuery["status"] != "all" {
		t.Errorf("List: %d автомобилей, query %v", len(vehicles), gotQuery)
	}

	if _, err := client.Vehicles.List(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := gotQuery["status"]; ok {
		t.Error("пустой status не должен передаваться")
	}

	start := time.Date(2025, 3, 14, 8, 0, 0, 0, time.Local)
	avail, err := client.Vehicles.CheckAvailability(ctx, 3, start, start.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !avail.Available {
		t.Error("ожидалось available=true")
	}
	if gotQuery["start_time"] != "2025-03-14T08:00:00" || gotQuery["end_time"] != "2025-03-14T10:00:00" {
		t.Errorf("параметры интервала: %v", gotQuery)
	}
}

func TestReservations_Calendar(t *testing.T) {
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/api/calendar" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if q.Get("start_date") != "2025-03-10" || q.Get("end_date") != "2025-03-16" {
			t.Errorf("даты: %v", q)
		}
		if q.Get("vehicle_id") != "" {
			t.Errorf("vehicle_id не должен передаваться: %v", q)
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "1AB 2345 - Jan Novák", "start": "2025-03-11T08:00:00", "end": "2025-03-11T12:00:00"},
		})
	})

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	events, err := client.Reservations.Calendar(context.Background(), start, start.AddDate(0, 0, 6), 0)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if len(events) != 1 || events[0].Start.Hour() != 8 {
		t.Errorf("события: %+v", events)
	}
}

func TestUsers_UpdateRole(t *testing.T) {
	_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/users/4/role" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]int
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["role_id"] != 2 {
			t.Errorf("role_id = %d", body["role_id"])
		}
		writeJSON(w, http.StatusOK, map[string]any{"user_id": 4, "role_id": 2, "role_name": "Fleet Administrator"})
	})

	user, err := client.Users.UpdateRole(context.Background(), 4, 2)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if user.RoleID != 2 {
		t.Errorf("RoleID = %d", user.RoleID)
	}
}

func TestClient_CRUDRequests(t *testing.T) {
	start := model.Time{Time: time.Date(2025, 3, 20, 8, 0, 0, 0, time.Local)}
	end := model.Time{Time: time.Date(2025, 3, 20, 12, 30, 0, 0, time.Local)}
	day := &model.Date{Time: model.Time{Time: time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)}}
	seats := 5
	cost := 1500.5
	destination := "Brno"

	tests := []struct {
		name       string
		call       func(ctx context.Context, c *Client) (any, error)
		wantMethod string
		wantPath   string
		// wantBody — ожидаемое JSON-тело; пустая строка — тела нет
		wantBody string
		response map[string]any
		check    func(t *testing.T, got any)
	}{
		{
			name: "создание автомобиля",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.Vehicles.Create(ctx, &model.VehicleInput{
					Make: "Škoda", Model: "Octavia", LicensePlate: "1AB 2345",
					FuelType: "Diesel", SeatingCapacity: seats, LastServiceDate: day,
				})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/vehicles",
			wantBody: `{"make":"Škoda","model":"Octavia","license_plate":"1AB 2345",
				"fuel_type":"Diesel","seating_capacity":5,"last_service_date":"2025-03-14"}`,
			response: map[string]any{"vehicle_id": 7, "make": "Škoda", "status": "Active"},
			check: func(t *testing.T, got any) {
				if v := got.(*model.Vehicle); v.VehicleID != 7 || v.Status != model.VehicleStatusActive {
					t.Errorf("автомобиль = %+v", v)
				}
			},
		},
		{
			name: "частичное изменение автомобиля",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.Vehicles.Update(ctx, 7, &model.VehicleInput{Status: model.VehicleStatusInService})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/vehicles/7",
			wantBody:   `{"status":"In Service"}`,
			response:   map[string]any{"vehicle_id": 7, "status": "In Service"},
			check: func(t *testing.T, got any) {
				if v := got.(*model.Vehicle); v.Status != model.VehicleStatusInService {
					t.Errorf("Status = %q", v.Status)
				}
			},
		},
		{
			name: "создание резервации",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.Reservations.Create(ctx, &model.ReservationInput{
					VehicleID: 4, StartTime: &start, EndTime: &end,
					Purpose: "Schůzka", Destination: &destination,
				})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/reservations",
			wantBody: `{"vehicle_id":4,"start_time":"2025-03-20T08:00:00","end_time":"2025-03-20T12:30:00",
				"purpose":"Schůzka","destination":"Brno"}`,
			response: map[string]any{
				"reservation_id": 11, "vehicle_id": 4, "status": "Confirmed",
				"start_time": "2025-03-20T08:00:00", "end_time": "2025-03-20T12:30:00",
			},
			check: func(t *testing.T, got any) {
				r := got.(*model.Reservation)
				if r.ReservationID != 11 || r.Status != model.ReservationStatusConfirmed {
					t.Errorf("резервация = %+v", r)
				}
				if !r.StartTime.Equal(start.Time) {
					t.Errorf("StartTime = %v, ожидается %v", r.StartTime, start)
				}
			},
		},
		{
			name: "частичное изменение резервации",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.Reservations.Update(ctx, 11, &model.ReservationInput{EndTime: &end})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/reservations/11",
			wantBody:   `{"end_time":"2025-03-20T12:30:00"}`,
			response:   map[string]any{"reservation_id": 11, "end_time": "2025-03-20T12:30:00"},
			check: func(t *testing.T, got any) {
				if r := got.(*model.Reservation); !r.EndTime.Equal(end.Time) {
					t.Errorf("EndTime = %v", r.EndTime)
				}
			},
		},
		{
			name: "пользователь по ID",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.Users.Get(ctx, 3)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/users/3",
			response:   map[string]any{"user_id": 3, "intranet_id": "jnovak", "is_active": true},
			check: func(t *testing.T, got any) {
				if u := got.(*model.UserProfile); u.IntranetID != "jnovak" || !u.IsActive {
					t.Errorf("пользователь = %+v", u)
				}
			},
		},
		{
			name: "сервисная запись по ID",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.ServiceRecords.Get(ctx, 9)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/service-records/9",
			response:   map[string]any{"service_id": 9, "service_type": "Oil change", "service_date": "2025-03-14", "cost": 1500.5},
			check: func(t *testing.T, got any) {
				rec := got.(*model.ServiceRecord)
				if rec.ServiceID != 9 || rec.Cost == nil || *rec.Cost != cost {
					t.Errorf("запись = %+v", rec)
				}
				if rec.ServiceDate.Format(time.DateOnly) != "2025-03-14" {
					t.Errorf("ServiceDate = %v", rec.ServiceDate)
				}
			},
		},
		{
			name: "создание сервисной записи",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.ServiceRecords.Create(ctx, &model.ServiceRecordInput{
					VehicleID: 4, ServiceDate: day, ServiceType: "Oil change", Cost: &cost,
				})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/service-records",
			wantBody:   `{"vehicle_id":4,"service_date":"2025-03-14","service_type":"Oil change","cost":1500.5}`,
			response:   map[string]any{"service_id": 10, "vehicle_id": 4},
			check: func(t *testing.T, got any) {
				if rec := got.(*model.ServiceRecord); rec.ServiceID != 10 {
					t.Errorf("ServiceID = %d", rec.ServiceID)
				}
			},
		},
		{
			name: "частичное изменение сервисной записи",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.ServiceRecords.Update(ctx, 10, &model.ServiceRecordInput{Cost: &cost})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/service-records/10",
			wantBody:   `{"cost":1500.5}`,
			response:   map[string]any{"service_id": 10, "cost": 1500.5},
			check: func(t *testing.T, got any) {
				if rec := got.(*model.ServiceRecord); rec.Cost == nil || *rec.Cost != cost {
					t.Errorf("Cost = %v", rec.Cost)
				}
			},
		},
		{
			name: "запись о повреждении по ID",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.DamageRecords.Get(ctx, 5)
			},
			wantMethod: http.MethodGet,
			wantPath:   "/api/damage-records/5",
			response:   map[string]any{"damage_id": 5, "description": "Škrábanec", "repair_status": "Reported"},
			check: func(t *testing.T, got any) {
				if rec := got.(*model.DamageRecord); rec.DamageID != 5 || rec.RepairStatus != "Reported" {
					t.Errorf("запись = %+v", rec)
				}
			},
		},
		{
			name: "создание записи о повреждении",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.DamageRecords.Create(ctx, &model.DamageRecordInput{
					VehicleID: 4, DateOfDamage: day, Description: "Škrábanec", EstimatedCost: &cost,
				})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/damage-records",
			wantBody:   `{"vehicle_id":4,"date_of_damage":"2025-03-14","description":"Škrábanec","estimated_cost":1500.5}`,
			response:   map[string]any{"damage_id": 6, "repair_status": "Reported"},
			check: func(t *testing.T, got any) {
				if rec := got.(*model.DamageRecord); rec.DamageID != 6 {
					t.Errorf("DamageID = %d", rec.DamageID)
				}
			},
		},
		{
			name: "частичное изменение записи о повреждении",
			call: func(ctx context.Context, c *Client) (any, error) {
				return c.DamageRecords.Update(ctx, 6, &model.DamageRecordInput{RepairStatus: "Repaired", ActualCost: &cost})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/api/damage-records/6",
			wantBody:   `{"actual_cost":1500.5,"repair_status":"Repaired"}`,
			response:   map[string]any{"damage_id": 6, "repair_status": "Repaired"},
			check: func(t *testing.T, got any) {
				if rec := got.(*model.DamageRecord); rec.RepairStatus != "Repaired" {
					t.Errorf("RepairStatus = %q", rec.RepairStatus)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.wantMethod || r.URL.Path != tt.wantPath {
					t.Errorf("запрос %s %s, ожидается %s %s", r.Method, r.URL.Path, tt.wantMethod, tt.wantPath)
					w.WriteHeader(http.StatusNotFound)
					return
				}
				raw, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("чтение тела: %v", err)
				}
				assertJSONBody(t, raw, tt.wantBody)
				writeJSON(w, http.StatusOK, tt.response)
			})

			got, err := tt.call(context.Background(), client)
			if err != nil {
				t.Fatalf("вызов: %v", err)
			}
			tt.check(t, got)
		})
	}
}

// assertJSONBody сравнивает тело запроса с ожидаемым JSON без учёта порядка полей.
func assertJSONBody(t *testing.T, raw []byte, want string) {
	t.Helper()
	if want == "" {
		if len(bytes.TrimSpace(raw)) != 0 {
			t.Errorf("тело = %s, ожидается пустое", raw)
		}
		return
	}
	var gotMap, wantMap map[string]any
	if err := json.Unmarshal(raw, &gotMap); err != nil {
		t.Fatalf("тело запроса не JSON: %v (%s)", err, raw)
	}
	if err := json.Unmarshal([]byte(want), &wantMap); err != nil {
		t.Fatalf("ожидаемое тело не JSON: %v", err)
	}
	if !reflect.DeepEqual(gotMap, wantMap) {
		t.Errorf("тело = %s, ожидается %s", raw, want)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"RequestError с сообщением", &RequestError{Op: "x", StatusCode: 400, Message: "Vehicle not found"}, "Vehicle not found"},
		{"RequestError без сообщения", &RequestError{Op: "x", StatusCode: 500}, "fallback"},
		{"ValidationError", &ValidationError{Field: "intranet_id", Message: "povinné"}, "povinné"},
		{"NetworkError", &NetworkError{Op: "x", Err: errors.New("dial")}, "fallback"},
		{"обёрнутая ошибка", errors.Join(errors.New("ctx"), &RequestError{Message: "deep"}), "deep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, "fallback"); got != tt.want {
				t.Errorf("UserMessage() = %q, ожидается %q", got, tt.want)
			}
		})
	}
}
