package model

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime_UnmarshalFormats проверяет разбор форматов, которые отдаёт backend.
func TestTime_UnmarshalFormats(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZero bool
		wantDay  int
		wantHour int
	}{
		{"isoformat без зоны", `"2025-03-14T08:30:00"`, false, 14, 8},
		{"isoformat с микросекундами", `"2025-03-14T08:30:00.123456"`, false, 14, 8},
		{"RFC3339 с зоной", `"2025-03-14T08:30:00Z"`, false, 14, 8},
		{"только дата", `"2025-03-14"`, false, 14, 0},
		{"null", `null`, true, 0, 0},
		{"пустая строка", `""`, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if got.IsZero() != tt.wantZero {
				t.Fatalf("IsZero() = %v, ожидается %v", got.IsZero(), tt.wantZero)
			}
			if tt.wantZero {
				return
			}
			if got.Day() != tt.wantDay || got.Hour() != tt.wantHour {
				t.Errorf("получено %v, ожидается день %d час %d", got.Time, tt.wantDay, tt.wantHour)
			}
		})
	}
}

func TestTime_UnmarshalInvalid(t *testing.T) {
	var got Time
	if err := json.Unmarshal([]byte(`"14.03.2025"`), &got); err == nil {
		t.Error("ожидалась ошибка для неподдерживаемого формата")
	}
	if err := json.Unmarshal([]byte(`42`), &got); err == nil {
		t.Error("ожидалась ошибка для числа")
	}
}

func TestTime_Marshal(t *testing.T) {
	ts := Time{Time: time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)}
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2025-03-14T08:30:00"` {
		t.Errorf("Marshal = %s", data)
	}

	d := Date{Time: ts}
	data, err = json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2025-03-14"` {
		t.Errorf("Marshal(Date) = %s", data)
	}

	data, _ = json.Marshal(Time{})
	if string(data) != "null" {
		t.Errorf("Marshal(zero) = %s, ожидается null", data)
	}
}

func TestReservation_IsUpcoming(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		status string
		end    time.Time
		want   bool
	}{
		{"подтверждена, в будущем", ReservationStatusConfirmed, now.Add(time.Hour), true},
		{"подтверждена, закончилась", ReservationStatusConfirmed, now.Add(-time.Hour), false},
		{"отменена, в будущем", ReservationStatusCancelled, now.Add(time.Hour), false},
		{"заканчивается сейчас", ReservationStatusConfirmed, now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{Status: tt.status, EndTime: Time{Time: tt.end}}
			if got := r.IsUpcoming(now); got != tt.want {
				t.Errorf("IsUpcoming() = %v, ожидается %v", got, tt.want)
			}
		})
	}
}

func TestUserProfile_Unmarshal(t *testing.T) {
	raw := `{"user_id": 7, "intranet_id": "admin", "first_name": "Admin", "last_name": "Uživatel",
		"email": "admin@company.com", "phone_number": null, "role_id": 2,
		"role_name": "Fleet Administrator", "is_active": true,
		"created_at": "2025-01-02T10:00:00.000001", "updated_at": null}`

	var u UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.UserID != 7 || u.RoleName != "Fleet Administrator" || !u.IsActive {
		t.Errorf("неожиданный профиль: %+v", u)
	}
	if u.FullName() != "Admin Uživatel" {
		t.Errorf("FullName() = %q", u.FullName())
	}
	if !u.UpdatedAt.IsZero() {
		t.Error("UpdatedAt должен быть нулевым для null")
	}
}
