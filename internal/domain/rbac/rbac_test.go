package rbac

import (
	"testing"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *model.UserProfile
		want bool
	}{
		{"nil пользователь", nil, false},
		{"администратор", &model.UserProfile{RoleName: "Fleet Administrator"}, true},
		{"сотрудник", &model.UserProfile{RoleName: "Employee"}, false},
		{"регистр не совпадает", &model.UserProfile{RoleName: "fleet administrator"}, false},
		{"лишний пробел", &model.UserProfile{RoleName: "Fleet Administrator "}, false},
		{"пустая роль", &model.UserProfile{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.user); got != tt.want {
				t.Errorf("IsAdmin() = %v, ожидается %v", got, tt.want)
			}
			if got := Can(tt.user, CapabilityFleetAdmin); got != tt.want {
				t.Errorf("Can(fleet_admin) = %v, ожидается %v", got, tt.want)
			}
		})
	}
}

func TestCan_UnknownCapability(t *testing.T) {
	admin := &model.UserProfile{RoleName: RoleFleetAdmin}
	if Can(admin, Capability("unknown")) {
		t.Error("неизвестная возможность не должна выдаваться")
	}
}

func TestCanModifyReservation(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)
	owner := &model.UserProfile{UserID: 10, RoleName: "Employee"}
	other := &model.UserProfile{UserID: 11, RoleName: "Employee"}
	admin := &model.UserProfile{UserID: 1, RoleName: RoleFleetAdmin}

	reservation := func(status string, startIn time.Duration) *model.Reservation {
		return &model.Reservation{
			UserID:    10,
			Status:    status,
			StartTime: model.Time{Time: now.Add(startIn)},
		}
	}

	tests := []struct {
		name string
		user *model.UserProfile
		r    *model.Reservation
		want bool
	}{
		{"владелец, за 3 часа", owner, reservation(model.ReservationStatusConfirmed, 3*time.Hour), true},
		{"владелец, ровно за 2 часа", owner, reservation(model.ReservationStatusConfirmed, 2*time.Hour), true},
		{"владелец, за час", owner, reservation(model.ReservationStatusConfirmed, time.Hour), false},
		{"владелец, отменённая", owner, reservation(model.ReservationStatusCancelled, 5*time.Hour), false},
		{"чужая резервация", other, reservation(model.ReservationStatusConfirmed, 5*time.Hour), false},
		{"администратор, уже началась", admin, reservation(model.ReservationStatusConfirmed, -time.Hour), true},
		{"nil пользователь", nil, reservation(model.ReservationStatusConfirmed, 5*time.Hour), false},
		{"nil резервация", owner, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyReservation(tt.user, tt.r, now); got != tt.want {
				t.Errorf("CanModifyReservation() = %v, ожидается %v", got, tt.want)
			}
		})
	}
}
