// Пакет rbac — проверка возможностей пользователя.
// Модель двухуровневая: администратор автопарка и все остальные.
// Единственный сигнал авторизации — role_name профиля из backend,
// поэтому переход на многоролевую модель меняет только этот пакет.
package rbac

import (
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// RoleFleetAdmin — название административной роли в backend.
// Сравнение точное и чувствительное к регистру.
const RoleFleetAdmin = "Fleet Administrator"

// Capability — именованная возможность пользователя.
type Capability string

const (
	// CapabilityFleetAdmin — управление автопарком, пользователями,
	// сервисными записями и повреждениями, все резервации.
	CapabilityFleetAdmin Capability = "fleet_admin"
)

// ModifyWindow — минимальное время до начала резервации,
// когда владелец ещё может её изменить или отменить.
const ModifyWindow = 2 * time.Hour

// capabilityRoles — роли, дающие возможность.
var capabilityRoles = map[Capability][]string{
	CapabilityFleetAdmin: {RoleFleetAdmin},
}

// Can проверяет, обладает ли пользователь возможностью.
// Для nil-пользователя всегда false.
func Can(user *model.UserProfile, c Capability) bool {
	if user == nil {
		return false
	}
	for _, role := range capabilityRoles[c] {
		if user.RoleName == role {
			return true
		}
	}
	return false
}

// IsAdmin — сокращение для Can(user, CapabilityFleetAdmin).
func IsAdmin(user *model.UserProfile) bool {
	return Can(user, CapabilityFleetAdmin)
}

// CanModifyReservation определяет, может ли пользователь изменить или
// отменить резервацию. Администратор — любую; владелец — только
// подтверждённую и не позднее чем за ModifyWindow до начала.
// Окончательное решение принимает backend.
func CanModifyReservation(user *model.UserProfile, r *model.Reservation, now time.Time) bool {
	if user == nil || r == nil {
		return false
	}
	if IsAdmin(user) {
		return true
	}
	if r.UserID != user.UserID {
		return false
	}
	if r.Status != model.ReservationStatusConfirmed {
		return false
	}
	return r.StartTime.Sub(now) >= ModifyWindow
}
