// admin.go — административные страницы: пользователи и роли,
// сервисные записи, записи о повреждениях.
package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
)

// repairStatuses — значения фильтра записей о повреждениях.
var repairStatuses = []string{
	model.RepairStatusPending,
	model.RepairStatusRepaired,
	model.RepairStatusIrreparable,
}

// AdminHandler — обработчик страниц /admin/*.
// Доступ проверяет Guard.RequireAdmin.
type AdminHandler struct {
	base
}

// NewAdminHandler создаёт новый AdminHandler.
func NewAdminHandler(deps Deps, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{base: newBase(deps, "ui.admin", logger)}
}

// auditLog фиксирует административное действие.
func (h *AdminHandler) auditLog(r *http.Request, msg string, attrs ...any) {
	if s := uimiddleware.SessionFromContext(r.Context()); s != nil && s.User != nil {
		attrs = append(attrs, slog.String("admin", s.User.IntranetID))
	}
	h.logger.Info(msg, attrs...)
}

// HandleUsers — GET /admin/users: пользователи и роли.
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pages.UsersData{Layout: h.layout(w, r)}

	users, err := h.Client.Users.List(ctx)
	if err != nil {
		msg, done := h.backendError(w, r, err, "users.load_error")
		if done {
			return
		}
		data.Error = msg
	}
	roles, err := h.Client.Users.ListRoles(ctx)
	if err != nil {
		msg, done := h.backendError(w, r, err, "users.load_error")
		if done {
			return
		}
		data.Error = msg
	}
	data.Users = users
	data.Roles = roles

	h.render(w, r, http.StatusOK, "users", h.Pages.Users(data))
}

// HandleUpdateRole — POST /admin/users/{id}/role.
func (h *AdminHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	roleID, err := strconv.Atoi(r.PostFormValue("role_id"))
	if err != nil || roleID <= 0 {
		h.actionDone(w, r, &backend.ValidationError{Field: "role_id", Message: h.t(r, "users.update_error")},
			"", "users.update_error", "/admin/users")
		return
	}

	_, err = h.Client.Users.UpdateRole(r.Context(), id, roleID)
	if err == nil {
		h.auditLog(r, "Роль пользователя изменена",
			slog.Int("user_id", id),
			slog.Int("role_id", roleID),
		)
	}
	h.actionDone(w, r, err, "users.updated", "users.update_error", "/admin/users")
}

// HandleUpdateStatus — POST /admin/users/{id}/status (is_active=true|false).
func (h *AdminHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	active, err := strconv.ParseBool(r.PostFormValue("is_active"))
	if err != nil {
		h.actionDone(w, r, &backend.ValidationError{Field: "is_active", Message: h.t(r, "users.update_error")},
			"", "users.update_error", "/admin/users")
		return
	}

	_, err = h.Client.Users.UpdateStatus(r.Context(), id, active)
	if err == nil {
		h.auditLog(r, "Статус пользователя изменён",
			slog.Int("user_id", id),
			slog.Bool("is_active", active),
		)
	}
	h.actionDone(w, r, err, "users.updated", "users.update_error", "/admin/users")
}

// HandleCreateRole — POST /admin/roles.
func (h *AdminHandler) HandleCreateRole(w http.ResponseWriter, r *http.Request) {
	role := &model.NewRole{
		RoleName:    strings.TrimSpace(r.PostFormValue("role_name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if role.RoleName == "" {
		h.actionDone(w, r, &backend.ValidationError{Field: "role_name", Message: h.t(r, "users.role_error")},
			"", "users.role_error", "/admin/users")
		return
	}

	_, err := h.Client.Users.CreateRole(r.Context(), role)
	if err == nil {
		h.auditLog(r, "Создана роль", slog.String("role_name", role.RoleName))
	}
	h.actionDone(w, r, err, "users.role_created", "users.role_error", "/admin/users")
}

// HandleServiceRecords — GET /admin/service-records?vehicle_id=.
func (h *AdminHandler) HandleServiceRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicleID := queryInt(r, "vehicle_id")
	data := pages.ServiceRecordsData{
		Layout:    h.layout(w, r),
		VehicleID: vehicleID,
	}

	records, err := h.Client.ServiceRecords.List(ctx, vehicleID)
	if err != nil {
		msg, done := h.backendError(w, r, err, "service.load_error")
		if done {
			return
		}
		data.Error = msg
	}
	data.Records = records

	vehicles, msg, ok := h.filterVehicles(w, r)
	if !ok {
		return
	}
	data.Vehicles = vehicles
	data.VehiclesError = msg

	h.render(w, r, http.StatusOK, "service", h.Pages.ServiceRecords(data))
}

// HandleDeleteServiceRecord — POST /admin/service-records/{id}/delete.
func (h *AdminHandler) HandleDeleteServiceRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := h.Client.ServiceRecords.Delete(r.Context(), id)
	if err == nil {
		h.auditLog(r, "Сервисная запись удалена", slog.Int("service_id", id))
	}
	h.actionDone(w, r, err, "service.deleted", "service.delete_error",
		localReferer(r, "/admin/service-records"))
}

// HandleDamageRecords — GET /admin/damage-records?vehicle_id=&repair_status=.
func (h *AdminHandler) HandleDamageRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := model.DamageRecordFilter{
		VehicleID:    queryInt(r, "vehicle_id"),
		RepairStatus: r.URL.Query().Get("repair_status"),
	}
	if !slices.Contains(repairStatuses, filter.RepairStatus) {
		filter.RepairStatus = ""
	}

	data := pages.DamageRecordsData{
		Layout:       h.layout(w, r),
		VehicleID:    filter.VehicleID,
		RepairStatus: filter.RepairStatus,
		Statuses:     repairStatuses,
	}

	records, err := h.Client.DamageRecords.List(ctx, filter)
	if err != nil {
		msg, done := h.backendError(w, r, err, "damage.load_error")
		if done {
			return
		}
		data.Error = msg
	}
	data.Records = records

	vehicles, msg, ok := h.filterVehicles(w, r)
	if !ok {
		return
	}
	data.Vehicles = vehicles
	data.VehiclesError = msg

	h.render(w, r, http.StatusOK, "damage", h.Pages.DamageRecords(data))
}

// HandleDeleteDamageRecord — POST /admin/damage-records/{id}/delete.
func (h *AdminHandler) HandleDeleteDamageRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := h.Client.DamageRecords.Delete(r.Context(), id)
	if err == nil {
		h.auditLog(r, "Запись о повреждении удалена", slog.Int("damage_id", id))
	}
	h.actionDone(w, r, err, "damage.deleted", "damage.delete_error",
		localReferer(r, "/admin/damage-records"))
}

// filterVehicles загружает все автомобили для фильтра.
// Ошибка (кроме 401) не мешает показать страницу: её текст
// возвращается вторым значением и выводится над таблицей.
func (h *AdminHandler) filterVehicles(w http.ResponseWriter, r *http.Request) ([]model.Vehicle, string, bool) {
	vehicles, err := h.Client.Vehicles.List(r.Context(), model.VehicleStatusAll)
	if err != nil {
		msg, done := h.backendError(w, r, err, "vehicles.load_error")
		if done {
			return nil, "", false
		}
		return nil, msg, true
	}
	return vehicles, "", true
}
