// vehicles.go — список автомобилей, карточка, проверка доступности, архивирование.
package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
)

// vehicleStatuses — значения фильтра списка автомобилей.
var vehicleStatuses = []string{
	model.VehicleStatusActive,
	model.VehicleStatusInService,
	model.VehicleStatusDeactivated,
	model.VehicleStatusArchived,
	model.VehicleStatusAll,
}

// VehiclesHandler — обработчик страниц автомобилей.
type VehiclesHandler struct {
	base
}

// NewVehiclesHandler создаёт новый VehiclesHandler.
func NewVehiclesHandler(deps Deps, logger *slog.Logger) *VehiclesHandler {
	return &VehiclesHandler{base: newBase(deps, "ui.vehicles", logger)}
}

// HandleList — GET /vehicles?status=.
// Неизвестный статус заменяется на Active.
func (h *VehiclesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !slices.Contains(vehicleStatuses, status) {
		status = model.VehicleStatusActive
	}

	data := pages.VehiclesData{
		Layout:   h.layout(w, r),
		Status:   status,
		Statuses: vehicleStatuses,
	}

	vehicles, err := h.Client.Vehicles.List(r.Context(), status)
	if err != nil {
		msg, done := h.backendError(w, r, err, "vehicles.load_error")
		if done {
			return
		}
		data.Error = msg
	}
	data.Vehicles = vehicles

	h.render(w, r, http.StatusOK, "vehicles", h.Pages.Vehicles(data))
}

// HandleDetail — GET /vehicles/{id}[?start_time=&end_time=].
// При заданном интервале выполняется проверка доступности.
// Администратор дополнительно видит сервисную историю и повреждения.
func (h *VehiclesHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	vehicle, err := h.Client.Vehicles.Get(ctx, id)
	if err != nil {
		msg, done := h.backendError(w, r, err, "vehicles.load_error")
		if done {
			return
		}
		setFlash(w, flash{Message: msg, Error: true}, h.SecureCookie)
		http.Redirect(w, r, "/vehicles", http.StatusSeeOther)
		return
	}

	data := pages.VehicleDetailData{
		Layout:     h.layout(w, r),
		Vehicle:    vehicle,
		StartInput: r.URL.Query().Get("start_time"),
		EndInput:   r.URL.Query().Get("end_time"),
	}

	if data.StartInput != "" || data.EndInput != "" {
		start, end, ok := parseRange(data.StartInput, data.EndInput)
		if !ok {
			data.AvailabilityError = h.t(r, "vehicles.invalid_range")
		} else {
			availability, err := h.Client.Vehicles.CheckAvailability(ctx, id, start, end)
			if err != nil {
				msg, done := h.backendError(w, r, err, "vehicles.availability_error")
				if done {
					return
				}
				data.AvailabilityError = msg
			}
			data.Availability = availability
		}
	}

	if data.IsAdmin {
		service, err := h.Client.ServiceRecords.ListByVehicle(ctx, id)
		if err != nil {
			msg, done := h.backendError(w, r, err, "service.load_error")
			if done {
				return
			}
			data.ServiceError = msg
		}
		damages, err := h.Client.DamageRecords.ListByVehicle(ctx, id)
		if err != nil {
			msg, done := h.backendError(w, r, err, "damage.load_error")
			if done {
				return
			}
			data.DamageError = msg
		}
		data.ServiceRecords = service
		data.DamageRecords = damages
	}

	h.render(w, r, http.StatusOK, "vehicle_detail", h.Pages.VehicleDetail(data))
}

// HandleArchive — POST /vehicles/{id}/archive (только администратор).
// Backend не удаляет автомобиль, а переводит его в статус Archived.
func (h *VehiclesHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := h.Client.Vehicles.Delete(r.Context(), id)
	if err == nil {
		if s := uimiddleware.SessionFromContext(r.Context()); s != nil && s.User != nil {
			h.logger.Info("Автомобиль архивирован",
				slog.Int("vehicle_id", id),
				slog.String("intranet_id", s.User.IntranetID),
			)
		}
	}
	h.actionDone(w, r, err, "vehicles.archived", "vehicles.archive_error", "/vehicles")
}

// parseRange разбирает значения полей datetime-local.
// Конец интервала должен быть позже начала.
func parseRange(startInput, endInput string) (time.Time, time.Time, bool) {
	start, err := time.ParseInLocation(pages.InputDateTimeLayout, startInput, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation(pages.InputDateTimeLayout, endInput, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

