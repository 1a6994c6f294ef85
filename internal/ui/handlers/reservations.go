// reservations.go — списки резерваций и отмена.
package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/domain/rbac"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// reservationStatuses — значения фильтра по статусу.
var reservationStatuses = []string{
	model.ReservationStatusConfirmed,
	model.ReservationStatusPending,
	model.ReservationStatusCompleted,
	model.ReservationStatusCancelled,
}

// ReservationsHandler — обработчик страниц резерваций.
type ReservationsHandler struct {
	base
	now func() time.Time
}

// NewReservationsHandler создаёт новый ReservationsHandler.
func NewReservationsHandler(deps Deps, logger *slog.Logger) *ReservationsHandler {
	return &ReservationsHandler{
		base: newBase(deps, "ui.reservations", logger),
		now:  time.Now,
	}
}

// HandleMy — GET /my-reservations: резервации текущего пользователя.
func (h *ReservationsHandler) HandleMy(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// HandleAdminList — GET /admin/reservations: все резервации.
func (h *ReservationsHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ReservationsHandler) list(w http.ResponseWriter, r *http.Request, adminView bool) {
	s := uimiddleware.SessionFromContext(r.Context())
	if s == nil || s.User == nil {
		http.Redirect(w, r, session.LoginURL(r.URL.RequestURI()), http.StatusFound)
		return
	}

	status := r.URL.Query().Get("status")
	if !slices.Contains(reservationStatuses, status) {
		status = ""
	}

	data := pages.ReservationsData{
		Layout:    h.layout(w, r),
		Status:    status,
		Statuses:  reservationStatuses,
		AdminView: adminView,
	}

	reservations, err := h.Client.Reservations.List(r.Context(), model.ReservationFilter{Status: status})
	if err != nil {
		msg, done := h.backendError(w, r, err, "reservations.load_error")
		if done {
			return
		}
		data.Error = msg
	}

	now := h.now()
	data.Rows = make([]pages.ReservationRow, 0, len(reservations))
	for i := range reservations {
		res := &reservations[i]
		// для администратора backend отдаёт все резервации
		if !adminView && res.UserID != s.User.UserID {
			continue
		}
		data.Rows = append(data.Rows, pages.ReservationRow{
			Reservation: *res,
			CanModify:   rbac.CanModifyReservation(s.User, res, now),
		})
	}

	h.render(w, r, http.StatusOK, "reservations", h.Pages.Reservations(data))
}

// HandleCancel — POST /reservations/{id}/cancel.
// Кнопка показывается только при CanModify; backend проверяет правило сам.
func (h *ReservationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target := session.SafeNext(r.PostFormValue("next"))
	if target == "/" {
		target = "/my-reservations"
	}

	id, ok := idParam(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	s := uimiddleware.SessionFromContext(ctx)
	res, err := h.Client.Reservations.Get(ctx, id)
	if err != nil {
		h.actionDone(w, r, err, "", "reservations.cancel_error", target)
		return
	}
	if s == nil || !rbac.CanModifyReservation(s.User, res, h.now()) {
		setFlash(w, flash{Message: h.t(r, "reservations.cancel_error"), Error: true}, h.SecureCookie)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	err = h.Client.Reservations.Cancel(ctx, id)
	if err == nil {
		h.logger.Info("Резервация отменена",
			slog.Int("reservation_id", id),
			slog.String("intranet_id", s.User.IntranetID),
		)
	}
	h.actionDone(w, r, err, "reservations.cancelled", "reservations.cancel_error", target)
}
