// dashboard.go — главная страница: сводка и ближайшие резервации.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
)

// Размеры списков главной страницы.
const (
	dashboardReservations  = 5
	dashboardVehiclesScan  = 6
	dashboardVehiclesShown = 4
)

// DashboardHandler — обработчик главной страницы.
type DashboardHandler struct {
	base
	now func() time.Time
}

// NewDashboardHandler создаёт новый DashboardHandler.
func NewDashboardHandler(deps Deps, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		base: newBase(deps, "ui.dashboard", logger),
		now:  time.Now,
	}
}

// HandleDashboard — GET /.
// Резервации и автомобили загружаются параллельно; ошибка одного запроса
// отменяет другой.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var (
		reservations []model.Reservation
		vehicles     []model.Vehicle
	)

	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		reservations, err = h.Client.Reservations.List(gctx, model.ReservationFilter{
			Status: model.ReservationStatusConfirmed,
		})
		return err
	})
	g.Go(func() error {
		var err error
		vehicles, err = h.Client.Vehicles.List(gctx, "")
		return err
	})
	err := g.Wait()

	data := pages.DashboardData{Layout: h.layout(w, r)}
	if err != nil {
		if _, done := h.backendError(w, r, err, "dashboard.load_error"); done {
			return
		}
		data.Error = h.t(r, "dashboard.load_error")
	} else {
		data.Loaded = true
		data.Stats = computeDashboardStats(reservations, vehicles, h.now())
		data.Reservations = firstN(reservations, dashboardReservations)
		data.Vehicles = activeVehicles(firstN(vehicles, dashboardVehiclesScan), dashboardVehiclesShown)
	}

	h.render(w, r, http.StatusOK, "dashboard", h.Pages.Dashboard(data))
}

// computeDashboardStats считает сводку главной страницы.
// Предстоящие — подтверждённые резервации, которые ещё не закончились.
func computeDashboardStats(reservations []model.Reservation, vehicles []model.Vehicle, now time.Time) pages.DashboardStats {
	stats := pages.DashboardStats{
		TotalVehicles:     len(vehicles),
		TotalReservations: len(reservations),
	}
	for i := range vehicles {
		if vehicles[i].IsActive() {
			stats.ActiveVehicles++
		}
	}
	for i := range reservations {
		if reservations[i].IsUpcoming(now) {
			stats.UpcomingReservations++
		}
	}
	return stats
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// activeVehicles возвращает не более limit активных автомобилей.
func activeVehicles(vehicles []model.Vehicle, limit int) []model.Vehicle {
	out := make([]model.Vehicle, 0, limit)
	for _, v := range vehicles {
		if len(out) == limit {
			break
		}
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out
}
