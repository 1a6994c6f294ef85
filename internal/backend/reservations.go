package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// ReservationsAPI — группы /reservations и /calendar.
type ReservationsAPI struct {
	c *Client
}

// List возвращает резервации. Сотрудник получает только свои,
// администратор — все (фильтрация на стороне backend).
func (r *ReservationsAPI) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	query := url.Values{}
	if filter.VehicleID > 0 {
		query.Set("vehicle_id", strconv.Itoa(filter.VehicleID))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.StartDate != "" {
		query.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		query.Set("end_date", filter.EndDate)
	}

	var reservations []model.Reservation
	err := r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.list",
		method: http.MethodGet,
		path:   "/reservations",
		query:  query,
	}, &reservations)
	return reservations, err
}

// Get возвращает резервацию по ID.
func (r *ReservationsAPI) Get(ctx context.Context, id int) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.get",
		method: http.MethodGet,
		path:   idPath("/reservations", id),
	}, &reservation)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Create создаёт резервацию.
func (r *ReservationsAPI) Create(ctx context.Context, in *model.ReservationInput) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.create",
		method: http.MethodPost,
		path:   "/reservations",
		body:   in,
	}, &reservation)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update изменяет резервацию.
func (r *ReservationsAPI) Update(ctx context.Context, id int, in *model.ReservationInput) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.update",
		method: http.MethodPut,
		path:   idPath("/reservations", id),
		body:   in,
	}, &reservation)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Cancel отменяет резервацию (DELETE переводит её в статус Cancelled).
func (r *ReservationsAPI) Cancel(ctx context.Context, id int) error {
	return r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.cancel",
		method: http.MethodDelete,
		path:   idPath("/reservations", id),
	}, nil)
}

// Calendar возвращает подтверждённые резервации, пересекающие [start, end],
// в формате событий календаря. vehicleID = 0 — все автомобили.
func (r *ReservationsAPI) Calendar(ctx context.Context, start, end time.Time, vehicleID int) ([]model.CalendarEvent, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(backendDateLayout))
	query.Set("end_date", end.Format(backendDateLayout))
	if vehicleID > 0 {
		query.Set("vehicle_id", strconv.Itoa(vehicleID))
	}

	var events []model.CalendarEvent
	err := r.c.do(ctx, request{
		group:  "reservations",
		op:     "reservations.calendar",
		method: http.MethodGet,
		path:   "/calendar",
		query:  query,
	}, &events)
	return events, err
}
