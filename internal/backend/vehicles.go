package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// VehiclesAPI — группа /vehicles.
type VehiclesAPI struct {
	c *Client
}

// List возвращает автомобили со статусом status.
// Пустой status — значение backend по умолчанию (Active);
// model.VehicleStatusAll — все статусы.
func (v *VehiclesAPI) List(ctx context.Context, status string) ([]model.Vehicle, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var vehicles []model.Vehicle
	err := v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.list",
		method: http.MethodGet,
		path:   "/vehicles",
		query:  query,
	}, &vehicles)
	return vehicles, err
}

// Get возвращает автомобиль по ID.
func (v *VehiclesAPI) Get(ctx context.Context, id int) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.get",
		method: http.MethodGet,
		path:   idPath("/vehicles", id),
	}, &vehicle)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create добавляет автомобиль (только администратор).
func (v *VehiclesAPI) Create(ctx context.Context, in *model.VehicleInput) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.create",
		method: http.MethodPost,
		path:   "/vehicles",
		body:   in,
	}, &vehicle)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Update изменяет автомобиль (только администратор).
func (v *VehiclesAPI) Update(ctx context.Context, id int, in *model.VehicleInput) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.update",
		method: http.MethodPut,
		path:   idPath("/vehicles", id),
		body:   in,
	}, &vehicle)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Delete архивирует автомобиль: backend переводит его в статус Archived.
func (v *VehiclesAPI) Delete(ctx context.Context, id int) error {
	return v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.delete",
		method: http.MethodDelete,
		path:   idPath("/vehicles", id),
	}, nil)
}

// CheckAvailability проверяет, свободен ли автомобиль в интервале [start, end].
func (v *VehiclesAPI) CheckAvailability(ctx context.Context, id int, start, end time.Time) (*model.Availability, error) {
	query := url.Values{}
	query.Set("start_time", start.Format(backendTimeLayout))
	query.Set("end_time", end.Format(backendTimeLayout))

	var availability model.Availability
	err := v.c.do(ctx, request{
		group:  "vehicles",
		op:     "vehicles.availability",
		method: http.MethodGet,
		path:   idPath("/vehicles", id, "/availability"),
		query:  query,
	}, &availability)
	if err != nil {
		return nil, err
	}
	return &availability, nil
}
