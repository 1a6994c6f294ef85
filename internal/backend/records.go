package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// ServiceRecordsAPI — группа /service-records (только администратор).
type ServiceRecordsAPI struct {
	c *Client
}

// List возвращает сервисные записи; vehicleID = 0 — по всем автомобилям.
func (s *ServiceRecordsAPI) List(ctx context.Context, vehicleID int) ([]model.ServiceRecord, error) {
	query := url.Values{}
	if vehicleID > 0 {
		query.Set("vehicle_id", strconv.Itoa(vehicleID))
	}
	var records []model.ServiceRecord
	err := s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.list",
		method: http.MethodGet,
		path:   "/service-records",
		query:  query,
	}, &records)
	return records, err
}

// Get возвращает сервисную запись по ID.
func (s *ServiceRecordsAPI) Get(ctx context.Context, id int) (*model.ServiceRecord, error) {
	var record model.ServiceRecord
	err := s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.get",
		method: http.MethodGet,
		path:   idPath("/service-records", id),
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create добавляет сервисную запись.
func (s *ServiceRecordsAPI) Create(ctx context.Context, in *model.ServiceRecordInput) (*model.ServiceRecord, error) {
	var record model.ServiceRecord
	err := s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.create",
		method: http.MethodPost,
		path:   "/service-records",
		body:   in,
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update изменяет сервисную запись.
func (s *ServiceRecordsAPI) Update(ctx context.Context, id int, in *model.ServiceRecordInput) (*model.ServiceRecord, error) {
	var record model.ServiceRecord
	err := s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.update",
		method: http.MethodPut,
		path:   idPath("/service-records", id),
		body:   in,
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete удаляет сервисную запись.
func (s *ServiceRecordsAPI) Delete(ctx context.Context, id int) error {
	return s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.delete",
		method: http.MethodDelete,
		path:   idPath("/service-records", id),
	}, nil)
}

// ListByVehicle возвращает сервисную историю автомобиля.
func (s *ServiceRecordsAPI) ListByVehicle(ctx context.Context, vehicleID int) ([]model.ServiceRecord, error) {
	var records []model.ServiceRecord
	err := s.c.do(ctx, request{
		group:  "service_records",
		op:     "service_records.by_vehicle",
		method: http.MethodGet,
		path:   idPath("/vehicles", vehicleID, "/service-records"),
	}, &records)
	return records, err
}

// DamageRecordsAPI — группа /damage-records (только администратор).
type DamageRecordsAPI struct {
	c *Client
}

// List возвращает записи о повреждениях с фильтром.
func (d *DamageRecordsAPI) List(ctx context.Context, filter model.DamageRecordFilter) ([]model.DamageRecord, error) {
	query := url.Values{}
	if filter.VehicleID > 0 {
		query.Set("vehicle_id", strconv.Itoa(filter.VehicleID))
	}
	if filter.RepairStatus != "" {
		query.Set("repair_status", filter.RepairStatus)
	}
	var records []model.DamageRecord
	err := d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.list",
		method: http.MethodGet,
		path:   "/damage-records",
		query:  query,
	}, &records)
	return records, err
}

// Get возвращает запись о повреждении по ID.
func (d *DamageRecordsAPI) Get(ctx context.Context, id int) (*model.DamageRecord, error) {
	var record model.DamageRecord
	err := d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.get",
		method: http.MethodGet,
		path:   idPath("/damage-records", id),
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create добавляет запись о повреждении.
func (d *DamageRecordsAPI) Create(ctx context.Context, in *model.DamageRecordInput) (*model.DamageRecord, error) {
	var record model.DamageRecord
	err := d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.create",
		method: http.MethodPost,
		path:   "/damage-records",
		body:   in,
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update изменяет запись о повреждении.
func (d *DamageRecordsAPI) Update(ctx context.Context, id int, in *model.DamageRecordInput) (*model.DamageRecord, error) {
	var record model.DamageRecord
	err := d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.update",
		method: http.MethodPut,
		path:   idPath("/damage-records", id),
		body:   in,
	}, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete удаляет запись о повреждении.
func (d *DamageRecordsAPI) Delete(ctx context.Context, id int) error {
	return d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.delete",
		method: http.MethodDelete,
		path:   idPath("/damage-records", id),
	}, nil)
}

// ListByVehicle возвращает повреждения автомобиля.
func (d *DamageRecordsAPI) ListByVehicle(ctx context.Context, vehicleID int) ([]model.DamageRecord, error) {
	var records []model.DamageRecord
	err := d.c.do(ctx, request{
		group:  "damage_records",
		op:     "damage_records.by_vehicle",
		method: http.MethodGet,
		path:   idPath("/vehicles", vehicleID, "/damage-records"),
	}, &records)
	return records, err
}
