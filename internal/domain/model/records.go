package model

// Статусы ремонта повреждения.
const (
	RepairStatusPending     = "Pending"
	RepairStatusRepaired    = "Repaired"
	RepairStatusIrreparable = "Irreparable"
)

// ServiceRecord — запись о сервисном обслуживании.
type ServiceRecord struct {
	ServiceID   int          `json:"service_id"`
	VehicleID   int          `json:"vehicle_id"`
	VehicleInfo *VehicleInfo `json:"vehicle_info,omitempty"`
	ServiceDate Date         `json:"service_date"`
	ServiceType string       `json:"service_type"`
	Description *string      `json:"description,omitempty"`
	Cost        *float64     `json:"cost,omitempty"`
	PerformedBy *string      `json:"performed_by,omitempty"`
	CreatedAt   Time         `json:"created_at"`
	UpdatedAt   Time         `json:"updated_at"`
}

// ServiceRecordInput — тело запроса создания/изменения сервисной записи.
type ServiceRecordInput struct {
	VehicleID   int      `json:"vehicle_id,omitempty"`
	ServiceDate *Date    `json:"service_date,omitempty"`
	ServiceType string   `json:"service_type,omitempty"`
	Description *string  `json:"description,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	PerformedBy *string  `json:"performed_by,omitempty"`
}

// DamageRecord — запись о повреждении автомобиля.
type DamageRecord struct {
	DamageID      int          `json:"damage_id"`
	VehicleID     int          `json:"vehicle_id"`
	VehicleInfo   *VehicleInfo `json:"vehicle_info,omitempty"`
	DateOfDamage  Date         `json:"date_of_damage"`
	Description   string       `json:"description"`
	EstimatedCost *float64     `json:"estimated_cost,omitempty"`
	ActualCost    *float64     `json:"actual_cost,omitempty"`
	RepairStatus  string       `json:"repair_status"`
	Photos        []string     `json:"photos"`
	CreatedAt     Time         `json:"created_at"`
	UpdatedAt     Time         `json:"updated_at"`
}

// DamageRecordInput — тело запроса создания/изменения записи о повреждении.
type DamageRecordInput struct {
	VehicleID     int      `json:"vehicle_id,omitempty"`
	DateOfDamage  *Date    `json:"date_of_damage,omitempty"`
	Description   string   `json:"description,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
	ActualCost    *float64 `json:"actual_cost,omitempty"`
	RepairStatus  string   `json:"repair_status,omitempty"`
}

// DamageRecordFilter — параметры списка записей о повреждениях.
type DamageRecordFilter struct {
	VehicleID    int
	RepairStatus string
}
