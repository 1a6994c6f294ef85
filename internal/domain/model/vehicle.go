package model

// Статусы автомобиля.
const (
	VehicleStatusActive      = "Active"
	VehicleStatusInService   = "In Service"
	VehicleStatusDeactivated = "Deactivated"
	VehicleStatusArchived    = "Archived"
)

// VehicleStatusAll — значение фильтра status для списка без ограничения по статусу.
const VehicleStatusAll = "all"

// Vehicle — автомобиль автопарка.
type Vehicle struct {
	VehicleID                     int     `json:"vehicle_id"`
	Make                          string  `json:"make"`
	Model                         string  `json:"model"`
	LicensePlate                  string  `json:"license_plate"`
	Color                         *string `json:"color,omitempty"`
	FuelType                      string  `json:"fuel_type"`
	SeatingCapacity               int     `json:"seating_capacity"`
	TransmissionType              string  `json:"transmission_type"`
	Status                        string  `json:"status"`
	Description                   *string `json:"description,omitempty"`
	OdometerReading               *int    `json:"odometer_reading,omitempty"`
	LastServiceDate               Date    `json:"last_service_date"`
	NextServiceDate               Date    `json:"next_service_date"`
	TechnicalInspectionExpiryDate Date    `json:"technical_inspection_expiry_date"`
	HighwayVignetteExpiryDate     Date    `json:"highway_vignette_expiry_date"`
	EmissionInspectionExpiryDate  Date    `json:"emission_inspection_expiry_date"`
	EntryPermissionsNotes         *string `json:"entry_permissions_notes,omitempty"`
	CreatedAt                     Time    `json:"created_at"`
	UpdatedAt                     Time    `json:"updated_at"`
}

// IsActive сообщает, доступен ли автомобиль для резервации.
func (v *Vehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}

// VehicleInfo — краткие данные автомобиля, вложенные в резервации и записи.
type VehicleInfo struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	LicensePlate string `json:"license_plate"`
}

// Availability — ответ GET /vehicles/{id}/availability.
type Availability struct {
	VehicleID int    `json:"vehicle_id"`
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// VehicleInput — тело запроса создания/изменения автомобиля.
// Пустые поля не отправляются (частичное обновление на backend).
type VehicleInput struct {
	Make                          string  `json:"make,omitempty"`
	Model                         string  `json:"model,omitempty"`
	LicensePlate                  string  `json:"license_plate,omitempty"`
	Color                         *string `json:"color,omitempty"`
	FuelType                      string  `json:"fuel_type,omitempty"`
	SeatingCapacity               int     `json:"seating_capacity,omitempty"`
	TransmissionType              string  `json:"transmission_type,omitempty"`
	Status                        string  `json:"status,omitempty"`
	Description                   *string `json:"description,omitempty"`
	OdometerReading               *int    `json:"odometer_reading,omitempty"`
	LastServiceDate               *Date   `json:"last_service_date,omitempty"`
	NextServiceDate               *Date   `json:"next_service_date,omitempty"`
	TechnicalInspectionExpiryDate *Date   `json:"technical_inspection_expiry_date,omitempty"`
	HighwayVignetteExpiryDate     *Date   `json:"highway_vignette_expiry_date,omitempty"`
	EmissionInspectionExpiryDate  *Date   `json:"emission_inspection_expiry_date,omitempty"`
	EntryPermissionsNotes         *string `json:"entry_permissions_notes,omitempty"`
}
