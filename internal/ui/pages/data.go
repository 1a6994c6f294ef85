package pages

import (
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// LoginData — данные страницы входа.
type LoginData struct {
	Layout
	// IntranetID — введённое значение (сохраняется при ошибке)
	IntranetID string
	// Next — куда вернуть пользователя после входа
	Next string
}

// LoadingData — данные страницы ожидания проверки сессии.
type LoadingData struct {
	Layout
	// RefreshSeconds — интервал автоматического повтора
	RefreshSeconds int
}

// DashboardStats — сводка главной страницы.
type DashboardStats struct {
	ActiveVehicles       int
	TotalVehicles        int
	UpcomingReservations int
	TotalReservations    int
}

// DashboardData — данные главной страницы.
type DashboardData struct {
	Layout
	Stats        DashboardStats
	Reservations []model.Reservation
	Vehicles     []model.Vehicle
	// Loaded — данные получены (при ошибке сводка не показывается)
	Loaded bool
}

// CalendarDay — день недели с событиями.
type CalendarDay struct {
	Date    time.Time
	IsToday bool
	Events  []model.CalendarEvent
}

// CalendarData — данные недельного календаря.
type CalendarData struct {
	Layout
	Days      []CalendarDay
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	NextStart time.Time
	VehicleID int
	Vehicles  []model.Vehicle
	// VehiclesError — список автомобилей для фильтра не загружен
	VehiclesError string
}

// VehiclesData — данные списка автомобилей.
type VehiclesData struct {
	Layout
	Vehicles []model.Vehicle
	Status   string
	Statuses []string
}

// VehicleDetailData — данные карточки автомобиля.
type VehicleDetailData struct {
	Layout
	Vehicle *model.Vehicle
	// Availability — результат проверки (nil — проверка не выполнялась)
	Availability      *model.Availability
	AvailabilityError string
	StartInput        string
	EndInput          string
	ServiceRecords    []model.ServiceRecord
	DamageRecords     []model.DamageRecord
	// ServiceError, DamageError — история не загружена (только администратор)
	ServiceError string
	DamageError  string
}

// ReservationRow — строка таблицы резерваций.
type ReservationRow struct {
	model.Reservation
	// CanModify — показывать кнопку отмены
	CanModify bool
}

// ReservationsData — данные списка резерваций (свои или все для администратора).
type ReservationsData struct {
	Layout
	Rows      []ReservationRow
	Status    string
	Statuses  []string
	AdminView bool
}

// UsersData — данные страницы управления пользователями.
type UsersData struct {
	Layout
	Users []model.UserProfile
	Roles []model.Role
}

// ServiceRecordsData — данные страницы сервисных записей.
type ServiceRecordsData struct {
	Layout
	Records       []model.ServiceRecord
	VehicleID     int
	Vehicles      []model.Vehicle
	VehiclesError string
}

// DamageRecordsData — данные страницы записей о повреждениях.
type DamageRecordsData struct {
	Layout
	Records       []model.DamageRecord
	VehicleID     int
	RepairStatus  string
	Statuses      []string
	Vehicles      []model.Vehicle
	VehiclesError string
}
