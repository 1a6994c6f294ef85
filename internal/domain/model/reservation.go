package model

import "time"

// Статусы резервации.
const (
	ReservationStatusConfirmed = "Confirmed"
	ReservationStatusCancelled = "Cancelled"
	ReservationStatusCompleted = "Completed"
	ReservationStatusPending   = "Pending"
)

// Reservation — резервация автомобиля.
type Reservation struct {
	ReservationID      int          `json:"reservation_id"`
	VehicleID          int          `json:"vehicle_id"`
	VehicleInfo        *VehicleInfo `json:"vehicle_info,omitempty"`
	UserID             int          `json:"user_id"`
	UserInfo           *UserInfo    `json:"user_info,omitempty"`
	StartTime          Time         `json:"start_time"`
	EndTime            Time         `json:"end_time"`
	Purpose            string       `json:"purpose"`
	Destination        *string      `json:"destination,omitempty"`
	NumberOfPassengers *int         `json:"number_of_passengers,omitempty"`
	Status             string       `json:"status"`
	UserNotes          *string      `json:"user_notes,omitempty"`
	AdminNotes         *string      `json:"admin_notes,omitempty"`
	CreatedAt          Time         `json:"created_at"`
	UpdatedAt          Time         `json:"updated_at"`
}

// UserInfo — краткие данные владельца резервации.
type UserInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// IsUpcoming сообщает, что резервация подтверждена и ещё не закончилась.
func (r *Reservation) IsUpcoming(now time.Time) bool {
	return r.Status == ReservationStatusConfirmed && r.EndTime.After(now)
}

// ReservationInput — тело запроса создания/изменения резервации.
// Пустые поля не отправляются (частичное обновление на backend).
type ReservationInput struct {
	VehicleID          int     `json:"vehicle_id,omitempty"`
	UserID             int     `json:"user_id,omitempty"`
	StartTime          *Time   `json:"start_time,omitempty"`
	EndTime            *Time   `json:"end_time,omitempty"`
	Purpose            string  `json:"purpose,omitempty"`
	Destination        *string `json:"destination,omitempty"`
	NumberOfPassengers *int    `json:"number_of_passengers,omitempty"`
	UserNotes          *string `json:"user_notes,omitempty"`
	AdminNotes         *string `json:"admin_notes,omitempty"`
	Status             string  `json:"status,omitempty"`
}

// ReservationFilter — параметры списка резерваций.
type ReservationFilter struct {
	VehicleID int
	Status    string
	// StartDate, EndDate — границы в формате YYYY-MM-DD
	StartDate string
	EndDate   string
}

// CalendarEvent — событие календаря (ответ GET /calendar).
type CalendarEvent struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Start       Time    `json:"start"`
	End         Time    `json:"end"`
	VehicleID   int     `json:"vehicle_id"`
	UserID      int     `json:"user_id"`
	Purpose     string  `json:"purpose"`
	Destination *string `json:"destination,omitempty"`
}
