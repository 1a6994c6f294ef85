package pages

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// Форматы отображения дат.
const (
	DateLayout     = "02.01.2006"
	DateTimeLayout = "02.01.2006 15:04"
	TimeLayout     = "15:04"
	// InputDateTimeLayout — значение поля <input type="datetime-local">
	InputDateTimeLayout = "2006-01-02T15:04"
	// ISODateLayout — параметр ?start= календаря
	ISODateLayout = "2006-01-02"
)

// toTime приводит значения дат моделей к time.Time.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case model.Time:
		return t.Time, !t.IsZero()
	case *model.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.Time, !t.IsZero()
	case model.Date:
		return t.Time.Time, !t.IsZero()
	case *model.Date:
		if t == nil {
			return time.Time{}, false
		}
		return t.Time.Time, !t.IsZero()
	default:
		return time.Time{}, false
	}
}

func formatWith(layout string) func(v any) string {
	return func(v any) string {
		t, ok := toTime(v)
		if !ok {
			return ""
		}
		return t.Format(layout)
	}
}

// FormatDate — dd.MM.yyyy; пустая строка для нулевой даты.
func FormatDate(v any) string { return formatWith(DateLayout)(v) }

// FormatDateTime — dd.MM.yyyy HH:mm.
func FormatDateTime(v any) string { return formatWith(DateTimeLayout)(v) }

// FormatTime — HH:mm.
func FormatTime(v any) string { return formatWith(TimeLayout)(v) }

// StatusClass возвращает CSS-класс бейджа для статуса автомобиля,
// резервации или ремонта.
func StatusClass(status string) string {
	switch status {
	case model.VehicleStatusActive, model.ReservationStatusConfirmed, model.RepairStatusRepaired:
		return "badge badge-success"
	case model.VehicleStatusInService, model.ReservationStatusPending:
		return "badge badge-warning"
	case model.VehicleStatusDeactivated, model.ReservationStatusCancelled, model.RepairStatusIrreparable:
		return "badge badge-danger"
	case model.VehicleStatusArchived, model.ReservationStatusCompleted:
		return "badge badge-muted"
	default:
		return "badge"
	}
}

var printerTags = map[string]language.Tag{
	"cs": language.Czech,
	"en": language.English,
}

// FormatMoney форматирует сумму в кронах по правилам языка.
// nil — пустая строка.
func FormatMoney(lang string, v *float64) string {
	if v == nil {
		return ""
	}
	tag, ok := printerTags[lang]
	if !ok {
		tag = language.Czech
	}
	return message.NewPrinter(tag).Sprintf("%.2f Kč", *v)
}

// FormatNumber форматирует целое число с разделителями разрядов.
func FormatNumber(lang string, v *int) string {
	if v == nil {
		return ""
	}
	tag, ok := printerTags[lang]
	if !ok {
		tag = language.Czech
	}
	return message.NewPrinter(tag).Sprintf("%d", *v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
