// calendar.go — недельный календарь резерваций.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
)

const daysInWeek = 7

// CalendarHandler — обработчик страницы календаря.
type CalendarHandler struct {
	base
	now func() time.Time
}

// NewCalendarHandler создаёт новый CalendarHandler.
func NewCalendarHandler(deps Deps, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		base: newBase(deps, "ui.calendar", logger),
		now:  time.Now,
	}
}

// HandleCalendar — GET /calendar?start=YYYY-MM-DD&vehicle_id=N.
// Без start показывается текущая неделя с понедельника.
func (h *CalendarHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	start := weekStart(now)
	if s := r.URL.Query().Get("start"); s != "" {
		if parsed, err := time.ParseInLocation(pages.ISODateLayout, s, now.Location()); err == nil {
			start = parsed
		}
	}
	end := start.AddDate(0, 0, daysInWeek-1)
	vehicleID := queryInt(r, "vehicle_id")

	data := pages.CalendarData{
		Layout:    h.layout(w, r),
		Start:     start,
		End:       end,
		PrevStart: start.AddDate(0, 0, -daysInWeek),
		NextStart: start.AddDate(0, 0, daysInWeek),
		VehicleID: vehicleID,
	}

	// backend сравнивает с полуночью end_date, поэтому запрашиваем
	// до понедельника следующей недели
	events, err := h.Client.Reservations.Calendar(ctx, start, data.NextStart, vehicleID)
	if err != nil {
		msg, done := h.backendError(w, r, err, "calendar.load_error")
		if done {
			return
		}
		data.Error = msg
	}

	vehicles, err := h.Client.Vehicles.List(ctx, "")
	if err != nil {
		msg, done := h.backendError(w, r, err, "vehicles.load_error")
		if done {
			return
		}
		data.VehiclesError = msg
	}
	data.Vehicles = vehicles
	data.Days = groupByDay(events, start, now)

	h.render(w, r, http.StatusOK, "calendar", h.Pages.Calendar(data))
}

// weekStart — понедельник недели t, 00:00 в зоне t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// groupByDay раскладывает события по дням недели.
// Событие попадает в каждый день, с которым пересекается.
func groupByDay(events []model.CalendarEvent, start, now time.Time) []pages.CalendarDay {
	todayY, todayM, todayD := now.Date()
	days := make([]pages.CalendarDay, daysInWeek)
	for i := range days {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		y, m, d := dayStart.Date()

		day := pages.CalendarDay{
			Date:    dayStart,
			IsToday: y == todayY && m == todayM && d == todayD,
		}
		for _, ev := range events {
			evEnd := ev.End.Time
			if evEnd.IsZero() {
				evEnd = ev.Start.Time
			}
			if ev.Start.Before(dayEnd) && (evEnd.After(dayStart) || !ev.Start.Before(dayStart)) {
				day.Events = append(day.Events, ev)
			}
		}
		days[i] = day
	}
	return days
}
