// Пакет pages — HTML-страницы Web Module на templ.
// Исходники страниц — *.templ, Go-код (*_templ.go) генерируется
// командой templ generate и хранится в репозитории.
// Обработчики рендерят страницы единообразно: pages.X(data).Render(ctx, w).
package pages

//go:generate templ generate

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
)

// Pages — набор страниц с доступом к переводам.
type Pages struct {
	bundle *i18n.Bundle
}

// New создаёт набор страниц.
func New(bundle *i18n.Bundle) *Pages {
	return &Pages{bundle: bundle}
}

func (p *Pages) t(lang, key string) string {
	return p.bundle.Translate(lang, key)
}

func (p *Pages) tf(lang, key string, args ...any) string {
	return p.bundle.Translatef(lang, key, args...)
}

// statusLabel — локализованное название статуса (status.Active, ...).
func (p *Pages) statusLabel(lang, status string) string {
	return p.bundle.Translate(lang, "status."+status)
}

// dayName — название дня недели (day.0 — воскресенье).
func (p *Pages) dayName(lang string, d time.Time) string {
	return p.bundle.Translate(lang, fmt.Sprintf("day.%d", int(d.Weekday())))
}

func (p *Pages) reservationsTitle(data ReservationsData) string {
	if data.AdminView {
		return p.t(data.Lang, "reservations.admin_title")
	}
	return p.t(data.Lang, "reservations.title")
}

// Layout — общие данные страниц с навигацией.
type Layout struct {
	// Lang — язык интерфейса (cs, en)
	Lang string
	// User — текущий пользователь (nil на странице входа)
	User *model.UserProfile
	// IsAdmin — показывать блок администрирования
	IsAdmin bool
	// CurrentPath — путь запроса для подсветки пункта меню
	CurrentPath string
	// Flash — сообщение об успешном действии
	Flash string
	// Error — сообщение об ошибке
	Error string
}

// NavItem — пункт бокового меню.
type NavItem struct {
	Path string
	Key  string
}

// EmployeeNav — пункты меню для всех пользователей.
var EmployeeNav = []NavItem{
	{Path: "/", Key: "nav.dashboard"},
	{Path: "/calendar", Key: "nav.calendar"},
	{Path: "/vehicles", Key: "nav.vehicles"},
	{Path: "/my-reservations", Key: "nav.my_reservations"},
}

// AdminNav — пункты меню администратора автопарка.
var AdminNav = []NavItem{
	{Path: "/admin/reservations", Key: "nav.admin_reservations"},
	{Path: "/admin/users", Key: "nav.users"},
	{Path: "/admin/service-records", Key: "nav.service_records"},
	{Path: "/admin/damage-records", Key: "nav.damage_records"},
}

// Active сообщает, соответствует ли пункт меню текущему пути.
func (l Layout) Active(path string) bool {
	if path == "/" {
		return l.CurrentPath == "/"
	}
	return l.CurrentPath == path || len(l.CurrentPath) > len(path) &&
		l.CurrentPath[:len(path)] == path && l.CurrentPath[len(path)] == '/'
}

// vehicleURL — карточка автомобиля.
func vehicleURL(id int) templ.SafeURL {
	return templ.URL("/vehicles/" + strconv.Itoa(id))
}

func archiveURL(id int) templ.SafeURL {
	return templ.URL("/vehicles/" + strconv.Itoa(id) + "/archive")
}

func cancelURL(id int) templ.SafeURL {
	return templ.URL("/reservations/" + strconv.Itoa(id) + "/cancel")
}

func userActionURL(id int, action string) templ.SafeURL {
	return templ.URL("/admin/users/" + strconv.Itoa(id) + "/" + action)
}

func deleteURL(base string, id int) templ.SafeURL {
	return templ.URL(base + "/" + strconv.Itoa(id) + "/delete")
}

// calendarURL — неделя календаря; пустой start — текущая неделя.
func calendarURL(start string, vehicleID int) templ.SafeURL {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if vehicleID > 0 {
		q.Set("vehicle_id", strconv.Itoa(vehicleID))
	}
	if len(q) == 0 {
		return templ.URL("/calendar")
	}
	return templ.URL("/calendar?" + q.Encode())
}

func reservationsPath(adminView bool) templ.SafeURL {
	if adminView {
		return templ.URL("/admin/reservations")
	}
	return templ.URL("/my-reservations")
}

// vehicleLabel — «Škoda Octavia (1AB 2345)» для выпадающих списков.
func vehicleLabel(v model.Vehicle) string {
	return fmt.Sprintf("%s %s (%s)", v.Make, v.Model, v.LicensePlate)
}

// eventDetails — цель поездки и место назначения события календаря.
func eventDetails(ev model.CalendarEvent) string {
	if d := deref(ev.Destination); d != "" {
		return ev.Purpose + " · " + d
	}
	return ev.Purpose
}
