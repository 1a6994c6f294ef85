package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Форматы времени, которые отдаёт backend.
// isoformat() без зоны, с зоной и date-only для дат сервиса/повреждений.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Time — метка времени backend с толерантным JSON-разбором.
// Нулевое значение соответствует null/пустой строке.
type Time struct {
	time.Time
}

// ParseTime разбирает строку в одном из форматов backend.
func ParseTime(s string) (Time, error) {
	if s == "" {
		return Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Time{Time: t}, nil
		}
	}
	return Time{}, fmt.Errorf("некорректный формат времени: %q", s)
}

// UnmarshalJSON принимает строку ISO-8601, date-only или null.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("время должно быть строкой: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON отдаёт время в формате, который принимает backend
// (datetime.fromisoformat), или null для нулевого значения.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// Date — календарная дата (YYYY-MM-DD) для полей без времени.
type Date struct {
	Time
}

// MarshalJSON отдаёт дату в формате YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// UnmarshalJSON принимает те же форматы, что и Time.
func (d *Date) UnmarshalJSON(data []byte) error {
	return d.Time.UnmarshalJSON(data)
}
