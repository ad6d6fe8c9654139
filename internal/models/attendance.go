package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownStatus = errors.New("unknown attendance status")

type Status string

const (
	OnTime           Status = "On Time"
	Late             Status = "Late"
	AbsentInformed   Status = "Absent Informed"
	AbsentUninformed Status = "Absent Uninformed"
)

// Statuses — все допустимые статусы в порядке отображения.
var Statuses = []Status{OnTime, Late, AbsentInformed, AbsentUninformed}

// ParseStatus нормализует ввод: регистр, дефисы и подчёркивания не важны
// ("absent-informed", "Absent_Uninformed"). Всё остальное — ошибка.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	switch norm {
	case "on time":
		return OnTime, nil
	case "late":
		return Late, nil
	case "absent informed":
		return AbsentInformed, nil
	case "absent uninformed":
		return AbsentUninformed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Valid() bool {
	switch s {
	case OnTime, Late, AbsentInformed, AbsentUninformed:
		return true
	}
	return false
}

// DateLayout — формат даты тренировки на входе и выходе.
const DateLayout = "2006-01-02"

// Session — одна тренировка; дата уникальна.
type Session struct {
	ID        int64     `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	IsOnline  bool      `db:"is_online" json:"is_online"`
	IsSettled bool      `db:"is_settled" json:"is_settled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DayKey — дата тренировки без времени, для сравнения и сортировки.
func (s Session) DayKey() string { return s.Date.Format(DateLayout) }

// TruncateDay приводит момент времени к полуночи UTC той же календарной даты.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату в формате 2006-01-02.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t, nil
}

type AttendanceRecord struct {
	ID        int64  `db:"id" json:"id"`
	SessionID int64  `db:"session_id" json:"session_id"`
	PlayerID  int64  `db:"player_id" json:"player_id"`
	Status    Status `db:"status" json:"status"`
}

// Mark — отметка игрока в форме сдачи посещаемости за день.
type Mark struct {
	PlayerID int64  `json:"player_id"`
	Status   Status `json:"status"`
}
