// Package dateutil — утилиты для работы с датами слотов.
//
// Внутренняя нумерация дней недели: 0 = понедельник … 6 = воскресенье.
// Преобразование в нумерацию стандартной библиотеки (0 = воскресенье)
// выполняется только здесь и нигде больше.
package dateutil

import (
	"fmt"
	"math"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ToTimeWeekday converts the house day-of-week (0=Mon…6=Sun) into time.Weekday.
func ToTimeWeekday(day int) time.Weekday {
	if day == 6 {
		return time.Sunday
	}
	return time.Weekday(day + 1)
}

// FromTimeWeekday converts time.Weekday back into the house convention.
func FromTimeWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

// Midnight truncates t to the start of its local calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextWeekday возвращает дату следующего дня недели day строго после fromDate.
// Если fromDate сама приходится на этот день недели, берётся дата через неделю —
// та же дата не возвращается никогда.
func NextWeekday(day int, fromDate time.Time) time.Time {
	from := Midnight(fromDate)
	target := ToTimeWeekday(day)
	delta := (int(target) - int(from.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return from.AddDate(0, 0, delta)
}

// FormatDate renders the local calendar date as YYYY-MM-DD. The local fields
// are used directly, never a UTC conversion, so the day cannot shift.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses YYYY-MM-DD into a local midnight instant.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// ParseClock validates an HH:MM string and returns its components.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// WeekStart returns midnight of the Sunday opening the week containing t.
// Sunday-based weeks are used only for quota bucketing.
func WeekStart(t time.Time) time.Time {
	d := Midnight(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeekEnd returns the last instant of the Saturday closing the week containing t.
func WeekEnd(t time.Time) time.Time {
	end := WeekStart(t).AddDate(0, 0, 6)
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), end.Location())
}

// InWeek reports whether the calendar date of t falls inside the inclusive
// [weekStart, weekEnd] range.
func InWeek(t, weekStart, weekEnd time.Time) bool {
	d := Midnight(t)
	return !d.Before(weekStart) && !d.After(weekEnd)
}

// DaysUntil возвращает ceil((date - today) / сутки) для дат, усечённых до полуночи.
func DaysUntil(today, date time.Time) int {
	return int(math.Ceil(Midnight(date).Sub(Midnight(today)).Hours() / 24))
}

// SlotStart combines a slot's date and HH:MM start time into a local instant.
func SlotStart(date, timeFrom string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(timeFrom)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location()), nil
}
