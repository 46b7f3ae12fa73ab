package domain

import (
	"time"

	dErrors "peegflow/pkg/domain-errors"
)

// Wire layouts for calendar values.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	MonthLayout = "2006-01"
)

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

// ParseClock parses an HH:MM time of day into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid time, expected HH:MM")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ParseMonth parses YYYY-MM and returns the first instant of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "invalid month, expected YYYY-MM")
	}
	return t, nil
}

// Window is a closed interval [From, To] in time.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// DayWindow covers a single calendar day, 00:00:00 through 23:59:59.
func DayWindow(day time.Time) Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: start.AddDate(0, 0, 1).Add(-time.Second)}
}

// DaysWindow covers the days from..to inclusive.
func DaysWindow(from, to time.Time) (Window, error) {
	if to.Before(from) {
		return Window{}, dErrors.New(dErrors.CodeInvalidInput, "date_to must not be before date_from")
	}
	return Window{From: DayWindow(from).From, To: DayWindow(to).To}, nil
}

// MonthWindow covers the whole calendar month containing t.
func MonthWindow(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: start.AddDate(0, 1, 0).Add(-time.Second)}
}
