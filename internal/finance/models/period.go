package models

import (
	"time"

	id "peegflow/pkg/domain"
)

// Period is the reporting window of a summary and its display label.
type Period struct {
	Label  string
	Window id.Window
}

// PeriodQuery holds the raw summary selectors. date_from/date_to wins over
// day, which wins over month. With nothing set the month of now is used.
type PeriodQuery struct {
	DateFrom string
	DateTo   string
	Day      string
	Month    string
}

func (q PeriodQuery) Resolve(now time.Time) (Period, error) {
	switch {
	case q.DateFrom != "" && q.DateTo != "":
		from, err := id.ParseDate(q.DateFrom)
		if err != nil {
			return Period{}, err
		}
		to, err := id.ParseDate(q.DateTo)
		if err != nil {
			return Period{}, err
		}
		w, err := id.DaysWindow(from, to)
		if err != nil {
			return Period{}, err
		}
		return Period{Label: q.DateFrom + " → " + q.DateTo, Window: w}, nil
	case q.Day != "":
		day, err := id.ParseDate(q.Day)
		if err != nil {
			return Period{}, err
		}
		return Period{Label: q.Day, Window: id.DayWindow(day)}, nil
	default:
		month := now
		if q.Month != "" {
			m, err := id.ParseMonth(q.Month)
			if err != nil {
				return Period{}, err
			}
			month = m
		}
		return Period{Label: month.Format(id.MonthLayout), Window: id.MonthWindow(month)}, nil
	}
}
