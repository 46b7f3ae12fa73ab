package models

import (
	"time"

	apptmodels "peegflow/internal/appointment/models"
)

// DailyIncome is the income of done appointments starting on Day.
type DailyIncome struct {
	Day         time.Time
	IncomeCents int64
}

// Summary is the cash position of a practice over a period.
type Summary struct {
	Period       Period
	IncomeCents  int64
	ExpenseCents int64
	StatusCounts map[apptmodels.Status]int
	Daily        []DailyIncome
}

// CashCents is income minus expenses.
func (s *Summary) CashCents() int64 {
	return s.IncomeCents - s.ExpenseCents
}

// Summarize folds the period's appointments and expenses. Only done
// appointments count as income. The daily series is produced only when
// the window spans more than one calendar day.
func Summarize(period Period, appts []*apptmodels.Appointment, expenses []*Expense) *Summary {
	s := &Summary{
		Period: period,
		StatusCounts: map[apptmodels.Status]int{
			apptmodels.StatusAvailable: 0,
			apptmodels.StatusBooked:    0,
			apptmodels.StatusDone:      0,
			apptmodels.StatusCanceled:  0,
			apptmodels.StatusNoShow:    0,
		},
	}

	from := dayOf(period.Window.From)
	last := dayOf(period.Window.To)
	days := int(last.Sub(from).Hours()/24) + 1
	var daily []int64
	if days > 1 {
		daily = make([]int64, days)
	}

	for _, a := range appts {
		if !period.Window.Contains(a.StartAt) {
			continue
		}
		s.StatusCounts[a.Status]++
		if a.Status != apptmodels.StatusDone {
			continue
		}
		s.IncomeCents += a.PriceCents
		if daily != nil {
			daily[int(dayOf(a.StartAt).Sub(from).Hours()/24)] += a.PriceCents
		}
	}
	for _, e := range expenses {
		if period.Window.Contains(e.SpentAt) {
			s.ExpenseCents += e.AmountCents
		}
	}

	s.Daily = make([]DailyIncome, 0, len(daily))
	for i, cents := range daily {
		s.Daily = append(s.Daily, DailyIncome{Day: from.AddDate(0, 0, i), IncomeCents: cents})
	}
	return s
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
