package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptmodels "peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestResolvePeriod(t *testing.T) {
	t.Run("range wins over day and month", func(t *testing.T) {
		p, err := PeriodQuery{DateFrom: "2025-06-01", DateTo: "2025-06-03", Day: "2025-01-01", Month: "2024-01"}.Resolve(now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), p.Window.From)
		assert.Equal(t, time.Date(2025, 6, 3, 23, 59, 59, 0, time.UTC), p.Window.To)
	})

	t.Run("a lone date_from falls through to the month", func(t *testing.T) {
		p, err := PeriodQuery{DateFrom: "2025-06-01"}.Resolve(now)
		require.NoError(t, err)
		assert.Equal(t, "2025-06", p.Label)
	})

	t.Run("day", func(t *testing.T) {
		p, err := PeriodQuery{Day: "2025-06-02"}.Resolve(now)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", p.Label)
		assert.True(t, p.Window.Contains(time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)))
		assert.False(t, p.Window.Contains(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("defaults to the current month", func(t *testing.T) {
		p, err := PeriodQuery{}.Resolve(now)
		require.NoError(t, err)
		assert.Equal(t, "2025-06", p.Label)
		assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC), p.Window.To)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, q := range []PeriodQuery{
			{Month: "06/2025"},
			{Day: "2025-13-01"},
			{DateFrom: "2025-06-05", DateTo: "2025-06-01"},
		} {
			_, err := q.Resolve(now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "%+v", q)
		}
	})
}

func appt(day, hour int, status apptmodels.Status, cents int64) *apptmodels.Appointment {
	start := time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
	return &apptmodels.Appointment{StartAt: start, EndAt: start.Add(time.Hour), Status: status, PriceCents: cents}
}

func TestSummarize(t *testing.T) {
	period, err := PeriodQuery{DateFrom: "2025-06-01", DateTo: "2025-06-03"}.Resolve(now)
	require.NoError(t, err)
	tenantID := id.TenantID(uuid.New())
	rent, err := NewExpense(id.ExpenseID(uuid.New()), tenantID, "Aluguel", 50000, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), "", now)
	require.NoError(t, err)
	outside, err := NewExpense(id.ExpenseID(uuid.New()), tenantID, "Luz", 9999, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "", now)
	require.NoError(t, err)

	s := Summarize(period, []*apptmodels.Appointment{
		appt(1, 9, apptmodels.StatusDone, 15000),
		appt(1, 10, apptmodels.StatusDone, 15000),
		appt(3, 9, apptmodels.StatusDone, 20000),
		appt(2, 9, apptmodels.StatusBooked, 15000),
		appt(2, 10, apptmodels.StatusNoShow, 15000),
		appt(2, 11, apptmodels.StatusCanceled, 15000),
		appt(3, 10, apptmodels.StatusAvailable, 15000),
		appt(9, 10, apptmodels.StatusDone, 99999),
	}, []*Expense{rent, outside})

	assert.Equal(t, int64(50000), s.IncomeCents)
	assert.Equal(t, int64(50000), s.ExpenseCents)
	assert.Equal(t, int64(0), s.CashCents())
	assert.Equal(t, 3, s.StatusCounts[apptmodels.StatusDone])
	assert.Equal(t, 1, s.StatusCounts[apptmodels.StatusBooked])
	assert.Equal(t, 1, s.StatusCounts[apptmodels.StatusNoShow])
	assert.Equal(t, 1, s.StatusCounts[apptmodels.StatusCanceled])
	assert.Equal(t, 1, s.StatusCounts[apptmodels.StatusAvailable])

	require.Len(t, s.Daily, 3)
	assert.Equal(t, int64(30000), s.Daily[0].IncomeCents)
	assert.Equal(t, int64(0), s.Daily[1].IncomeCents)
	assert.Equal(t, int64(20000), s.Daily[2].IncomeCents)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), s.Daily[2].Day)
}

func TestSummarizeSingleDayHasNoSeries(t *testing.T) {
	period, err := PeriodQuery{Day: "2025-06-01"}.Resolve(now)
	require.NoError(t, err)
	s := Summarize(period, []*apptmodels.Appointment{appt(1, 9, apptmodels.StatusDone, 15000)}, nil)
	assert.Equal(t, int64(15000), s.IncomeCents)
	assert.Empty(t, s.Daily)
	assert.Equal(t, 0, s.StatusCounts[apptmodels.StatusBooked], "every status is reported")
	assert.Len(t, s.StatusCounts, 5)
}

func TestNewExpense(t *testing.T) {
	tenantID := id.TenantID(uuid.New())
	e, err := NewExpense(id.ExpenseID(uuid.New()), tenantID, "  Material  ", 1234, now, " nota ", now)
	require.NoError(t, err)
	assert.Equal(t, "Material", e.Title)
	assert.Equal(t, "nota", e.Notes)
	assert.Equal(t, 12.34, e.Amount())

	_, err = NewExpense(id.ExpenseID(uuid.New()), tenantID, " ", 1, now, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewExpense(id.ExpenseID(uuid.New()), tenantID, "x", -1, now, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	_, err = NewExpense(id.ExpenseID(uuid.New()), tenantID, "x", 1, time.Time{}, "", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}
