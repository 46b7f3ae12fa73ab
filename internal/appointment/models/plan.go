package models

import (
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

// MaxSlotsPerDay bounds one bulk generation.
const MaxSlotsPerDay = 24 * 60

// SlotPlan describes a bulk generation over one day. Start and End are
// offsets from midnight UTC of Day.
type SlotPlan struct {
	Day        time.Time
	Start      time.Duration
	End        time.Duration
	Duration   time.Duration
	PriceCents int64
}

// Validate enforces end > start and a positive duration.
func (p SlotPlan) Validate() error {
	if p.End <= p.Start {
		return dErrors.New(dErrors.CodeInvariantViolation, "end_time must be after start_time")
	}
	if p.Duration <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "duration must be positive")
	}
	if p.PriceCents < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "price must be non-negative")
	}
	return nil
}

// Windows returns consecutive [start, end) windows while start+duration
// still fits before the end of the plan. A remainder shorter than the
// duration is dropped.
func (p SlotPlan) Windows() []id.Window {
	day := id.DayWindow(p.Day).From
	end := day.Add(p.End)
	var out []id.Window
	for cur := day.Add(p.Start); !cur.Add(p.Duration).After(end); cur = cur.Add(p.Duration) {
		out = append(out, id.Window{From: cur, To: cur.Add(p.Duration)})
		if len(out) == MaxSlotsPerDay {
			break
		}
	}
	return out
}

// Slots materializes the plan as available appointments. newID supplies
// identifiers so tests can make them deterministic.
func (p SlotPlan) Slots(tenantID id.TenantID, now time.Time, newID func() id.AppointmentID) ([]*Appointment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	windows := p.Windows()
	out := make([]*Appointment, 0, len(windows))
	for _, w := range windows {
		out = append(out, &Appointment{
			ID:         newID(),
			TenantID:   tenantID,
			StartAt:    w.From,
			EndAt:      w.To,
			Status:     StatusAvailable,
			PriceCents: p.PriceCents,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return out, nil
}
