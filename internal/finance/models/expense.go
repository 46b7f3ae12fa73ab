package models

import (
	"math"
	"strings"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

const (
	MaxTitleLength = 200
	MaxNotesLength = 2000
)

// Expense is money spent by the practice. Amounts are kept in cents.
type Expense struct {
	ID          id.ExpenseID
	TenantID    id.TenantID
	Title       string
	AmountCents int64
	SpentAt     time.Time
	Notes       string
	CreatedAt   time.Time
}

func NewExpense(expenseID id.ExpenseID, tenantID id.TenantID, title string, amountCents int64, spentAt time.Time, notes string, now time.Time) (*Expense, error) {
	title = strings.TrimSpace(title)
	notes = strings.TrimSpace(notes)
	switch {
	case tenantID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense must belong to a tenant")
	case title == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense title cannot be empty")
	case len(title) > MaxTitleLength:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense title is too long")
	case len(notes) > MaxNotesLength:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense notes are too long")
	case amountCents < 0:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense amount cannot be negative")
	case spentAt.IsZero():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense date is required")
	}
	return &Expense{
		ID:          expenseID,
		TenantID:    tenantID,
		Title:       title,
		AmountCents: amountCents,
		SpentAt:     spentAt.UTC(),
		Notes:       notes,
		CreatedAt:   now,
	}, nil
}

// Amount is the expense in currency units.
func (e *Expense) Amount() float64 {
	return CentsToAmount(e.AmountCents)
}

func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

// AmountToCents converts a wire amount to cents, rounding half away from
// zero.
func AmountToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "amount must be a non-negative number")
	}
	return int64(math.Round(amount * 100)), nil
}
