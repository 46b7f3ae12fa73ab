package handler

import (
	"strings"

	"peegflow/internal/finance/models"
	"peegflow/internal/finance/service"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/validation"
)

// CreateExpenseRequest accepts spent_at as a date or a full timestamp.
type CreateExpenseRequest struct {
	Title   string  `json:"title" validate:"required,notblank,max=200"`
	Amount  float64 `json:"amount" validate:"gte=0"`
	SpentAt string  `json:"spent_at" validate:"required"`
	Notes   string  `json:"notes" validate:"max=2000"`
}

func (r *CreateExpenseRequest) Normalize() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
	r.SpentAt = strings.TrimSpace(r.SpentAt)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreateExpenseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CreateExpenseRequest) command() (service.CreateExpenseCommand, error) {
	spentAt, err := httputil.ParseTimestamp(r.SpentAt)
	if err != nil {
		return service.CreateExpenseCommand{}, err
	}
	cents, err := models.AmountToCents(r.Amount)
	if err != nil {
		return service.CreateExpenseCommand{}, err
	}
	return service.CreateExpenseCommand{Title: r.Title, AmountCents: cents, SpentAt: spentAt, Notes: r.Notes}, nil
}
