package handler

import (
	"time"

	"peegflow/internal/finance/models"
	id "peegflow/pkg/domain"
)

type ExpenseResponse struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Amount  float64   `json:"amount"`
	SpentAt time.Time `json:"spent_at"`
	Notes   *string   `json:"notes"`
}

func toExpenseResponse(e *models.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:      e.ID.String(),
		Title:   e.Title,
		Amount:  e.Amount(),
		SpentAt: e.SpentAt,
	}
	if e.Notes != "" {
		resp.Notes = &e.Notes
	}
	return resp
}

func toExpenseResponses(expenses []*models.Expense) []*ExpenseResponse {
	out := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

type DailyIncomeResponse struct {
	Day    string  `json:"day"`
	Income float64 `json:"income"`
}

type SummaryResponse struct {
	Period       string                `json:"period"`
	IncomeTotal  float64               `json:"income_total"`
	ExpenseTotal float64               `json:"expense_total"`
	CashTotal    float64               `json:"cash_total"`
	StatusCounts map[string]int        `json:"status_counts"`
	DailyIncome  []DailyIncomeResponse `json:"daily_income"`
}

func toSummaryResponse(s *models.Summary) *SummaryResponse {
	resp := &SummaryResponse{
		Period:       s.Period.Label,
		IncomeTotal:  models.CentsToAmount(s.IncomeCents),
		ExpenseTotal: models.CentsToAmount(s.ExpenseCents),
		CashTotal:    models.CentsToAmount(s.CashCents()),
		StatusCounts: make(map[string]int, len(s.StatusCounts)),
		DailyIncome:  make([]DailyIncomeResponse, 0, len(s.Daily)),
	}
	for status, n := range s.StatusCounts {
		resp.StatusCounts[string(status)] = n
	}
	for _, d := range s.Daily {
		resp.DailyIncome = append(resp.DailyIncome, DailyIncomeResponse{
			Day:    d.Day.Format(id.DateLayout),
			Income: models.CentsToAmount(d.IncomeCents),
		})
	}
	return resp
}
