// Package export writes finance reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	apptmodels "peegflow/internal/appointment/models"
	"peegflow/internal/finance/models"
)

const (
	ExpensesSheet = "Despesas"
	SummarySheet  = "Resumo"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var expenseHeader = []any{"Data", "Título", "Valor", "Observações"}

// Workbook renders the period's expenses and its summary.
func Workbook(summary *models.Summary, expenses []*models.Expense) (_ []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(ExpensesSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeExpenses(f, styles, expenses); err != nil {
		return nil, err
	}
	if err := writeSummary(f, styles, summary); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styles struct {
	header, money, date int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	dateFmt := "dd/mm/yyyy"
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return s, fmt.Errorf("create date style: %w", err)
	}
	return s, nil
}

func writeExpenses(f *excelize.File, st styles, expenses []*models.Expense) error {
	sheet := ExpensesSheet
	if err := f.SetSheetRow(sheet, "A1", &expenseHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.SpentAt, e.Title, e.Amount(), e.Notes}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write expense row %d: %w", i+2, err)
		}
	}
	if last := len(expenses) + 1; last > 1 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", last), st.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", last), st.money); err != nil {
			return err
		}
	}
	for col, width := range map[string]float64{"A": 12, "B": 40, "C": 14, "D": 50} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, st styles, s *models.Summary) error {
	sheet := SummarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	rows := [][]any{
		{"Período", s.Period.Label},
		{"Entradas", models.CentsToAmount(s.IncomeCents)},
		{"Despesas", models.CentsToAmount(s.ExpenseCents)},
		{"Caixa", models.CentsToAmount(s.CashCents())},
		{},
		{"Status", "Consultas"},
	}
	for _, status := range []apptmodels.Status{
		apptmodels.StatusAvailable, apptmodels.StatusBooked, apptmodels.StatusDone,
		apptmodels.StatusCanceled, apptmodels.StatusNoShow,
	} {
		rows = append(rows, []any{string(status), s.StatusCounts[status]})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(sheet, "B2", "B4", st.money); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A6", "B6", st.header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 14)
}
