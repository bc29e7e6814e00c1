package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"

	headerColor = "#2C3E50"
	accentColor = "#18BC9C"
)

// WriteXLSX writes a workbook with a transactions sheet and a summary sheet.
func WriteXLSX(w io.Writer, m Monthly) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{accentColor}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: headerColor, Style: 2}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return fmt.Errorf("money style: %w", err)
	}

	// Transactions sheet
	sw := &sheetWriter{f: f, sheet: transactionsSheet}
	sw.title("A1", "D1", fmt.Sprintf("Budgetr transactions for %s", m.Period()), titleStyle)
	for i, h := range []string{"Date", "Category", "Description", "Amount"} {
		sw.set(cellName(i+1, 2), h)
	}
	sw.style("A2", "D2", headerStyle)

	row := 3
	for _, tx := range m.Transactions {
		sw.set(fmt.Sprintf("A%d", row), tx.Date.String())
		sw.set(fmt.Sprintf("B%d", row), tx.Category)
		sw.set(fmt.Sprintf("C%d", row), tx.Description)
		sw.set(fmt.Sprintf("D%d", row), tx.Amount.InexactFloat64())
		sw.style(fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), moneyStyle)
		row++
	}
	sw.set(fmt.Sprintf("C%d", row), "Total")
	sw.set(fmt.Sprintf("D%d", row), m.Spent.InexactFloat64())
	sw.style(fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), headerStyle)
	sw.style(fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), moneyStyle)
	sw.width("A", "A", 14)
	sw.width("B", "B", 20)
	sw.width("C", "C", 36)
	sw.width("D", "D", 14)
	if sw.err != nil {
		return fmt.Errorf("transactions sheet: %w", sw.err)
	}

	// Summary sheet
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	sw = &sheetWriter{f: f, sheet: summarySheet}
	sw.title("A1", "B1", fmt.Sprintf("Budget summary for %s", m.Period()), titleStyle)
	sw.set("A2", "Total budget")
	sw.set("B2", m.Overview.Total.InexactFloat64())
	sw.set("A3", "Spent")
	sw.set("B3", m.Spent.InexactFloat64())
	sw.set("A4", "Unallocated")
	sw.set("B4", m.Overview.Unallocated.InexactFloat64())
	sw.style("B2", "B4", moneyStyle)

	sw.set("A6", "Category")
	sw.set("B6", "Spent")
	sw.set("C6", "Budget")
	sw.style("A6", "C6", headerStyle)

	budgets := map[string]float64{}
	for _, c := range m.Overview.Categories {
		budgets[c.Category] = c.Amount.InexactFloat64()
	}
	row = 7
	for _, t := range m.Totals {
		sw.set(fmt.Sprintf("A%d", row), t.Category)
		sw.set(fmt.Sprintf("B%d", row), t.Amount.InexactFloat64())
		if b, ok := budgets[t.Category]; ok {
			sw.set(fmt.Sprintf("C%d", row), b)
		}
		sw.style(fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), moneyStyle)
		row++
	}
	sw.width("A", "A", 22)
	sw.width("B", "C", 14)
	if sw.err != nil {
		return fmt.Errorf("summary sheet: %w", sw.err)
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter fills one sheet and keeps the first excelize error. Calls after
// a failure are no-ops.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (sw *sheetWriter) set(cell string, v any) {
	if sw.err == nil {
		sw.err = sw.f.SetCellValue(sw.sheet, cell, v)
	}
}

func (sw *sheetWriter) style(from, to string, id int) {
	if sw.err == nil {
		sw.err = sw.f.SetCellStyle(sw.sheet, from, to, id)
	}
}

func (sw *sheetWriter) width(from, to string, w float64) {
	if sw.err == nil {
		sw.err = sw.f.SetColWidth(sw.sheet, from, to, w)
	}
}

// title merges from:to into a banner row.
func (sw *sheetWriter) title(from, to, text string, id int) {
	if sw.err == nil {
		sw.err = sw.f.MergeCell(sw.sheet, from, to)
	}
	sw.set(from, text)
	sw.style(from, to, id)
	if sw.err == nil {
		sw.err = sw.f.SetRowHeight(sw.sheet, 1, 28)
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
