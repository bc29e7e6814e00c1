package report

import (
	"fmt"
	"io"

	"budgetr/internal/core"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF writes a single-document A4 report: budget summary, category
// totals, then the transaction list.
func WritePDF(w io.Writer, m Monthly) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Budgetr report %s", m.Period()), false)
	pdf.SetAuthor("Budgetr", false)
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(44, 62, 80)
	pdf.Rect(0, 0, 210, 32, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(12, 8)
	pdf.Cell(0, 10, "Budgetr.")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(12, 19)
	pdf.Cell(0, 8, fmt.Sprintf("Monthly report %s  %s", m.Period(), m.Email))

	pdf.SetTextColor(44, 62, 80)
	pdf.SetXY(12, 40)

	// Summary
	section(pdf, "Summary")
	if !m.Overview.Empty() {
		line(pdf, m.Overview.Headline())
		line(pdf, m.Overview.UnallocatedMessage())
	}
	line(pdf, fmt.Sprintf("Spent this month: %s", core.Dollars(m.Spent)))
	pdf.Ln(4)

	// Category totals
	section(pdf, "Spending by category")
	if len(m.Totals) == 0 {
		line(pdf, "No transactions recorded.")
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, t := range m.Totals {
		pdf.CellFormat(120, 7, t.Category, "B", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, core.Dollars(t.Amount), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Transactions
	section(pdf, "Transactions")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(24, 188, 156)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(30, 7, "Date", "", 0, "L", true, 0, "")
	pdf.CellFormat(45, 7, "Category", "", 0, "L", true, 0, "")
	pdf.CellFormat(75, 7, "Description", "", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "", 1, "R", true, 0, "")
	pdf.SetTextColor(44, 62, 80)
	pdf.SetFont("Helvetica", "", 10)
	for _, tx := range m.Transactions {
		pdf.CellFormat(30, 6, tx.Date.String(), "B", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, truncate(tx.Category, 24), "B", 0, "L", false, 0, "")
		pdf.CellFormat(75, 6, truncate(tx.Description, 42), "B", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, core.Dollars(tx.Amount), "B", 1, "R", false, 0, "")
	}

	pdf.SetY(-15)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 10, "Generated "+m.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
