// Package pdf renders invoices with go-pdf/fpdf.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/bikerlight/store-api/internal/core/domain"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Product", 50, "L"},
	{"Description", 80, "L"},
	{"Quantity", 25, "C"},
	{"Total", 35, "R"},
}

// InvoiceRenderer implements ports.InvoiceRenderer.
type InvoiceRenderer struct {
	now func() time.Time
}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{now: time.Now}
}

func (r *InvoiceRenderer) Render(w io.Writer, inv domain.Invoice) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+inv.Folio(), true)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, domain.IssuerName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "RFC: "+domain.IssuerRFC, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(domain.IssuerAddress), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Invoice "+inv.Folio(), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Customer
	date := inv.Sale.CreatedAt
	if date.IsZero() {
		date = r.now()
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(inv.Customer.Billing.LegalName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "RFC: "+inv.Customer.Billing.RFC, "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 5, tr(inv.Customer.Billing.Address), "", "L", false)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("CFDI use: %s %s", inv.CFDIUse, domain.CFDIUses[inv.CFDIUse])), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date: "+date.UTC().Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Lines
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range inv.Sale.Lines {
		cells := []string{
			tr(l.Name),
			tr(truncate(l.Description, 45)),
			fmt.Sprintf("%d", l.Quantity),
			"$" + l.Total().StringFixed(2),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Totals
	subtotal, iva, total := inv.Amounts()
	totals := []struct{ label, value string }{
		{"Subtotal", subtotal.StringFixed(2)},
		{"IVA (16%)", iva.StringFixed(2)},
		{"Total", total.StringFixed(2)},
	}
	for i, t := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(155, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, "$"+t.value, "", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.Folio(), err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
