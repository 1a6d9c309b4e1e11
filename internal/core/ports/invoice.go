package ports

import (
	"context"
	"io"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// InvoiceRenderer writes an invoice document.
type InvoiceRenderer interface {
	Render(w io.Writer, inv domain.Invoice) error
}

// InvoiceInput identifies the sale to invoice and the billing data to use.
// SaleID 0 selects the user's latest sale.
type InvoiceInput struct {
	UserID  int64
	Role    string
	SaleID  int64
	Billing domain.Billing
	CFDIUse string
}

// InvoiceDocument is a rendered invoice.
type InvoiceDocument struct {
	Filename    string
	ContentType string
	Content     []byte
}

type InvoiceService interface {
	Generate(ctx context.Context, in InvoiceInput) (*InvoiceDocument, error)
}
