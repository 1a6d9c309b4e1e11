package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// InvoiceService saves the customer's billing data and renders sale invoices.
type InvoiceService struct {
	users    ports.UserRepository
	sales    ports.SaleService
	renderer ports.InvoiceRenderer
	log      zerolog.Logger
}

func NewInvoiceService(users ports.UserRepository, sales ports.SaleService, renderer ports.InvoiceRenderer, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{users: users, sales: sales, renderer: renderer, log: log}
}

func (s *InvoiceService) Generate(ctx context.Context, in ports.InvoiceInput) (*ports.InvoiceDocument, error) {
	cfdi := strings.ToUpper(strings.TrimSpace(in.CFDIUse))
	if _, ok := domain.CFDIUses[cfdi]; !ok {
		return nil, domain.ErrInvalidCFDIUse
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	billing := domain.Billing{
		RFC:       strings.ToUpper(strings.TrimSpace(in.Billing.RFC)),
		LegalName: strings.TrimSpace(in.Billing.LegalName),
		Address:   strings.TrimSpace(in.Billing.Address),
	}
	if billing.RFC == "" || billing.LegalName == "" {
		return nil, fmt.Errorf("%w: rfc and legal_name are required", domain.ErrValidation)
	}

	var sale *domain.Sale
	if in.SaleID > 0 {
		sale, err = s.sales.Detail(ctx, in.UserID, in.Role, in.SaleID)
	} else {
		sale, err = s.sales.Latest(ctx, in.UserID)
		if err == nil && sale == nil {
			err = domain.ErrSaleNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	// Billing data is only kept once the sale is known to be invoiceable.
	if err := s.users.UpdateProfile(ctx, user.ID, user.Name, billing); err != nil {
		return nil, fmt.Errorf("save billing data: %w", err)
	}
	user.Billing = billing

	inv := domain.Invoice{Sale: sale, Customer: *user, CFDIUse: cfdi}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, inv); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}

	s.log.Info().Int64("sale_id", sale.ID).Int64("user_id", user.ID).Str("folio", inv.Folio()).Msg("invoice generated")

	return &ports.InvoiceDocument{
		Filename:    "invoice-" + inv.Folio() + ".pdf",
		ContentType: "application/pdf",
		Content:     buf.Bytes(),
	}, nil
}
