package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidCFDIUse = errors.New("invalid CFDI use")

// CFDIUses maps the accepted CFDI use codes to their descriptions.
var CFDIUses = map[string]string{
	"G01": "Adquisición de mercancías",
	"G02": "Devoluciones, descuentos o bonificaciones",
	"G03": "Gastos en general",
	"I01": "Construcciones",
	"P01": "Por definir",
}

// Issuer data printed on every invoice.
const (
	IssuerName    = "BIKERLIGHT"
	IssuerRFC     = "BKL456789123"
	IssuerAddress = "Calle Seguridad 123, CDMX"
)

var ivaRate = decimal.RequireFromString("0.16")

// Invoice is everything needed to render a sale as a PDF.
type Invoice struct {
	Sale     *Sale
	Customer User
	CFDIUse  string
}

// Folio returns the printable invoice number.
func (i Invoice) Folio() string {
	return fmt.Sprintf("FCT-%06d", i.Sale.ID)
}

// Amounts splits the IVA-inclusive total into subtotal and tax.
func (i Invoice) Amounts() (subtotal, iva, total decimal.Decimal) {
	total = i.Sale.Total
	iva = total.Mul(ivaRate).Round(2)
	subtotal = total.Sub(iva)
	return subtotal, iva, total
}
