package dto

import "github.com/shopspring/decimal"

// InvoiceItemInput línea de factura tal como la captura el formulario
// (sin id ni subtotal: ambos los deriva el store).
type InvoiceItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// CreateInvoiceRequest body para POST /api/invoices (formulario de creación).
// El store no valida: la capa HTTP verifica campos y unicidad del número
// antes de invocarlo.
type CreateInvoiceRequest struct {
	ClientName    string             `json:"clientName"`
	InvoiceNumber string             `json:"invoiceNumber"`
	Date          string             `json:"date"`              // YYYY-MM-DD
	DueDate       string             `json:"dueDate,omitempty"` // YYYY-MM-DD, opcional
	Items         []InvoiceItemInput `json:"items"`
	TaxRate       decimal.Decimal    `json:"taxRate"`  // fracción en [0,1]
	Discount      decimal.Decimal    `json:"discount"` // fracción en [0,1]
	Notes         string             `json:"notes,omitempty"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id. Todos los campos son
// opcionales: el merge es campo a campo sobre el registro existente (puntero
// nil = conservar el valor anterior). Items nil conserva las líneas actuales;
// una slice vacía las elimina todas.
type UpdateInvoiceRequest struct {
	ClientName    *string            `json:"clientName,omitempty"`
	InvoiceNumber *string            `json:"invoiceNumber,omitempty"`
	Date          *string            `json:"date,omitempty"`
	DueDate       *string            `json:"dueDate,omitempty"`
	Items         []InvoiceItemInput `json:"items,omitempty"`
	TaxRate       *decimal.Decimal   `json:"taxRate,omitempty"`
	Discount      *decimal.Decimal   `json:"discount,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

// NextNumberResponse respuesta de GET /api/invoices/next-number.
type NextNumberResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
}
