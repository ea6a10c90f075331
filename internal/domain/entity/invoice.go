package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de la factura. Pertenece en exclusiva a su
// factura padre; el Subtotal es derivado (Quantity × Price, sin redondear).
type InvoiceItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Invoice representa una factura con sus líneas y totales calculados.
// Los campos Subtotal, TaxAmount y Total son derivados: se recalculan en cada
// mutación de items, taxRate o discount; nunca se guardan desactualizados.
// Date y DueDate son fechas de calendario en formato YYYY-MM-DD.
type Invoice struct {
	ID            string          `json:"id"`
	ClientName    string          `json:"clientName"`
	InvoiceNumber string          `json:"invoiceNumber"` // único (comparación case-insensitive)
	Date          string          `json:"date"`
	DueDate       string          `json:"dueDate,omitempty"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"taxRate"`  // fracción en [0,1]
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Discount      decimal.Decimal `json:"discount"` // fracción en [0,1]
	Total         decimal.Decimal `json:"total"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Clone devuelve una copia profunda de la factura (los items se copian).
// El store entrega copias para que los callers no puedan mutar su estado interno.
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	c.Items = make([]InvoiceItem, len(i.Items))
	copy(c.Items, i.Items)
	return &c
}
