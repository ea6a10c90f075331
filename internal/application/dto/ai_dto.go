package dto

import "github.com/shopspring/decimal"

// ParseInvoiceRequest body para POST /api/ai/parse-invoice.
type ParseInvoiceRequest struct {
	Prompt string `json:"prompt"`
}

// ParsedItem línea tal como la devuelve el modelo: {name, quantity, price}.
// El campo name se mapea después a description.
type ParsedItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ParsedInvoiceData bolsa de campos todos-opcionales que refleja lo que el
// modelo logró extraer del texto libre. Transitoria: se consume una vez para
// poblar el formulario de creación y se descarta; nunca se persiste.
type ParsedInvoiceData struct {
	ClientName    *string          `json:"clientName,omitempty"`
	InvoiceNumber *string          `json:"invoiceNumber,omitempty"`
	Date          *string          `json:"date,omitempty"`
	DueDate       *string          `json:"dueDate,omitempty"`
	Items         []ParsedItem     `json:"items,omitempty"`
	TaxRate       *decimal.Decimal `json:"taxRate,omitempty"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// InvoicePrefill resultado del mapeo de ParsedInvoiceData a la forma del
// formulario de creación. ClientName e Items siempre están presentes (cadena
// vacía / slice vacía); el resto queda en nil si el modelo no lo extrajo —
// número, fecha y totales por defecto son responsabilidad del caller, nunca
// se fabrican aquí.
type InvoicePrefill struct {
	ClientName    string             `json:"clientName"`
	InvoiceNumber *string            `json:"invoiceNumber,omitempty"`
	Date          *string            `json:"date,omitempty"`
	DueDate       *string            `json:"dueDate,omitempty"`
	Items         []InvoiceItemInput `json:"items"`
	TaxRate       *decimal.Decimal   `json:"taxRate,omitempty"`
	Discount      *decimal.Decimal   `json:"discount,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}
