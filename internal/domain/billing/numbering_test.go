package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Facturas-api/internal/domain/billing"
	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

func TestNextInvoiceNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"colección vacía", nil, "INV-001"},
		{"secuencia simple", []string{"INV-001", "INV-002"}, "INV-003"},
		{"huecos ignorados, regla max+1", []string{"INV-001", "INV-005"}, "INV-006"},
		{"números no conformes ignorados", []string{"INV-003", "CUSTOM-001", "ABC123"}, "INV-004"},
		{"solo no conformes", []string{"CUSTOM-001", "ABC123"}, "INV-001"},
		{"case-insensitive", []string{"inv-005"}, "INV-006"},
		{"sin truncar por encima de 999", []string{"INV-1000"}, "INV-1001"},
		{"padding mínimo a 3 dígitos", []string{"INV-009"}, "INV-010"},
		{"prefijo parcial no cuenta", []string{"INV-", "INV-12a", "XINV-3"}, "INV-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, billing.NextInvoiceNumber(tt.existing))
		})
	}
}

func TestIsInvoiceNumberUnique(t *testing.T) {
	invoices := []*entity.Invoice{
		{ID: "1", InvoiceNumber: "INV-001"},
		{ID: "2", InvoiceNumber: "CUSTOM-7"},
	}

	t.Run("colisión exacta", func(t *testing.T) {
		assert.False(t, billing.IsInvoiceNumberUnique("INV-001", invoices, ""))
	})
	t.Run("colisión case-insensitive", func(t *testing.T) {
		assert.False(t, billing.IsInvoiceNumberUnique("inv-001", invoices, ""))
	})
	t.Run("excluyendo la factura editada", func(t *testing.T) {
		assert.True(t, billing.IsInvoiceNumberUnique("INV-001", invoices, "1"))
	})
	t.Run("exclusión de otro id no ayuda", func(t *testing.T) {
		assert.False(t, billing.IsInvoiceNumberUnique("INV-001", invoices, "2"))
	})
	t.Run("número libre", func(t *testing.T) {
		assert.True(t, billing.IsInvoiceNumberUnique("INV-999", invoices, ""))
	})
}
