package billing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturas-api/internal/domain/entity"
)

// Totals agrupa los montos agregados de una factura.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ItemSubtotal calcula el subtotal de una línea: cantidad × precio unitario.
// Sin redondeo: el redondeo ocurre únicamente a nivel de agregados.
func ItemSubtotal(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price)
}

// InvoiceTotals calcula los agregados de la factura a partir de los subtotales
// de línea tal como vienen (no los recalcula):
//
//	subtotal  = round2(Σ item.Subtotal)
//	taxAmount = round2(Σ × taxRate)
//	total     = round2(Σ × (1 + taxRate) − Σ × discount)
//
// round2 redondea a 2 decimales (mitad hacia arriba sobre el valor en centavos).
// taxRate y discount se asumen fracciones finitas en [0,1]; la validación es
// responsabilidad de la capa HTTP, no de este servicio de dominio.
func InvoiceTotals(items []entity.InvoiceItem, taxRate, discount decimal.Decimal) Totals {
	var raw decimal.Decimal
	for _, item := range items {
		raw = raw.Add(item.Subtotal)
	}

	one := decimal.NewFromInt(1)
	return Totals{
		Subtotal:  raw.Round(2),
		TaxAmount: raw.Mul(taxRate).Round(2),
		Total:     raw.Mul(one.Add(taxRate)).Sub(raw.Mul(discount)).Round(2),
	}
}
