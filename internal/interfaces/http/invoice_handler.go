package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/application/invoicing"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/pdf"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
//
// El store no valida entradas: toda la validación de formulario (campos
// obligatorios, rangos, formato de fechas y unicidad del número) ocurre aquí,
// antes de tocar el estado.
type InvoiceHandler struct {
	store *invoicing.InvoiceStore
	pdf   *pdf.MarotoPDFGenerator
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(store *invoicing.InvoiceStore, pdfGen *pdf.MarotoPDFGenerator) *InvoiceHandler {
	return &InvoiceHandler{store: store, pdf: pdfGen}
}

// Create crea una factura con totales derivados.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg := validateCreate(in); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	if !h.store.IsInvoiceNumberUnique(in.InvoiceNumber, "") {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_NUMBER", Message: "el número de factura ya existe"})
	}
	invoice := h.store.Create(in)
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List devuelve todas las facturas en orden de inserción.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.store.List())
}

// GetByID obtiene una factura por id.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice := h.store.Get(c.Params("id"))
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	return c.JSON(invoice)
}

// Update aplica un merge parcial sobre una factura existente y recalcula
// totales.
// PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg := validateUpdate(in); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	if in.InvoiceNumber != nil && !h.store.IsInvoiceNumberUnique(*in.InvoiceNumber, id) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_NUMBER", Message: "el número de factura ya existe"})
	}
	invoice := h.store.Update(id, in)
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	return c.JSON(invoice)
}

// Delete elimina una factura. Idempotente: borrar un id inexistente
// también responde 204.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	h.store.Delete(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// NextNumber sugiere el siguiente número secuencial INV-XXX.
// GET /api/invoices/next-number
func (h *InvoiceHandler) NextNumber(c *fiber.Ctx) error {
	return c.JSON(dto.NextNumberResponse{InvoiceNumber: h.store.NextInvoiceNumber()})
}

// ExportPDF genera la representación imprimible de la factura.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) ExportPDF(c *fiber.Ctx) error {
	invoice := h.store.Get(c.Params("id"))
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	}
	bytes, err := h.pdf.GenerateInvoicePDF(c.Context(), invoice)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.pdf"`, invoice.InvoiceNumber))
	return c.Send(bytes)
}

// ── Validación de formulario ──────────────────────────────────────────────────

// validateCreate verifica el formulario completo de creación.
// Devuelve "" si es válido o el mensaje del primer problema encontrado.
func validateCreate(in dto.CreateInvoiceRequest) string {
	if in.ClientName == "" {
		return "clientName es obligatorio"
	}
	if in.InvoiceNumber == "" {
		return "invoiceNumber es obligatorio"
	}
	if msg := validateDate("date", in.Date, true); msg != "" {
		return msg
	}
	if msg := validateDate("dueDate", in.DueDate, false); msg != "" {
		return msg
	}
	if msg := validateItems(in.Items); msg != "" {
		return msg
	}
	if msg := validateFraction("taxRate", in.TaxRate); msg != "" {
		return msg
	}
	return validateFraction("discount", in.Discount)
}

// validateUpdate verifica sólo los campos presentes en el merge parcial.
func validateUpdate(in dto.UpdateInvoiceRequest) string {
	if in.ClientName != nil && *in.ClientName == "" {
		return "clientName no puede quedar vacío"
	}
	if in.InvoiceNumber != nil && *in.InvoiceNumber == "" {
		return "invoiceNumber no puede quedar vacío"
	}
	if in.Date != nil {
		if msg := validateDate("date", *in.Date, true); msg != "" {
			return msg
		}
	}
	if in.DueDate != nil {
		if msg := validateDate("dueDate", *in.DueDate, false); msg != "" {
			return msg
		}
	}
	if in.Items != nil {
		if msg := validateItems(in.Items); msg != "" {
			return msg
		}
	}
	if in.TaxRate != nil {
		if msg := validateFraction("taxRate", *in.TaxRate); msg != "" {
			return msg
		}
	}
	if in.Discount != nil {
		return validateFraction("discount", *in.Discount)
	}
	return ""
}

func validateItems(items []dto.InvoiceItemInput) string {
	for i, it := range items {
		if it.Description == "" {
			return fmt.Sprintf("items[%d].description es obligatorio", i)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Sprintf("items[%d].quantity debe ser mayor que cero", i)
		}
		if it.Price.IsNegative() {
			return fmt.Sprintf("items[%d].price no puede ser negativo", i)
		}
	}
	return ""
}

func validateDate(field, value string, required bool) string {
	if value == "" {
		if required {
			return field + " es obligatorio"
		}
		return ""
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return field + " debe tener formato YYYY-MM-DD"
	}
	return ""
}

func validateFraction(field string, v decimal.Decimal) string {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return field + " debe estar entre 0 y 1"
	}
	return ""
}
