package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/invoicing"
	"github.com/jhoicas/Facturas-api/internal/application/usecase"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Store *invoicing.InvoiceStore
	AIUC  *usecase.AIUseCase
	PDF   *pdf.MarotoPDFGenerator
}

// Router registra las rutas de la API. App de un solo usuario: no hay
// autenticación ni multi-tenancy.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// IA (prellenado del formulario)
	ai := api.Group("/ai")
	aiHandler := NewAIHandler(deps.AIUC)
	ai.Post("/parse-invoice", aiHandler.ParseInvoice)

	// Invoices
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Store, deps.PDF)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", invoiceHandler.Create)
	// next-number antes de :id para que no lo capture el parámetro
	invoices.Get("/next-number", invoiceHandler.NextNumber)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/pdf", invoiceHandler.ExportPDF)
}
