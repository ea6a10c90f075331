package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/application/usecase"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

// AIHandler maneja el prellenado de facturas asistido por IA.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// ParseInvoice interpreta una descripción en lenguaje natural y devuelve los
// campos del formulario de factura que el modelo logró extraer.
// POST /api/ai/parse-invoice
func (h *AIHandler) ParseInvoice(c *fiber.Ctx) error {
	var req dto.ParseInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_BODY", Message: "cuerpo de la petición inválido",
		})
	}

	prefill, err := h.uc.ParseInvoicePrompt(c.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "prompt es obligatorio",
			})
		case errors.Is(err, domain.ErrAIResponseInvalid):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Code: "AI_UNPARSEABLE", Message: "el modelo no devolvió datos de factura interpretables",
			})
		case errors.Is(err, domain.ErrAIUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code: "AI_UNAVAILABLE", Message: "el servicio de IA no está configurado",
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
				Code: "AI_ERROR", Message: err.Error(),
			})
		}
	}

	return c.JSON(prefill)
}
