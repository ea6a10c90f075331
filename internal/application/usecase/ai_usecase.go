package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/Facturas-api/internal/application/dto"
	"github.com/jhoicas/Facturas-api/internal/application/ports"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

// aiSystemPrompt instruye al modelo para extraer los datos de factura de un
// texto libre y devolver únicamente un objeto JSON con campos opcionales.
const aiSystemPrompt = `Extract invoice data from the text below. Extract ALL information you can find.
Return ONLY a JSON object. Include only fields that are mentioned in the text.
Possible fields (all optional):
- clientName: client/company name
- invoiceNumber: invoice number
- date: date in YYYY-MM-DD format
- dueDate: due date in YYYY-MM-DD format
- items: array of items with "name", "quantity" (number), "price" (number)
- taxRate: tax rate as decimal (0.20 for 20%)
- discount: discount as decimal (0.10 for 10%)
- notes: additional notes

Example: {"clientName": "Apple", "items": [{"name": "logo design", "quantity": 2, "price": 500}]}`

var (
	// fenceOpenRe elimina los marcadores de apertura de bloque de código
	// (con o sin etiqueta de lenguaje).
	fenceOpenRe = regexp.MustCompile("(?i)```json")
	// jsonSpanRe captura el span delimitado por llaves más grande: desde la
	// primera '{' hasta la última '}'. Es un span greedy, no un escaneo de
	// llaves balanceadas: dos objetos JSON disjuntos producen un span
	// inválido que el parseo rechaza (y el resultado es "sin datos").
	jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON extrae un objeto JSON de la respuesta cruda de un modelo de
// lenguaje, tolerando prosa alrededor y bloques de código markdown:
//
//  1. Quita los marcadores de fence (` ```json ` y ` ``` `) y recorta espacios.
//  2. Busca el span greedy { … } más grande del texto limpio.
//  3. Sin span: localiza la primera '{' y la última '}' por separado; si falta
//     alguna o la primera no precede estrictamente a la última, no hay datos.
//  4. Intenta parsear el span como objeto JSON; cualquier fallo ⇒ nil.
//     Esta frontera nunca deja escapar un pánico ni un error.
//  5. No valida esquema: cualquier objeto JSON se devuelve tal cual.
//
// Devuelve el span como json.RawMessage, o nil si no hay JSON utilizable.
func ExtractJSON(raw string) json.RawMessage {
	cleaned := fenceOpenRe.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	span := jsonSpanRe.FindString(cleaned)
	if span == "" {
		first := strings.Index(cleaned, "{")
		last := strings.LastIndex(cleaned, "}")
		if first == -1 || last == -1 || first >= last {
			return nil
		}
		span = cleaned[first : last+1]
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil
	}
	return json.RawMessage(span)
}

// MapToForm proyecta los datos extraídos por el modelo sobre la forma del
// formulario de creación. ClientName nunca queda ausente (cadena vacía si el
// modelo no lo extrajo) y cada item {name, quantity, price} pasa a
// {description, quantity, price}; el resto de campos viaja sin tocar, posiblemente
// nil. Nunca fabrica número de factura, fecha ni totales: rellenar esos
// huecos es del caller.
func MapToForm(parsed dto.ParsedInvoiceData) dto.InvoicePrefill {
	items := make([]dto.InvoiceItemInput, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		items = append(items, dto.InvoiceItemInput{
			Description: it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	clientName := ""
	if parsed.ClientName != nil {
		clientName = *parsed.ClientName
	}

	return dto.InvoicePrefill{
		ClientName:    clientName,
		InvoiceNumber: parsed.InvoiceNumber,
		Date:          parsed.Date,
		DueDate:       parsed.DueDate,
		Items:         items,
		TaxRate:       parsed.TaxRate,
		Discount:      parsed.Discount,
		Notes:         parsed.Notes,
	}
}

// AIUseCase orquesta el pre-llenado del formulario de factura por IA:
// texto libre → LLM → extracción de JSON → mapeo a la forma del formulario.
type AIUseCase struct {
	llm     ports.LLMService
	timeout time.Duration
}

// NewAIUseCase construye el caso de uso. timeout acota cada llamada al LLM;
// con cero se aplican 30 s.
func NewAIUseCase(llm ports.LLMService, timeout time.Duration) *AIUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIUseCase{llm: llm, timeout: timeout}
}

// ParseInvoicePrompt envía el texto del usuario al modelo y normaliza la
// respuesta. Una respuesta sin JSON utilizable devuelve
// domain.ErrAIResponseInvalid: condición recuperable, el caller debe invitar
// al usuario a reformular, nunca tratarla como fatal.
func (uc *AIUseCase) ParseInvoicePrompt(ctx context.Context, prompt string) (*dto.InvoicePrefill, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	raw, err := uc.llm.CompleteText(ctx, aiSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("extracción IA: %w", err)
	}

	span := ExtractJSON(raw)
	if span == nil {
		return nil, domain.ErrAIResponseInvalid
	}

	var parsed dto.ParsedInvoiceData
	if err := json.Unmarshal(span, &parsed); err != nil {
		// El span es un objeto JSON válido pero con tipos incompatibles con el
		// esquema de factura (p. ej. quantity como texto no numérico).
		return nil, domain.ErrAIResponseInvalid
	}

	form := MapToForm(parsed)
	return &form, nil
}
