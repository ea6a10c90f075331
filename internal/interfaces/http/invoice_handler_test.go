package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturas-api/internal/application/invoicing"
	"github.com/jhoicas/Facturas-api/internal/application/usecase"
	"github.com/jhoicas/Facturas-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Facturas-api/internal/interfaces/http"
	"github.com/jhoicas/Facturas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// memStorage implementación en memoria de ports.Storage para los tests.
type memStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string]string{}}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// fakeLLM respuesta fija del modelo para los tests del endpoint de IA.
type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) CompleteText(context.Context, string, string) (string, error) {
	return f.reply, f.err
}

// buildTestApp levanta la app Fiber completa con store en memoria y LLM falso.
func buildTestApp(llm *fakeLLM) (*fiber.App, *invoicing.InvoiceStore) {
	store := invoicing.NewInvoiceStore(newMemStorage(), "facturas/invoices.json", logger.Nop())
	if llm == nil {
		llm = &fakeLLM{reply: "{}"}
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Store: store,
		AIUC:  usecase.NewAIUseCase(llm, 0),
		PDF:   pdf.NewMarotoPDFGenerator(),
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// createBody formulario válido mínimo para POST /api/invoices.
func createBody(number string) map[string]any {
	return map[string]any{
		"clientName":    "Acme Corp",
		"invoiceNumber": number,
		"date":          "2025-03-01",
		"items": []map[string]any{
			{"description": "Diseño de logo", "quantity": 2, "price": 100},
			{"description": "Hosting anual", "quantity": 1, "price": 50},
		},
		"taxRate":  0.1,
		"discount": 0,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests POST /api/invoices
// ──────────────────────────────────────────────────────────────────────────────

func TestCrearFactura_CalculaTotales(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["id"], "el id debe generarse en el servidor")
	assert.Equal(t, "250", body["subtotal"], "subtotal de 2x100 + 1x50")
	assert.Equal(t, "25", body["taxAmount"], "impuesto del 10%")
	assert.Equal(t, "275", body["total"])
}

func TestCrearFactura_NumeroDuplicado_Retorna409(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/invoices", createBody("inv-001"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode,
		"la unicidad del número debe ignorar mayúsculas/minúsculas")
	body := decodeBody(t, resp)
	assert.Equal(t, "DUPLICATE_NUMBER", body["code"])
}

func TestCrearFactura_Invalida_Retorna400(t *testing.T) {
	casos := []struct {
		nombre string
		mutar  func(m map[string]any)
	}{
		{"sin clientName", func(m map[string]any) { m["clientName"] = "" }},
		{"fecha malformada", func(m map[string]any) { m["date"] = "01/03/2025" }},
		{"cantidad cero", func(m map[string]any) {
			m["items"] = []map[string]any{{"description": "x", "quantity": 0, "price": 10}}
		}},
		{"precio negativo", func(m map[string]any) {
			m["items"] = []map[string]any{{"description": "x", "quantity": 1, "price": -5}}
		}},
		{"taxRate fuera de rango", func(m map[string]any) { m["taxRate"] = 1.5 }},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			app, _ := buildTestApp(nil)
			body := createBody("INV-001")
			tc.mutar(body)

			resp := doJSON(t, app, http.MethodPost, "/api/invoices", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			out := decodeBody(t, resp)
			assert.Equal(t, "VALIDATION", out["code"])
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GET / PUT / DELETE /api/invoices/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestObtenerFactura_NoExiste_Retorna404(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodGet, "/api/invoices/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestActualizarFactura_MergeParcial(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	id := created["id"].(string)

	resp = doJSON(t, app, http.MethodPut, "/api/invoices/"+id,
		map[string]any{"clientName": "Otro Cliente"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeBody(t, resp)
	assert.Equal(t, "Otro Cliente", updated["clientName"])
	assert.Equal(t, "INV-001", updated["invoiceNumber"], "los campos ausentes se conservan")
	assert.Equal(t, "275", updated["total"], "los totales no cambian si no cambian las líneas")
}

func TestActualizarFactura_NoExiste_Retorna404(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPut, "/api/invoices/no-existe",
		map[string]any{"clientName": "X"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestActualizarFactura_NumeroDeOtraFactura_Retorna409(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-002"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decodeBody(t, resp)

	// Tomar el número de la primera → conflicto.
	resp = doJSON(t, app, http.MethodPut, "/api/invoices/"+second["id"].(string),
		map[string]any{"invoiceNumber": "INV-001"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Conservar el propio número no es conflicto.
	resp2 := doJSON(t, app, http.MethodPut, "/api/invoices/"+second["id"].(string),
		map[string]any{"invoiceNumber": "INV-002"})
	assert.Equal(t, http.StatusOK, resp2.StatusCode,
		"el propio número de la factura queda excluido del chequeo")
	resp.Body.Close()
	resp2.Body.Close()
}

func TestEliminarFactura_Idempotente(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	id := created["id"].(string)

	resp = doJSON(t, app, http.MethodDelete, "/api/invoices/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/api/invoices/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode,
		"borrar dos veces el mismo id no es error")
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/invoices/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GET /api/invoices/next-number
// ──────────────────────────────────────────────────────────────────────────────

func TestNextNumber_Secuencial(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodGet, "/api/invoices/next-number", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "INV-001", body["invoiceNumber"], "sin facturas arranca en INV-001")

	doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-007")).Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/invoices/next-number", nil)
	body = decodeBody(t, resp)
	assert.Equal(t, "INV-008", body["invoiceNumber"], "continúa después del máximo existente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GET /api/invoices/:id/pdf
// ──────────────────────────────────────────────────────────────────────────────

func TestExportarPDF(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/invoices", createBody("INV-001"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)

	resp = doJSON(t, app, http.MethodGet, "/api/invoices/"+created["id"].(string)+"/pdf", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")), "el cuerpo debe ser un PDF")
}

func TestExportarPDF_NoExiste_Retorna404(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodGet, "/api/invoices/no-existe/pdf", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests POST /api/ai/parse-invoice
// ──────────────────────────────────────────────────────────────────────────────

func TestParseInvoice_RespuestaConFences(t *testing.T) {
	reply := "Claro, aquí tienes:\n```json\n" +
		`{"clientName":"Acme Corp","items":[{"name":"Diseño","quantity":2,"price":100}],"taxRate":0.19}` +
		"\n```"
	app, _ := buildTestApp(&fakeLLM{reply: reply})

	resp := doJSON(t, app, http.MethodPost, "/api/ai/parse-invoice",
		map[string]any{"prompt": "factura para Acme por diseño"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Acme Corp", body["clientName"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Diseño", items[0].(map[string]any)["description"],
		"name del modelo se mapea a description del formulario")
}

func TestParseInvoice_SinJSON_Retorna422(t *testing.T) {
	app, _ := buildTestApp(&fakeLLM{reply: "No puedo ayudarte con eso."})

	resp := doJSON(t, app, http.MethodPost, "/api/ai/parse-invoice",
		map[string]any{"prompt": "factura para Acme"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "AI_UNPARSEABLE", body["code"])
}

func TestParseInvoice_PromptVacio_Retorna400(t *testing.T) {
	app, _ := buildTestApp(nil)

	resp := doJSON(t, app, http.MethodPost, "/api/ai/parse-invoice",
		map[string]any{"prompt": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestParseInvoice_ErrorDeTransporte_Retorna502(t *testing.T) {
	app, _ := buildTestApp(&fakeLLM{err: errors.New("connection refused")})

	resp := doJSON(t, app, http.MethodPost, "/api/ai/parse-invoice",
		map[string]any{"prompt": "factura para Acme"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}
