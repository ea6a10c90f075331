package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Facturas-api/internal/application/ports"
	"github.com/jhoicas/Facturas-api/internal/domain"
)

// Verificar en tiempo de compilación que HuggingFaceService implementa LLMService.
var _ ports.LLMService = (*HuggingFaceService)(nil)

const hfChatCompletionsURL = "https://router.huggingface.co/v1/chat/completions"

// HuggingFaceService adaptador que implementa LLMService contra el router de
// inferencia de Hugging Face (API compatible con chat completions de OpenAI).
// Es el proveedor por defecto; model suele ser "meta-llama/Meta-Llama-3-8B-Instruct".
type HuggingFaceService struct {
	token      string
	model      string
	httpClient *http.Client
}

// NewHuggingFaceService construye el adaptador. Si token está vacío las
// llamadas devuelven error descriptivo en lugar de panic.
func NewHuggingFaceService(token, model string) *HuggingFaceService {
	return &HuggingFaceService{
		token: token,
		model: model,
		httpClient: &http.Client{
			// Timeout de red de 45 s; el use case impone además su propio context.WithTimeout.
			Timeout: 45 * time.Second,
		},
	}
}

// ── Estructuras internas del protocolo chat completions ───────────────────────

type hfChatRequest struct {
	Model       string          `json:"model"`
	Messages    []hfChatMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type hfChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// CompleteText envía los prompts al modelo y devuelve el texto de la primera
// choice sin post-procesar. Temperatura baja: la extracción debe ser
// determinista, no creativa.
func (s *HuggingFaceService) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.token == "" {
		return "", domain.ErrAIUnavailable
	}

	payload := hfChatRequest{
		Model: s.model,
		Messages: []hfChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   500,
		Temperature: 0.1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hfChatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp hfChatResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("AI: Hugging Face error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("AI: Hugging Face HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var hfResp hfChatResponse
	if err := json.Unmarshal(rawBody, &hfResp); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Hugging Face: %w", err)
	}

	if len(hfResp.Choices) == 0 || hfResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("AI: el modelo devolvió respuesta vacía")
	}

	return hfResp.Choices[0].Message.Content, nil
}
