package ports

import "context"

// LLMService define el puerto de salida hacia el servicio de texto de IA.
// Cualquier adaptador (Hugging Face, Anthropic, mock) debe implementar esta
// interfaz. El contrato es deliberadamente mínimo: dado un prompt de sistema y
// uno de usuario, el modelo devuelve un único blob de texto que *debería*
// contener un objeto JSON, posiblemente envuelto en prosa o bloques de código.
// Normalizar ese blob es trabajo del AIUseCase, no del adaptador.
type LLMService interface {
	// CompleteText envía los prompts y devuelve el texto crudo del modelo.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
