package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateNumber   = errors.New("el número de factura ya existe")
	ErrAIResponseInvalid = errors.New("la respuesta del modelo no contiene JSON válido")
	ErrAIUnavailable     = errors.New("servicio de IA no configurado")
)
