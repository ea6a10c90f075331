package ports

import "context"

// Storage define el puerto de almacenamiento durable clave-valor.
// El store de facturas lo usa con una única clave fija que contiene la
// colección completa serializada como JSON (sobreescritura total, no
// incremental). Adaptadores: archivo local, tabla PostgreSQL, memoria (tests).
type Storage interface {
	// Get devuelve el valor bajo key. found=false (sin error) si la clave no existe.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set escribe value bajo key, reemplazando cualquier valor anterior.
	Set(ctx context.Context, key, value string) error
}
