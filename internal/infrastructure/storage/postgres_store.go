package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Facturas-api/internal/application/ports"
)

// Verificar en tiempo de compilación que PostgresStore implementa Storage.
var _ ports.Storage = (*PostgresStore)(nil)

// PostgresStore implementa el almacenamiento clave-valor sobre una tabla
// kv_store. Mismo contrato que FileStore; pensado para despliegues donde el
// filesystem del contenedor es efímero.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore construye el adaptador y asegura que la tabla exista.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	const ddl = `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("storage: crear tabla kv_store: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get lee el valor bajo key. Fila inexistente no es un error: found=false.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: leer %s: %w", key, err)
	}
	return value, true, nil
}

// Set escribe el valor con upsert (sobreescritura total del valor anterior).
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	return nil
}
