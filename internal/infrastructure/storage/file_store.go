// Package storage contiene los adaptadores del puerto ports.Storage: el
// almacén clave-valor durable donde vive la colección de facturas serializada.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jhoicas/Facturas-api/internal/application/ports"
)

// Verificar en tiempo de compilación que FileStore implementa Storage.
var _ ports.Storage = (*FileStore)(nil)

// FileStore implementa el almacenamiento clave-valor sobre el sistema de
// archivos local: cada clave es una ruta relativa bajo el directorio base.
// Es el análogo local del AsyncStorage de un dispositivo móvil.
type FileStore struct {
	baseDir string
}

// NewFileStore construye el adaptador y asegura que el directorio base exista.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio base: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Get lee el valor bajo key. Una clave inexistente no es un error: found=false.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: leer %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set escribe el valor de forma atómica: archivo temporal en el mismo
// directorio y rename. Un crash a mitad de escritura nunca deja el valor
// anterior corrupto.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: crear directorio de %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: archivo temporal para %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cerrar temporal de %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storage: renombrar %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
