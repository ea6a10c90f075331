package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturas-api/internal/infrastructure/storage"
)

func TestFileStore_SetGetRoundTrip(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "facturas/invoices.json", `[{"id":"1"}]`))

	got, found, err := store.Get(ctx, "facturas/invoices.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, got)
}

func TestFileStore_ClaveInexistente(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, found, err := store.Get(context.Background(), "no/existe.json")
	require.NoError(t, err, "una clave ausente no es un error")
	assert.False(t, found)
	assert.Empty(t, got)
}

func TestFileStore_SetSobrescribe(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v1"))
	require.NoError(t, store.Set(ctx, "k", "v2"))

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", got, "Set reemplaza el valor completo, no es incremental")
}

func TestFileStore_NoDejaTemporalesTrasEscribir(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "k", "v"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, filepath.Ext(e.Name()) == "" && e.Name()[0] == '.',
			"no deben quedar archivos temporales: %s", e.Name())
	}
}
