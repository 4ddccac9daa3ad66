package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/towerfield/internal/config"
)

var backends = map[string]func(t *testing.T) Storage{
	config.StoreJSON: func(t *testing.T) Storage {
		s, err := Open(config.StoreConfig{Backend: config.StoreJSON, Path: filepath.Join(t.TempDir(), "levels.json")})
		require.NoError(t, err)
		return s
	},
	config.StoreBadger: func(t *testing.T) Storage {
		s, err := Open(config.StoreConfig{Backend: config.StoreBadger, Path: filepath.Join(t.TempDir(), "levels.db")})
		require.NoError(t, err)
		return s
	},
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()

	for backend, open := range backends {
		t.Run(backend, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			first, err := s.Save(ctx, "alpha", `{"cols":1}`)
			require.NoError(t, err)
			assert.Equal(t, "alpha", first.Name)
			assert.NotEqual(t, uuid.Nil, first.ID)

			_, err = s.Save(ctx, "beta", `{"cols":2}`)
			require.NoError(t, err)

			loaded, err := s.Load(ctx, "alpha")
			require.NoError(t, err)
			assert.Equal(t, `{"cols":1}`, loaded.Data)
			assert.Equal(t, first.ID, loaded.ID)

			// Overwrite keeps the ID
			second, err := s.Save(ctx, "alpha", `{"cols":3}`)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			loaded, err = s.Load(ctx, "alpha")
			require.NoError(t, err)
			assert.Equal(t, `{"cols":3}`, loaded.Data)

			names, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"alpha", "beta"}, names)

			require.NoError(t, s.Delete(ctx, "beta"))
			_, err = s.Load(ctx, "beta")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "beta"), ErrNotFound)

			_, err = s.Save(ctx, "", "x")
			assert.ErrorIs(t, err, ErrEmptyName)

			require.NoError(t, s.Close())
			_, err = s.Load(ctx, "alpha")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestJSONStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "levels.json")

	s, err := NewJSONStore(path)
	require.NoError(t, err)
	rec, err := s.Save(ctx, "maze", "data")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewJSONStore(path)
	require.NoError(t, err)
	loaded, err := reopened.Load(ctx, "maze")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, "data", loaded.Data)
}

func TestJSONStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONStore(path)
	assert.Error(t, err)
}

func TestBadgerStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "levels.db")

	s, err := NewBadgerStore(dir)
	require.NoError(t, err)
	_, err = s.Save(ctx, "maze", "data")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	loaded, err := reopened.Load(ctx, "maze")
	require.NoError(t, err)
	assert.Equal(t, "data", loaded.Data)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.StoreConfig{Backend: "redis"})
	assert.Error(t, err)
}
