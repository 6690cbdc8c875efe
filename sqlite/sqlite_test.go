package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("unknown user is not found", func(t *testing.T) {
		t.Parallel()
		s := openMemory(t)
		_, err := s.Language(context.Background(), 42)
		assert.ErrorIs(t, err, proofread.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()
		s := openMemory(t)
		ctx := context.Background()
		require.NoError(t, s.SetLanguage(ctx, 42, "ru"))
		lang, err := s.Language(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, proofread.Language("ru"), lang)
	})

	t.Run("set overwrites previous value", func(t *testing.T) {
		t.Parallel()
		s := openMemory(t)
		ctx := context.Background()
		require.NoError(t, s.SetLanguage(ctx, 42, "ru"))
		require.NoError(t, s.SetLanguage(ctx, 42, "uz"))
		lang, err := s.Language(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, proofread.Language("uz"), lang)
	})

	t.Run("users are independent", func(t *testing.T) {
		t.Parallel()
		s := openMemory(t)
		ctx := context.Background()
		require.NoError(t, s.SetLanguage(ctx, 1, "ru"))
		_, err := s.Language(ctx, 2)
		assert.ErrorIs(t, err, proofread.ErrNotFound)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		t.Parallel()
		s := openMemory(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.SetLanguage(ctx, int64(i), "en"))
			}()
		}
		wg.Wait()
		lang, err := s.Language(ctx, 19)
		require.NoError(t, err)
		assert.Equal(t, proofread.Language("en"), lang)
	})

	t.Run("persists across reopen", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "prefs.db")
		ctx := context.Background()

		s, err := sqlite.Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, s.SetLanguage(ctx, 7, "uz"))
		require.NoError(t, s.Close())

		s, err = sqlite.Open(ctx, path)
		require.NoError(t, err)
		defer s.Close()
		lang, err := s.Language(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, proofread.Language("uz"), lang)
	})
}
