package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
}

func TestNewLogger_BadLevel(t *testing.T) {
	t.Parallel()

	_, err := newLogger(&bytes.Buffer{}, "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestLoadCatalog_Default(t *testing.T) {
	t.Parallel()

	c, err := loadCatalog("")
	require.NoError(t, err)
	assert.True(t, c.Supports(proofread.DefaultLanguage))
}

func TestLoadCatalog_Dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(`
name: English
messages:
  welcome: Hi there.
`), 0o644))

	c, err := loadCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, "Hi there.", c.Message(proofread.DefaultLanguage, proofread.MessageWelcome))
}

func TestOpenStore_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, storeConfig{Path: filepath.Join(t.TempDir(), "prefs.db")})
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, store.SetLanguage(ctx, 7, "ru"))
	lang, err := store.Language(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, proofread.Language("ru"), lang)
}

func TestServeHTTP_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- serveHTTP(ctx, "127.0.0.1:0", handler, discardLogger())
	}()

	// Let the listener start before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not return after cancel")
	}
}

func TestServeHTTP_ListenError(t *testing.T) {
	t.Parallel()

	err := serveHTTP(context.Background(), "256.0.0.1:bad", http.NotFoundHandler(), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http:")
}
