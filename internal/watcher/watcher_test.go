package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchfire-io/jobwatch/internal/logging"
)

func TestTokenWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "csrf_token")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o600))

	got := make(chan string, 4)
	w, err := New(path, func(tok string) { got <- tok }, logging.Discard())
	require.NoError(t, err)
	defer w.Stop()

	initial, err := w.Start()
	require.NoError(t, err)
	assert.Equal(t, "first", initial)

	tmp := filepath.Join(dir, "csrf_token.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("second"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case tok := <-got:
		assert.Equal(t, "second", tok)
	case <-time.After(5 * time.Second):
		t.Fatal("token change not observed")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0o600))
	select {
	case tok := <-got:
		t.Fatalf("unexpected reload %q", tok)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestTokenWatcherMissingFile(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), func(string) {}, logging.Discard())
	require.NoError(t, err)
	defer w.Stop()
	_, err = w.Start()
	assert.Error(t, err)
}

func TestStopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tok")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))
	w, err := New(path, func(string) {}, logging.Discard())
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
