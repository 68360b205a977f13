package device

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsProfileRewrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "device.yml")
	p := DefaultProfile(wizard, "vendor")
	p.Path = path
	require.NoError(t, p.Save())

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(path, func() { changed <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, p.AddAccount(AccountTypeGoogle))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "device.yml")

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(path, func() { changed <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	other := DefaultProfile(wizard, "vendor")
	other.Path = filepath.Join(dir, "other.yml")
	require.NoError(t, other.Save())

	select {
	case <-changed:
		t.Fatal("sibling write reported")
	case <-time.After(3 * debounceInterval):
	}
	assert.Empty(t, changed)
}
