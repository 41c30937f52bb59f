package structure

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReloader struct {
	calls atomic.Int32
}

func (s *stubReloader) Reload() error {
	s.calls.Add(1)
	return nil
}

func TestWatcherDebouncesReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML)
	r := &stubReloader{}

	w, err := NewWatcher(dir, r, WithDebounce(100*time.Millisecond), WithWatchLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	for range 5 {
		writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML+"\n")
		time.Sleep(10 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML)
	r := &stubReloader{}

	w, err := NewWatcher(dir, r, WithDebounce(50*time.Millisecond), WithWatchLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	writeFile(t, dir, "repositories/notes.txt", "hello")
	writeFile(t, dir, "repositories/schema/repository.json", "{}")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), r.calls.Load())
}

func TestWatcherNewDirectoryWithDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML)
	r := &stubReloader{}

	w, err := NewWatcher(dir, r, WithDebounce(50*time.Millisecond), WithWatchLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "repositories", "empty"), 0o755))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), r.calls.Load())

	writeFile(t, dir, "repositories/acme/app.yaml", prebidYAML)
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "repositories.yaml", prebidYAML)
	r := &stubReloader{}
	hook := make(chan string, 4)

	w, err := NewWatcher(path, r,
		WithDebounce(50*time.Millisecond),
		WithWatchLogger(quietLogger()),
		WithReloadHook(func(id string, err error) {
			assert.NoError(t, err)
			hook <- id
		}))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer func() { _ = w.Stop() }()

	writeFile(t, dir, "other.yaml", "x: 1")
	writeFile(t, dir, "repositories.yaml", prebidYAML+"\n")

	select {
	case id := <-hook:
		assert.NotEmpty(t, id)
	case <-time.After(3 * time.Second):
		t.Fatal("reload not triggered")
	}
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), &stubReloader{}, WithWatchLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestNewWatcherMissingPath(t *testing.T) {
	_, err := NewWatcher(t.TempDir()+"/missing", &stubReloader{})
	require.Error(t, err)
}

func TestManagerHotReload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "repositories/prebid/prebid-js.yaml", prebidYAML)
	m, err := NewManager(repoconfigLoader(dir), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, m.StartWatching(t.Context(), 50*time.Millisecond))
	defer func() { _ = m.StopWatching() }()

	writeFile(t, dir, "repositories/acme/widget.yaml", "repo_name: acme/widget\nrepo_type: generic\n")
	require.Eventually(t, func() bool { return m.Repository("acme/widget") != nil }, 3*time.Second, 20*time.Millisecond)
	assert.NotNil(t, m.Repository("prebid/Prebid.js"))
}
