package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWatcher_EmitsNewPDFs(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Dir: dir, Debounce: 200 * time.Millisecond})
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "ignored.txt"))
	pdf := filepath.Join(dir, "new.PDF")
	touch(t, pdf)
	require.NoError(t, os.WriteFile(pdf, []byte("more"), 0o644))

	select {
	case got := <-events:
		assert.Equal(t, pdf, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for new pdf")
	}

	select {
	case got := <-events:
		t.Fatalf("unexpected extra event %q", got)
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartWatcher_MissingDirectory(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{Dir: filepath.Join(t.TempDir(), "gone")})
	assert.Error(t, err)

	_, _, err = StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
