package configwatcher

import (
	"context"
	"ethics_eval_backend/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
scoring:
  range_policy: reject
`

func TestWatchConfig_ReloadsScoring(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseConfig), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// give the watcher time to register the directory
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  range_policy: clamp\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, config.RangePolicyClamp, cfg.Scoring.RangePolicy)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchConfig_SkipsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseConfig), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	calls := 0
	err := func() error {
		go func() {
			time.Sleep(200 * time.Millisecond)
			os.WriteFile(path, []byte("scoring:\n  range_policy: round\n"), 0o644)
		}()
		return WatchConfig(ctx, path, func(*config.Config) { calls++ })
	}()

	require.NoError(t, err)
	assert.Zero(t, calls)
}
