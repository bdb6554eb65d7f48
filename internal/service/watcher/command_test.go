package watcher

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/dustinops/pdfcsv-packager/internal/config"
	"github.com/dustinops/pdfcsv-packager/internal/service/packager"
)

// chdir mirrors t.Chdir, which needs Go 1.24: it enters dir and restores the
// previous working directory when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

// TestWatcherTriggersRebuild saves the entry script twice in quick succession
// and expects a single debounced rebuild.
func TestWatcherTriggersRebuild(t *testing.T) {
	chdir(t, t.TempDir())

	require.NoError(t, os.WriteFile("app.py", []byte("print('v1')\n"), 0o600))

	var rebuilds atomic.Int32

	runPipeline = func(_ context.Context, _ *packager.Options) error {
		rebuilds.Add(1)
		return nil
	}

	t.Cleanup(func() {
		runPipeline = packager.Run
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, &Options{Debounce: 100 * time.Millisecond})
	}()

	// Give the watcher time to register, then save twice quickly.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile("app.py", []byte("print('v2')\n"), 0o600))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile("app.py", []byte("print('v3')\n"), 0o600))

	require.Eventually(t, func() bool {
		return rebuilds.Load() == 1
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

// TestIsRelevant filters events down to the entry script and icon.
func TestIsRelevant(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Icon = "icon.ico"

	cases := []struct {
		name string
		path string
		want bool
	}{
		{"entry script", "app.py", true},
		{"icon", "icon.ico", true},
		{"unrelated file", "notes.txt", false},
		{"bundler output", "dist/PDFCSVTool", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event := fsnotify.Event{Name: tc.path, Op: fsnotify.Write}
			require.Equal(t, tc.want, isRelevant(event, cfg))
		})
	}
}

// TestIsRelevantIgnoresRemove ensures deletions never trigger a rebuild.
func TestIsRelevantIgnoresRemove(t *testing.T) {
	t.Parallel()

	event := fsnotify.Event{Name: "app.py", Op: fsnotify.Remove}
	require.False(t, isRelevant(event, config.Default()))
}
