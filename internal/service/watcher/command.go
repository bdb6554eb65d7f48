package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dustinops/pdfcsv-packager/internal/config"
	"github.com/dustinops/pdfcsv-packager/internal/logger"
	"github.com/dustinops/pdfcsv-packager/internal/service/packager"
)

// DefaultDebounce is how long the watcher waits after the last relevant
// change before rebuilding, so rapid editor saves trigger one build.
const DefaultDebounce = 500 * time.Millisecond

// runPipeline is swapped in tests to observe rebuild triggers.
//
//nolint:gochecknoglobals // Test seam, set only from this package's tests.
var runPipeline = packager.Run

// Options controls the rebuild-on-change loop.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// Debounce overrides the default quiet period before a rebuild.
	Debounce time.Duration
}

// Run watches the entry script and icon for changes and reruns the full
// pipeline after each change, until the context is cancelled. Builds are
// sequential: a change arriving mid-build queues at most one more run.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pdfcsv-watcher")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = config.Validate(cfg); err != nil {
		return err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = watcher.Close()
	}()

	watchDir := filepath.Dir(cfg.EntryScript)
	if err = watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watch %s: %w", watchDir, err)
	}

	logger.InfoKV(ctx, "Watching for changes",
		"directory", watchDir, "entry_script", cfg.EntryScript)

	return watchLoop(ctx, watcher, cfg, opts, debounce)
}

// watchLoop runs the event loop until cancellation.
func watchLoop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	cfg *config.Config,
	opts *Options,
	debounce time.Duration,
) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, cfg) {
				continue
			}

			logger.DebugKV(ctx, "Change detected", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Watcher error", "error", watchErr)

		case <-timerC:
			timer = nil
			timerC = nil

			if err := runPipeline(ctx, &packager.Options{ConfigPath: opts.ConfigPath}); err != nil {
				// Keep watching: the next save gets another chance.
				logger.ErrorKV(ctx, "Rebuild failed", "error", err)
			}
		}
	}
}

// isRelevant reports whether the event touches the entry script or icon.
func isRelevant(event fsnotify.Event, cfg *config.Config) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	name := filepath.Base(event.Name)
	if name == filepath.Base(cfg.EntryScript) {
		return true
	}

	return cfg.Icon != "" && name == filepath.Base(cfg.Icon)
}
