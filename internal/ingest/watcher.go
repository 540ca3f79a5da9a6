package ingest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/cufe-extractor/constants"
)

type WatchConfig struct {
	Dir      string        // directory to watch (not recursive)
	Debounce time.Duration // coalesce create/write bursts per file
	Logger   *slog.Logger
}

// StartWatcher emits PDF paths created or rewritten in cfg.Dir. A path is
// emitted once its events have been quiet for cfg.Debounce. Both channels are
// closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		logger.Error("watcher start failed: no directory provided")
		return nil, nil, errors.New("no directory provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		logger.Error("failed to watch directory", "dir", cfg.Dir, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	evCh := make(chan string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		// path -> time of the last event seen for it
		pending := map[string]time.Time{}
		tick := time.NewTicker(tickInterval(cfg.Debounce))
		defer tick.Stop()

		flush := func(now time.Time) bool {
			for p, last := range pending {
				if now.Sub(last) < cfg.Debounce {
					continue
				}
				select {
				case evCh <- p:
					delete(pending, p)
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if !constants.IsAllowedExt(filepath.Ext(e.Name)) || (!e.Has(fsnotify.Create) && !e.Has(fsnotify.Write)) {
					continue
				}
				logger.Debug("watch event", "path", e.Name, "op", e.Op.String())
				pending[e.Name] = time.Now()
				if cfg.Debounce <= 0 && !flush(time.Now()) {
					return
				}
			case now := <-tick.C:
				if !flush(now) {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func tickInterval(debounce time.Duration) time.Duration {
	if d := debounce / 4; d >= 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}
