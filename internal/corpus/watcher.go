package corpus

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the corpus directory and reloads the
// snapshot when reference files change, until ctx is cancelled. Bursts of
// events (editors write several times per save) are debounced into a single
// reload.
func Watch(ctx context.Context, d *Dir, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(d.root); err != nil {
		return err
	}

	logger.Info("corpus watcher: started", slog.String("root", d.root))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("corpus watcher: stopped")
			return nil

		case <-reloadCh:
			if err := d.Reload(); err != nil {
				logger.Warn("corpus watcher: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Info("corpus watcher: corpus reloaded", slog.Int("references", d.Len()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("corpus watcher: error", slog.String("error", err.Error()))
		}
	}
}
