package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchLayoutsDir watches the custom layouts directory and invokes reload
// when files change. Events are debounced because editors produce bursts of
// writes and renames for a single save.
func watchLayoutsDir(ctx context.Context, dir string, reload func(), logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		const debounce = 300 * time.Millisecond
		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					timerC = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounce)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				logger.Info("layouts directory changed, reloading", "dir", dir)
				reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("layouts watcher error", "error", err)
			}
		}
	}()
	return nil
}
