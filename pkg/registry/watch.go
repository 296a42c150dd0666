package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events per modal.
const DefaultDebounce = 100 * time.Millisecond

// Watch invalidates cached configurations whose files change under dir until
// ctx is cancelled. Newly created files are added to the catalog. It blocks;
// run it in its own goroutine.
func (r *Registry) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("registry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("registry: watch %s: %w", dir, err)
	}
	r.logger.Info("registry: watching", "dir", dir)

	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, timer := range timers {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsConfigFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := ModalName(filepath.Base(event.Name))
			if event.Has(fsnotify.Create) {
				r.markKnown(name)
			}
			mu.Lock()
			if timer, exists := timers[name]; exists {
				timer.Stop()
			}
			timers[name] = time.AfterFunc(DefaultDebounce, func() {
				r.Invalidate(name)
				r.logger.Info("registry: configuration changed", "name", name)
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("registry: watcher error", "err", err)
		}
	}
}
