package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce absorbs the burst of events editors emit for one save.
const reloadDebounce = 150 * time.Millisecond

// ReloadFunc receives the outcome of every reload. On error cfg is the
// previous, still active configuration.
type ReloadFunc func(cfg Config, err error)

// Watch reloads the provider whenever its config file is written, created,
// replaced or removed, until ctx is cancelled. A removed file is reported
// through onReload with ErrConfigMissing. The parent directory is watched so that
// atomic rename-style saves are seen too.
func (p *Provider) Watch(ctx context.Context, onReload ReloadFunc) error {
	if p.path == "" {
		return fmt.Errorf("watch config: no config path")
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config %s: %w", dir, err)
	}

	go p.watchLoop(ctx, watcher, onReload)
	return nil
}

func (p *Provider) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onReload ReloadFunc) {
	defer watcher.Close()
	target := filepath.Clean(p.path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				pending = time.After(reloadDebounce)
			}
		case <-pending:
			pending = nil
			cfg, err := p.Reload()
			if onReload != nil {
				onReload(cfg, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if onReload != nil {
				onReload(p.Current(), fmt.Errorf("watch config: %w", err))
			}
		}
	}
}
