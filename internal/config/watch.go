package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the write+rename bursts editors produce on save.
const debounce = 250 * time.Millisecond

// Watch reloads the config whenever the file at path changes and passes
// the result to fn. It watches the parent directory so atomic
// save-via-rename is picked up. Blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, fn func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			cfg, err := LoadFrom(path)
			if err != nil {
				log.Printf("config watch: reload failed: %v", err)
				continue
			}
			fn(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watch: %v", err)
		}
	}
}
