package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"
)

const watchDebounce = 100 * time.Millisecond

// watchFile calls onChange after every burst of writes to filename until
// ctx is done. Editors that save by renaming a new file into place are
// covered by watching the directory.
func watchFile(ctx context.Context, filename string, onChange func() error) error {
	log := commonlog.GetLogger("sqlgram.watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", filename, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("watch %s: %w", filename, err)
	}
	log.Infof("watching %s for changes", filename)

	target := filepath.Base(filename)
	changed := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debugf("%s: %s", event.Name, event.Op)

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			if err := onChange(); err != nil {
				log.Errorf("parse %s: %s", filename, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warningf("watch %s: %s", filename, err)
		}
	}
}
