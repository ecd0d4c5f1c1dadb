package generate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/gopreserve/internal/logging"
)

// DefaultDebounce is how long Watch waits for the staging tree to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls fn whenever files below dirs change, once no further event arrived for
// debounce. Errors returned by fn are logged and watching continues. Watch returns nil
// when ctx is done.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, fn func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("closing watcher failed", logging.FieldError, err)
		}
	}()

	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return err
		}
	}
	logger.Info("watching for changes", logging.FieldPaths, dirs)

	var (
		timer  *time.Timer
		settle <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
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
			if event.Op == fsnotify.Chmod || hidden(filepath.Base(event.Name)) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("cannot watch directory", logging.FieldPath, event.Name, logging.FieldError, err)
					}
				}
			}
			logger.Debug("change detected", logging.FieldPath, event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			settle = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.FieldError, err)

		case <-settle:
			settle = nil
			if err := fn(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("pass failed", logging.FieldError, err)
			}
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path != dir && (errors.Is(walkErr, fs.ErrPermission) || errors.Is(walkErr, fs.ErrNotExist)) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && hidden(entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
