package assets

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchFiles calls onChange whenever one of paths is written, created or
// replaced, until ctx is done. Parent directories are watched so editors that
// save by rename are seen, and a directory path also reports its direct
// children. The returned channel closes once the watcher has stopped.
func WatchFiles(ctx context.Context, logger zerolog.Logger, paths []string, onChange func(path string)) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		wanted[abs] = true
		dirs[filepath.Dir(abs)] = true
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			dirs[abs] = true
		}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !wanted[event.Name] && !wanted[filepath.Dir(event.Name)] {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					logger.Debug().Str("file", event.Name).Msg("Static source changed")
					onChange(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("File watcher error")
			}
		}
	}()

	return done, nil
}
