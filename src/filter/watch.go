package filter

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must stay quiet before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Watch builds inputDir once, then rebuilds after changes under it settle
// for debounce. Every build result is handed to onBuild. Watch returns nil
// when ctx is cancelled.
func (f *Filter) Watch(ctx context.Context, inputDir, outputDir string, debounce time.Duration, onBuild func(*Result, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := watchTree(w, in, out); err != nil {
		return err
	}

	onBuild(f.Build(ctx, in, out))

	var (
		timer *time.Timer
		fire  <-chan time.Time
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

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || within(out, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watchTree(w, ev.Name, out); err != nil {
						f.Logger.Warn().Err(err).Str("path", ev.Name).Msg("cannot watch new directory")
					}
				}
			}
			f.Logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.Logger.Warn().Err(err).Msg("watch error")

		case <-fire:
			fire = nil
			onBuild(f.Build(ctx, in, out))
		}
	}
}

// watchTree adds root and every directory below it, except skip.
func watchTree(w *fsnotify.Watcher, root, skip string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == skip {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func within(dir, path string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
