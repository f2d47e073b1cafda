// Package watch re-runs a callback when Solidity sources under a project change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// skipDirs are never descended into; they hold build output or vendored code.
var skipDirs = map[string]bool{
	"out":          true,
	"cache":        true,
	"lib":          true,
	"node_modules": true,
	"broadcast":    true,
}

type Watcher struct {
	root     string
	dirs     []string
	debounce time.Duration
	logger   *zap.Logger
	onChange func(ctx context.Context) error

	ready func() // test hook, called once the initial trees are registered
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *zap.Logger) Option { return func(w *Watcher) { w.logger = l } }

// New watches the given directories (relative to root) and calls onChange
// once per burst of .sol changes.
func New(root string, dirs []string, onChange func(ctx context.Context) error, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		dirs:     dirs,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		onChange: onChange,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run blocks until ctx is cancelled. Callback errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs {
		w.addTree(fw, filepath.Join(w.root, d))
	}
	if w.ready != nil {
		w.ready()
	}

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addTree(fw, ev.Name)
					pending = time.Now()
					continue
				}
			}
			if relevant(ev) {
				w.logger.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				pending = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			if err := w.onChange(ctx); err != nil {
				w.logger.Warn("regenerate failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("watch add failed", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		w.logger.Debug("watch tree skipped", zap.String("dir", dir), zap.Error(err))
	}
}

// relevant reports whether ev touches a Solidity file in a way that can
// change the report. Chmod-only events are ignored.
func relevant(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, ".sol") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
