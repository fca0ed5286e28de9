package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
)

// watchDebounce coalesces editor save bursts into one rebuild.
const watchDebounce = 300 * time.Millisecond

// sourceWatcher monitors the content tree and the manifest for changes.
// Directories are watched rather than individual files so editors that
// replace files on save (vim, VS Code) are still seen.
type sourceWatcher struct {
	contentDir   string
	manifestPath string
	fsw          *fsnotify.Watcher
	onChange     func(path string)
	log          *slog.Logger
	debounce     time.Duration

	mu       sync.Mutex
	pending  *time.Timer
	lastPath string
}

func newSourceWatcher(contentDir, manifestPath string, onChange func(string), log *slog.Logger) (*sourceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	sw := &sourceWatcher{
		contentDir:   contentDir,
		manifestPath: manifestPath,
		fsw:          fsw,
		onChange:     onChange,
		log:          log,
		debounce:     watchDebounce,
	}
	if err := sw.addTree(contentDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(manifestPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch manifest directory: %w", err)
	}
	return sw, nil
}

// addTree watches root and every directory below it.
func (sw *sourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := sw.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// run pumps filesystem events until the context ends or the watcher closes.
func (sw *sourceWatcher) run(ctx context.Context) {
	defer sw.stopPending()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sw.fsw.Events:
			if !ok {
				return
			}
			sw.handle(ev)
		case err, ok := <-sw.fsw.Errors:
			if !ok {
				return
			}
			sw.log.Warn("file watcher error", logfields.Error(err))
		}
	}
}

func (sw *sourceWatcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories inside the content tree join the watch so files
	// created in them are seen. Anything else (output dir, staging dir)
	// stays unwatched.
	if ev.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if sw.underContent(ev.Name) {
				if err := sw.addTree(ev.Name); err != nil {
					sw.log.Warn("watch new directory failed",
						logfields.Path(ev.Name), logfields.Error(err))
				}
			}
			return
		}
	}

	if !sw.relevant(ev.Name) {
		return
	}
	sw.log.Debug("source event",
		logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	sw.schedule(ev.Name)
}

// relevant reports whether a changed path should trigger a rebuild: the
// manifest itself, or markdown under the content tree.
func (sw *sourceWatcher) relevant(name string) bool {
	clean := filepath.Clean(name)
	if clean == sw.manifestPath {
		return true
	}
	return strings.HasSuffix(clean, ".md") && sw.underContent(clean)
}

func (sw *sourceWatcher) underContent(name string) bool {
	rel, err := filepath.Rel(sw.contentDir, filepath.Clean(name))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// schedule arms (or re-arms) the debounce timer for one change notification.
func (sw *sourceWatcher) schedule(path string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.lastPath = path
	if sw.pending != nil {
		sw.pending.Stop()
	}
	sw.pending = time.AfterFunc(sw.debounce, func() {
		sw.mu.Lock()
		p := sw.lastPath
		sw.mu.Unlock()
		sw.onChange(p)
	})
}

func (sw *sourceWatcher) stopPending() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.pending != nil {
		sw.pending.Stop()
		sw.pending = nil
	}
}

func (sw *sourceWatcher) Close() error {
	sw.stopPending()
	return sw.fsw.Close()
}
