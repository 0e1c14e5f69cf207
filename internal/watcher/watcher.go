// Package watcher drives an internal/reactivefs.FS's invalidation from real
// OS filesystem change notifications (spec §4.D). It is a generalization of
// rafbgarcia-rstf's internal/watcher package: instead of calling a
// typed-Event callback for a fixed set of extensions, it converts every
// relevant fsnotify event into an FsPath and invalidates the reactive FS
// directly, so any file under the watched root participates, not just the
// few extensions a dev server cares about.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/helpers"
	"github.com/jsreactor/engine/internal/reactivefs"
)

// debounceWindow mirrors rafbgarcia-rstf's 50ms quiet period: editors and
// package managers tend to touch several files in a single logical change
// (a save, an install), and re-running downstream work once per burst
// instead of once per syscall keeps it useful during active editing.
const debounceWindow = 50 * time.Millisecond

// Watcher watches one reactivefs.FS's root directory tree and calls its
// Invalidate/InvalidateSubtree methods as files change.
type Watcher struct {
	fs   *reactivefs.FS
	fsId fspath.FsId
	root string

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New builds a Watcher for fs. It does not start watching until Start is
// called.
func New(fs *reactivefs.FS) *Watcher {
	fsId, root := fs.Root()
	return &Watcher{fs: fs, fsId: fsId, root: root, done: make(chan struct{})}
}

// Start begins watching the directory tree rooted at the FS's root,
// recursively adding every non-ignored directory, then returns once the
// initial walk has completed. Events are processed on a background
// goroutine until Stop is called.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	err = filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for its event loop to exit.
func (w *Watcher) Stop() {
	if w.fsw != nil {
		w.fsw.Close()
	}
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]pendingInvalidation)
	timer := time.NewTimer(0)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if pi, ok := w.classify(ev); ok {
				existing := pending[pi.path.Path]
				pending[pi.path.Path] = pendingInvalidation{
					path:    pi.path,
					subtree: existing.subtree || pi.subtree,
				}
				timer.Reset(debounceWindow)
			}

		case <-timer.C:
			for _, pi := range pending {
				w.fs.Invalidate(pi.path)
				if pi.subtree {
					w.fs.InvalidateSubtree(pi.path)
				}
			}
			pending = make(map[string]pendingInvalidation)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Best-effort: a dropped fsnotify event means a consumer may read
			// stale content until its next unrelated invalidation. There is no
			// sensible recovery short of a full re-walk, which callers can
			// trigger themselves via InvalidateSubtree on the root.
		}
	}
}

type pendingInvalidation struct {
	path    fspath.FsPath
	subtree bool
}

// classify converts one fsnotify event into a pending invalidation. Newly
// created directories are walked and added to the watch list as a side
// effect, matching the teacher's toEvent.
func (w *Watcher) classify(ev fsnotify.Event) (pendingInvalidation, bool) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return pendingInvalidation{}, false
	}

	p, ok := w.toFsPath(ev.Name)
	if !ok || w.fs.IsDenied(p) {
		return pendingInvalidation{}, false
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.addRecursively(ev.Name)
			return pendingInvalidation{path: p, subtree: true}, true
		}
	}

	subtree := ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0
	return pendingInvalidation{path: p, subtree: subtree}, true
}

func (w *Watcher) addRecursively(dir string) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		w.fsw.Add(path)
		return nil
	})
}

func (w *Watcher) toFsPath(absPath string) (fspath.FsPath, bool) {
	rel, err := filepath.Rel(w.root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fspath.FsPath{}, false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return fspath.Root(w.fsId), true
	}
	return fspath.FsPath{Fs: w.fsId, Path: rel}, true
}

// shouldIgnoreDir mirrors rafbgarcia-rstf's hidden-directory and
// node_modules skip, generalized with helpers.IsInsideNodeModules so a
// nested node_modules (pnpm/yarn workspaces) is skipped too, not just a
// top-level one.
func (w *Watcher) shouldIgnoreDir(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") && path != w.root {
		return true
	}
	if name == "node_modules" {
		return true
	}
	if rel, err := filepath.Rel(w.root, path); err == nil {
		if helpers.IsInsideNodeModules(filepath.ToSlash(rel) + "/x") {
			return true
		}
	}
	return false
}
