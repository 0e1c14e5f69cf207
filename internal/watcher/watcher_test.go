package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/reactivefs"
)

type chanTask struct{ ch chan struct{} }

func (c chanTask) ID() string { return "watch-test" }
func (c chanTask) Invalidate() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func waitSignal(ch <-chan struct{}, timeout time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestFileWriteInvalidates(t *testing.T) {
	dir := t.TempDir()
	rfs := reactivefs.New(0, dir, rawfs.RealFS())
	w := New(rfs)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	task := chanTask{ch: make(chan struct{}, 10)}
	p := fspath.FsPath{Path: "main.ts"}
	if _, err := rfs.Read(p, task); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "main.ts"), []byte("export {}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitSignal(task.ch, 2*time.Second) {
		t.Fatal("expected invalidation after file write, got none")
	}
}

func TestIgnoredDirectoriesNotWatched(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".git", "node_modules"} {
		os.MkdirAll(filepath.Join(dir, name), 0755)
	}

	rfs := reactivefs.New(0, dir, rawfs.RealFS())
	w := New(rfs)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	task := chanTask{ch: make(chan struct{}, 10)}
	if _, err := rfs.Read(fspath.FsPath{Path: ".git/HEAD"}, task); err != nil {
		t.Fatal(err)
	}
	if _, err := rfs.Read(fspath.FsPath{Path: "node_modules/pkg/index.js"}, task); err != nil {
		t.Fatal(err)
	}

	os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main"), 0644)
	os.MkdirAll(filepath.Join(dir, "node_modules", "pkg"), 0755)
	os.WriteFile(filepath.Join(dir, "node_modules", "pkg", "index.js"), []byte("module.exports = {}"), 0644)

	if waitSignal(task.ch, 500*time.Millisecond) {
		t.Fatal("expected no invalidation for files in ignored directories")
	}
}

func TestNewSubdirectoryWatched(t *testing.T) {
	dir := t.TempDir()
	rfs := reactivefs.New(0, dir, rawfs.RealFS())
	w := New(rfs)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	subdir := filepath.Join(dir, "routes", "dashboard")
	os.MkdirAll(subdir, 0755)
	time.Sleep(200 * time.Millisecond)

	task := chanTask{ch: make(chan struct{}, 10)}
	p := fspath.FsPath{Path: "routes/dashboard/index.ts"}
	if _, err := rfs.Read(p, task); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(subdir, "index.ts"), []byte("export {}"), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitSignal(task.ch, 2*time.Second) {
		t.Fatal("expected invalidation for file in newly-created subdirectory")
	}
}
