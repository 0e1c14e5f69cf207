package reactivefs

import (
	"sync/atomic"
	"testing"

	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
)

type testTask struct {
	id    string
	count int32
}

func (t *testTask) ID() string   { return t.id }
func (t *testTask) Invalidate()  { atomic.AddInt32(&t.count, 1) }
func (t *testTask) fired() int32 { return atomic.LoadInt32(&t.count) }

func newTestFS(files map[string]string) (*FS, *rawfs.MockFS) {
	mock := rawfs.NewMockFS(files)
	return New(0, "/app", mock), mock
}

func TestReadSubscribesAndInvalidates(t *testing.T) {
	f, mock := newTestFS(map[string]string{"/app/a.ts": "one"})
	task := &testTask{id: "t1"}

	p := fspath.FsPath{Path: "a.ts"}
	content, err := f.Read(p, task)
	if err != nil || !content.IsPresent() || string(content.File.Content) != "one" {
		t.Fatalf("got %+v %v", content, err)
	}
	if task.fired() != 0 {
		t.Fatalf("should not be invalidated yet")
	}

	mock.AddFile("/app/a.ts", "two")
	f.Invalidate(p)
	if task.fired() != 1 {
		t.Fatalf("expected exactly one invalidation, got %d", task.fired())
	}

	content, err = f.Read(p, nil)
	if err != nil || string(content.File.Content) != "two" {
		t.Fatalf("expected fresh read after invalidation, got %+v %v", content, err)
	}
}

func TestReadNotFound(t *testing.T) {
	f, _ := newTestFS(nil)
	content, err := f.Read(fspath.FsPath{Path: "missing.ts"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if content.IsPresent() {
		t.Fatalf("expected NotFound, got %+v", content)
	}
}

func TestWriteSkipsInvalidateWhenContentUnchanged(t *testing.T) {
	f, _ := newTestFS(map[string]string{"/app/a.ts": "same"})
	task := &testTask{id: "t1"}
	p := fspath.FsPath{Path: "a.ts"}

	if _, err := f.Read(p, task); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(p, []byte("same"), 0o644); err != nil {
		t.Fatal(err)
	}
	if task.fired() != 0 {
		t.Fatalf("write of identical content must not invalidate, fired=%d", task.fired())
	}

	if err := f.Write(p, []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}
	if task.fired() != 1 {
		t.Fatalf("write of different content must invalidate exactly once, fired=%d", task.fired())
	}
}

func TestDeniedPathReadsAsNotFound(t *testing.T) {
	f, _ := newTestFS(map[string]string{"/app/.git/HEAD": "ref: refs/heads/main"})
	f.SetDeniedPath(fspath.FsPath{Path: ".git"})

	content, err := f.Read(fspath.FsPath{Path: ".git/HEAD"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if content.IsPresent() {
		t.Fatalf("expected denied path to read as NotFound")
	}
}

func TestRealPathFollowsSymlinkChain(t *testing.T) {
	f, mock := newTestFS(map[string]string{"/app/real/target.ts": "x"})
	mock.AddSymlink("/app/link", "./real")

	res, err := f.RealPath(fspath.FsPath{Path: "link/target.ts"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Path.Path != "real/target.ts" {
		t.Fatalf("expected resolved path real/target.ts, got %q", res.Path.Path)
	}
	if len(res.Symlinks) != 1 || res.Symlinks[0].Path != "link" {
		t.Fatalf("expected one symlink in chain for %q, got %+v", "link", res.Symlinks)
	}
}

func TestRealPathDetectsLoop(t *testing.T) {
	f, mock := newTestFS(nil)
	mock.AddSymlink("/app/a", "./b")
	mock.AddSymlink("/app/b", "./a")

	_, err := f.RealPath(fspath.FsPath{Path: "a"}, nil)
	if err == nil {
		t.Fatal("expected a symlink loop error")
	}
	if _, ok := err.(ErrSymlinkLoop); !ok {
		t.Fatalf("expected ErrSymlinkLoop, got %T: %v", err, err)
	}
}

func TestReadDirListsEntries(t *testing.T) {
	f, _ := newTestFS(map[string]string{
		"/app/src/index.ts": "export {}",
		"/app/pkg.json":     "{}",
	})
	listing, err := f.ReadDir(fspath.FsPath{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if listing.Kinds["src"] != EntryDirectory {
		t.Fatalf("expected src to be a directory, got %+v", listing.Kinds)
	}
	if listing.Kinds["pkg.json"] != EntryFile {
		t.Fatalf("expected pkg.json to be a file, got %+v", listing.Kinds)
	}
}
