// Package fs is the low-level, non-reactive OS abstraction that the reactive
// filesystem (internal/reactivefs) is built on top of. It plays the same role
// the teacher's internal/fs package does for esbuild — a thin seam between
// "a path string" and "bytes on disk" that can be swapped for an in-memory
// mock in tests — generalized here to report raw symlink targets (rather
// than pre-resolving them), since the reactive layer needs to see the
// un-followed link to register the right set of invalidators (spec §3
// "LinkContent").
package fs

import (
	"context"
	"os"
	"sort"
	"strings"

	"golang.org/x/sync/semaphore"
)

// EntryKind classifies one raw directory entry.
type EntryKind uint8

const (
	FileEntry EntryKind = iota
	DirEntry
	SymlinkEntry
	OtherEntry
)

// Entry is one named child of a directory listing.
type Entry struct {
	Name string
	Kind EntryKind
}

// FS is the raw, unmemoized filesystem surface. All disk-touching methods
// respect the package-level IO concurrency gate (see AcquireIOSlot).
type FS interface {
	ReadFile(path string) (contents []byte, err error)
	ReadDir(path string) (entries []Entry, err error)
	// ReadLink returns the raw (un-resolved) target of a symlink.
	ReadLink(path string) (target string, err error)
	Lstat(path string) (os.FileInfo, error)
	ModKey(path string) (ModKey, error)
	WriteFile(path string, contents []byte, perm os.FileMode) error
	WriteLink(path string, target string) error
	MkdirAll(path string) error
}

// ModKey is a cheap, OS-dependent fingerprint of a file's metadata, used to
// short-circuit re-reads of files whose content is very likely unchanged.
// See spec §6 "Supplemented features".
type ModKey struct {
	inode      uint64
	size       int64
	mtime_sec  int64
	mtime_nsec int64
	mode       uint32
	uid        uint32
}

const modKeySafetyGap = 3 // seconds; see modkey_unix.go / modkey_other.go

var modKeyUnusable = modKeyUnusableErr{}

type modKeyUnusableErr struct{}

func (modKeyUnusableErr) Error() string { return "the modification key is unusable" }

// ioSemaphore gates concurrent disk operations, sized once at process start
// from NEXT_TURBOPACK_IO_CONCURRENCY (spec §5, §6). This replaces the
// teacher's bare buffered-channel "fileOpenLimit" with a weighted semaphore
// from golang.org/x/sync, which additionally supports context cancellation.
var ioSemaphore = semaphore.NewWeighted(int64(readIOConcurrency()))

func readIOConcurrency() int {
	const defaultConcurrency = 256
	v := os.Getenv("NEXT_TURBOPACK_IO_CONCURRENCY")
	if v == "" {
		return defaultConcurrency
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return defaultConcurrency
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return defaultConcurrency
	}
	return n
}

// AcquireIOSlot blocks until a disk-operation permit is available. The
// returned func releases it. Every FS implementation's disk-touching methods
// call this, matching spec §5's "bounded to N ... disk-op semaphore".
func AcquireIOSlot() func() {
	_ = ioSemaphore.Acquire(context.Background(), 1)
	return func() { ioSemaphore.Release(1) }
}

func sortedEntryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

func lowerName(name string) string { return strings.ToLower(name) }
