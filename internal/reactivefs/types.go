// Package reactivefs is the invalidation-aware filesystem layer described in
// spec §3/§4.C. It sits on top of the raw internal/fs abstraction the same
// way esbuild's resolver sits on top of internal/fs: every read goes through
// here so that callers can be told exactly when a previously-read answer
// might be stale.
//
// A Task is whatever unit of work the embedding reactive runtime uses
// (spec §6 treats the runtime itself as an external collaborator); this
// package only needs a TaskHandle capable of naming itself and invalidating
// itself, mirroring how logger.Log in the teacher codebase is handed an
// AddMsg callback instead of owning a concrete message sink.
package reactivefs

import (
	"os"

	"github.com/jsreactor/engine/internal/fspath"
)

// TaskHandle identifies the caller of a read operation well enough to be
// re-invoked if the data it read becomes stale.
type TaskHandle interface {
	ID() string
	Invalidate()
}

// FileContentKind discriminates the FileContent sum type (spec §3).
type FileContentKind uint8

const (
	FileContentNotFound FileContentKind = iota
	FileContentPresent
)

// FileMeta is the metadata tracked alongside file bytes.
type FileMeta struct {
	Permissions os.FileMode
	ContentType string
}

// File is the present-content case of FileContent.
type File struct {
	Content []byte
	Meta    FileMeta
}

// FileContent is read_file's result type: either a present File or NotFound.
// It deliberately has no error case — I/O errors other than "not found" are
// returned as a Go error alongside it, matching the raw internal/fs.FS
// contract it is built on.
type FileContent struct {
	Kind FileContentKind
	File File
}

func (c FileContent) IsPresent() bool { return c.Kind == FileContentPresent }

// LinkContentKind discriminates the LinkContent sum type (spec §3).
type LinkContentKind uint8

const (
	LinkNotFound LinkContentKind = iota
	LinkInvalid
	LinkPresent
)

// LinkFlags records what kind of target a symlink points at, determined at
// read time (so that later resolution doesn't need to stat again).
type LinkFlags struct {
	Directory bool
	Absolute  bool
}

// LinkContent is read_link's result type (spec §3): Present carries the raw,
// un-resolved target text exactly as stored on disk.
type LinkContent struct {
	Kind   LinkContentKind
	Target string
	Flags  LinkFlags
}

// DirEntryKind classifies one entry of a directory listing.
type DirEntryKind uint8

const (
	EntryFile DirEntryKind = iota
	EntryDirectory
	EntrySymlink
	EntryOther
)

// DirectoryListing is raw_read_dir's result type: a snapshot of names to
// kinds, sorted for deterministic iteration (spec §3).
type DirectoryListing struct {
	Names   []string
	Kinds   map[string]DirEntryKind
	Present bool // false if the directory itself does not exist
}

// RealPathResult is realpath's result type (spec §3): the fully-resolved
// path plus the chain of symlinks that had to be dereferenced to get there.
// The chain is what the invalidator needs: a change to any link along it
// must re-trigger resolution.
type RealPathResult struct {
	Path     fspath.FsPath
	Kind     DirEntryKind
	Symlinks []fspath.FsPath
}
