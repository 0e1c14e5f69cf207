// Package dirmatch implements spec §4.G's directory matcher: enumerating
// which entries under a directory satisfy a Pattern, via a fast path for
// patterns with a finite constant expansion and a slow path that walks the
// directory listing for everything else.
package dirmatch

import (
	"sort"
	"strings"

	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/pattern"
	"github.com/jsreactor/engine/internal/reactivefs"
)

type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

// Match is one hit: a name relative to dir plus its fully-qualified path.
type Match struct {
	Kind Kind
	Name string
	Path fspath.FsPath
}

// ReadMatches enumerates pattern hits within dir. prefix is the literal
// string already consumed against pat (e.g. a module name with no
// extension yet); force_in_lookup_dir, when false, also probes one level
// above dir.
func ReadMatches(fsys *reactivefs.FS, task reactivefs.TaskHandle, dir fspath.FsPath, prefix string, forceInLookupDir bool, pat pattern.Pattern) ([]Match, error) {
	var out []Match

	if consts, ok := pat.NextConstants(prefix); ok && fastPathEligible(consts) {
		matches, err := fastPath(fsys, task, dir, prefix, consts)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	} else {
		matches, err := slowPath(fsys, task, dir, prefix, pat)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}

	if !forceInLookupDir {
		if parent, ok := dir.Parent(); ok {
			upMatches, err := slowPath(fsys, task, parent, prefix+"../", pat)
			if err == nil {
				out = append(out, upMatches...)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return dedup(out), nil
}

// fastPathEligible mirrors spec §4.G's fast path, restricted to the subset
// that NextConstants can answer soundly: every candidate must fully
// terminate the pattern. NextConstants treats a Dynamic segment as an
// opaque skip rather than enumerating real directory names through it, so
// a "contains '/' but not End" candidate can't be turned into a real path
// without further (non-constant) directory listing; those fall through to
// the slow path instead of being misinterpreted as literal path segments.
func fastPathEligible(consts []pattern.ConstantMatch) bool {
	if len(consts) == 0 {
		return false
	}
	for _, c := range consts {
		if !c.End {
			return false
		}
	}
	return true
}

func fastPath(fsys *reactivefs.FS, task reactivefs.TaskHandle, dir fspath.FsPath, prefix string, consts []pattern.ConstantMatch) ([]Match, error) {
	listings := map[string]reactivefs.DirectoryListing{}
	var out []Match

	for _, c := range consts {
		full := prefix + c.Value
		if full == "" {
			continue
		}
		candidateDir, name := splitCandidate(full)
		parent, ok := dir.Join(candidateDir)
		if !ok {
			continue
		}
		listing, cached := listings[parent.Path]
		if !cached {
			var err error
			listing, err = fsys.ReadDir(parent, task)
			if err != nil {
				continue
			}
			listings[parent.Path] = listing
		}
		if !listing.Present {
			continue
		}
		entryKind, found := listing.Kinds[name]
		if !found {
			continue
		}
		fullPath, ok := parent.Join(name)
		if !ok {
			continue
		}
		kind, ok := classify(fsys, task, fullPath, entryKind)
		if !ok {
			continue
		}
		out = append(out, Match{Kind: kind, Name: full, Path: fullPath})
	}
	return out, nil
}

func splitCandidate(value string) (dir string, name string) {
	idx := strings.LastIndexByte(value, '/')
	if idx < 0 {
		return "", value
	}
	return value[:idx], value[idx+1:]
}

func slowPath(fsys *reactivefs.FS, task reactivefs.TaskHandle, dir fspath.FsPath, prefix string, pat pattern.Pattern) ([]Match, error) {
	listing, err := fsys.ReadDir(dir, task)
	if err != nil || !listing.Present {
		return nil, err
	}

	var out []Match
	for _, name := range listing.Names {
		entryKind := listing.Kinds[name]
		asFile := prefix + name
		asDir := asFile + "/"

		fullPath, ok := dir.Join(name)
		if !ok {
			continue
		}

		if pat.IsMatch(asFile) {
			kind, ok := classify(fsys, task, fullPath, entryKind)
			if ok {
				out = append(out, Match{Kind: kind, Name: asFile, Path: fullPath})
			}
		}

		if entryKind == reactivefs.EntryDirectory || entryKind == reactivefs.EntrySymlink {
			if pat.CouldMatch(asDir) {
				nested, err := slowPath(fsys, task, fullPath, asDir, pat)
				if err == nil {
					out = append(out, nested...)
				}
			}
		}
	}
	return out, nil
}

// classify resolves a symlink entry to file-or-directory via RealPath;
// plain entries pass through directly.
func classify(fsys *reactivefs.FS, task reactivefs.TaskHandle, p fspath.FsPath, entryKind reactivefs.DirEntryKind) (Kind, bool) {
	switch entryKind {
	case reactivefs.EntryFile:
		return KindFile, true
	case reactivefs.EntryDirectory:
		return KindDirectory, true
	case reactivefs.EntrySymlink:
		real, err := fsys.RealPath(p, task)
		if err != nil {
			return 0, false
		}
		switch real.Kind {
		case reactivefs.EntryFile:
			return KindFile, true
		case reactivefs.EntryDirectory:
			return KindDirectory, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

func dedup(matches []Match) []Match {
	seen := map[string]bool{}
	out := matches[:0]
	for _, m := range matches {
		key := string(rune(m.Kind)) + m.Path.Path
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}
