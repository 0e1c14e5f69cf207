package reactivefs

import (
	"fmt"
	"strings"

	"github.com/jsreactor/engine/internal/fspath"
)

// maxSymlinkDepth bounds realpath's symlink-following loop, matching every
// Unix libc's ELOOP behavior instead of hanging on a cycle (spec §4.C
// "Supplemented features").
const maxSymlinkDepth = 40

// ErrSymlinkLoop is returned by RealPath when more than maxSymlinkDepth
// symlinks have to be followed to resolve a path.
type ErrSymlinkLoop struct{ Path fspath.FsPath }

func (e ErrSymlinkLoop) Error() string {
	return fmt.Sprintf("reactivefs: too many levels of symbolic links resolving %q", e.Path.Path)
}

// RealPath implements spec §3 realpath: resolve every symlink along p,
// component by component, returning the final concrete path, its kind, and
// the ordered chain of symlinks that were followed. The chain is what a
// caller should subscribe to for invalidation: a change to any link in it
// must re-trigger resolution, not just a change to the final target.
func (f *FS) RealPath(p fspath.FsPath, task TaskHandle) (RealPathResult, error) {
	segments := splitPath(p.Path)
	resolved := fspath.Root(p.Fs)
	var chain []fspath.FsPath
	depth := 0

	for i := 0; i < len(segments); i++ {
		next, ok := resolved.Join(segments[i])
		if !ok {
			return RealPathResult{}, fmt.Errorf("reactivefs: %q escapes filesystem root", p.Path)
		}

		link, err := f.ReadLink(next, task)
		if err != nil {
			return RealPathResult{}, err
		}
		switch link.Kind {
		case LinkNotFound, LinkInvalid:
			// Not a symlink (or absent): keep the component as is.
			resolved = next
		case LinkPresent:
			depth++
			if depth > maxSymlinkDepth {
				return RealPathResult{}, ErrSymlinkLoop{Path: p}
			}
			chain = append(chain, next)

			var target fspath.FsPath
			if link.Flags.Absolute {
				target, ok = fspath.Root(p.Fs).Join(link.Target)
			} else {
				base, hasParent := next.Parent()
				if !hasParent {
					base = fspath.Root(p.Fs)
				}
				target, ok = base.Join(link.Target)
			}
			if !ok {
				return RealPathResult{}, fmt.Errorf("reactivefs: symlink %q escapes filesystem root", next.Path)
			}

			// Splice the remaining unresolved segments behind the link's own
			// (possibly multi-segment) target and continue resolving from there.
			rest := segments[i+1:]
			segments = append(splitPath(target.Path), rest...)
			resolved = fspath.Root(p.Fs)
			i = -1
		}
	}

	kind := EntryFile
	if listing, err := f.ReadDir(resolved, nil); err == nil && listing.Present {
		kind = EntryDirectory
	}
	return RealPathResult{Path: resolved, Kind: kind, Symlinks: chain}, nil
}

func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
