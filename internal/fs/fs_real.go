package fs

import (
	"io/fs"
	"os"
	"sort"
	"syscall"
)

type realFS struct{}

// RealFS returns an FS backed by the OS. The path argument to every method is
// expected to already be an absolute, OS-native path (fspath.FsPath values are
// converted to OS paths by the reactive layer before reaching here).
func RealFS() FS { return realFS{} }

func (realFS) ReadFile(path string) ([]byte, error) {
	release := AcquireIOSlot()
	defer release()
	b, err := os.ReadFile(extendedLengthPath(path))
	if err != nil {
		return nil, canonicalizeError(err)
	}
	return b, nil
}

func (realFS) ReadDir(path string) ([]Entry, error) {
	release := AcquireIOSlot()
	defer release()
	des, err := os.ReadDir(extendedLengthPath(path))
	if err != nil {
		return nil, canonicalizeError(err)
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		kind := FileEntry
		switch {
		case de.Type()&fs.ModeSymlink != 0:
			kind = SymlinkEntry
		case de.IsDir():
			kind = DirEntry
		case !de.Type().IsRegular():
			kind = OtherEntry
		}
		entries = append(entries, Entry{Name: de.Name(), Kind: kind})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (realFS) ReadLink(path string) (string, error) {
	release := AcquireIOSlot()
	defer release()
	target, err := os.Readlink(extendedLengthPath(path))
	if err != nil {
		return "", canonicalizeError(err)
	}
	return target, nil
}

func (realFS) Lstat(path string) (os.FileInfo, error) {
	release := AcquireIOSlot()
	defer release()
	info, err := os.Lstat(extendedLengthPath(path))
	if err != nil {
		return nil, canonicalizeError(err)
	}
	return info, nil
}

func (realFS) ModKey(path string) (ModKey, error) {
	release := AcquireIOSlot()
	defer release()
	return modKey(extendedLengthPath(path))
}

func (realFS) WriteFile(path string, contents []byte, perm os.FileMode) error {
	release := AcquireIOSlot()
	defer release()
	if err := os.WriteFile(extendedLengthPath(path), contents, perm); err != nil {
		return canonicalizeError(err)
	}
	return nil
}

func (realFS) WriteLink(path string, target string) error {
	release := AcquireIOSlot()
	defer release()
	_ = os.Remove(extendedLengthPath(path))
	if err := os.Symlink(target, extendedLengthPath(path)); err != nil {
		return canonicalizeError(err)
	}
	return nil
}

func (realFS) MkdirAll(path string) error {
	release := AcquireIOSlot()
	defer release()
	if err := os.MkdirAll(extendedLengthPath(path), 0o755); err != nil {
		return canonicalizeError(err)
	}
	return nil
}

// extendedLengthPath canonicalizes paths exceeding the platform's length
// limit to the Windows extended-length form ("\\?\..."), per spec §4.C
// "Windows long-path handling is internal". It is a no-op on platforms
// without such a limit.
func extendedLengthPath(path string) string {
	return maybeExtendedLengthPath(path)
}

// canonicalizeError folds platform-specific "not found"-ish errors into a
// single syscall.ENOENT so callers can treat them uniformly (spec §7:
// "Transient FS: NotFound / NotADirectory / InvalidFilename").
func canonicalizeError(err error) error {
	if pathErr, ok := err.(*fs.PathError); ok {
		err = pathErr.Unwrap()
	}
	if isWindowsInvalidName(err) {
		err = syscall.ENOENT
	}
	if err == syscall.ENOTDIR {
		err = syscall.ENOENT
	}
	return err
}
