//go:build !windows
// +build !windows

package fs

// maybeExtendedLengthPath is a no-op outside Windows, which has no MAX_PATH
// restriction to work around.
func maybeExtendedLengthPath(path string) string { return path }

func isWindowsInvalidName(err error) bool { return false }
