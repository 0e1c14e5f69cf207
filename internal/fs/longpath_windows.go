//go:build windows
// +build windows

package fs

import (
	"strings"
	"syscall"
)

// windowsMaxPath is conservative; the real limit depends on registry policy
// but anything near it benefits from the extended-length prefix.
const windowsMaxPath = 255

// maybeExtendedLengthPath rewrites an absolute path of windowsMaxPath bytes
// or more into its "\\?\" extended-length form, which lifts MAX_PATH
// restrictions in the Win32 API. See spec §4.C.
func maybeExtendedLengthPath(path string) string {
	if len(path) < windowsMaxPath || strings.HasPrefix(path, `\\?\`) {
		return path
	}
	if strings.HasPrefix(path, `\\`) {
		return `\\?\UNC\` + path[2:]
	}
	return `\\?\` + path
}

func isWindowsInvalidName(err error) bool {
	const errorInvalidName syscall.Errno = 123
	return err == errorInvalidName
}
