package dirmatch

import (
	"testing"

	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/pattern"
	"github.com/jsreactor/engine/internal/reactivefs"
	"github.com/stretchr/testify/require"
)

func newTestFS(files map[string]string) *reactivefs.FS {
	mock := rawfs.NewMockFS(files)
	return reactivefs.New(0, "/app", mock)
}

func TestFastPathFindsExtensionMatch(t *testing.T) {
	fsys := newTestFS(map[string]string{
		"/app/foo.ts": "export {}",
		"/app/foo.js": "export {}",
	})
	pat := pattern.Alternatives(
		pattern.Concatenation(pattern.Constant("foo"), pattern.Constant(".ts")),
		pattern.Concatenation(pattern.Constant("foo"), pattern.Constant(".js")),
	)

	matches, err := ReadMatches(fsys, nil, fspath.Root(0), "", true, pat)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, KindFile, matches[0].Kind)
}

func TestSlowPathRecursesIntoDirectories(t *testing.T) {
	fsys := newTestFS(map[string]string{
		"/app/lib/a.ts": "export {}",
		"/app/lib/b.ts": "export {}",
	})
	pat := pattern.Concatenation(pattern.Constant("lib/"), pattern.Dyn, pattern.Constant(".ts"))

	matches, err := ReadMatches(fsys, nil, fspath.Root(0), "", true, pat)
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestNoMatchesReturnsEmpty(t *testing.T) {
	fsys := newTestFS(map[string]string{"/app/foo.ts": "export {}"})
	pat := pattern.Constant("bar.ts")

	matches, err := ReadMatches(fsys, nil, fspath.Root(0), "", true, pat)
	require.NoError(t, err)
	require.Empty(t, matches)
}
