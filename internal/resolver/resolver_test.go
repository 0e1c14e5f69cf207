package resolver

import (
	"testing"

	"github.com/jsreactor/engine/internal/config"
	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/reactivefs"
	"github.com/stretchr/testify/require"
)

func newTestResolver(files map[string]string, opts config.ResolveOptions) (*Resolver, fspath.FsPath) {
	mock := rawfs.NewMockFS(files)
	fsys := reactivefs.New(0, "/app", mock)
	return New(fsys, opts), fspath.Root(0)
}

func firstSource(t *testing.T, result ResolveResult) fspath.FsPath {
	t.Helper()
	require.NotEmpty(t, result.Primary)
	for _, e := range result.Primary {
		if e.Item.Kind == ItemSource {
			return e.Item.Source
		}
	}
	t.Fatalf("no source item in result: %+v", result)
	return fspath.FsPath{}
}

func TestResolveRelativeSingleFileWithExtension(t *testing.T) {
	r, root := newTestResolver(map[string]string{
		"/app/src/util.ts": "export const x = 1",
	}, config.Default())

	result := r.Resolve(nil, root, Request{Kind: RequestRelative, Path: "./src/util"})
	require.False(t, result.IsUnresolvable())
	require.Equal(t, "src/util.ts", firstSource(t, result).Path)
}

func TestResolveModuleExportsFieldRespectsConditions(t *testing.T) {
	files := map[string]string{
		"/app/node_modules/pkg/package.json": `{
			"name": "pkg",
			"exports": {
				".": { "import": "./esm.js", "require": "./cjs.js" }
			}
		}`,
		"/app/node_modules/pkg/esm.js": "export default 1",
		"/app/node_modules/pkg/cjs.js": "module.exports = 1",
	}

	opts := config.Default()
	opts.IntoPackage = []config.IntoPackageRule{
		{Kind: config.IntoPackageExportsField, Conditions: []string{"import", "default"}},
	}
	r, root := newTestResolver(files, opts)
	result := r.Resolve(nil, root, Request{Kind: RequestModule, Module: "pkg"})
	require.False(t, result.IsUnresolvable())
	require.Equal(t, "node_modules/pkg/esm.js", firstSource(t, result).Path)

	opts.IntoPackage = []config.IntoPackageRule{
		{Kind: config.IntoPackageExportsField, Conditions: []string{"require", "default"}},
	}
	r2, root2 := newTestResolver(files, opts)
	result2 := r2.Resolve(nil, root2, Request{Kind: RequestModule, Module: "pkg"})
	require.False(t, result2.IsUnresolvable())
	require.Equal(t, "node_modules/pkg/cjs.js", firstSource(t, result2).Path)
}

func TestResolveAliasImportMapMatchesDirectRelative(t *testing.T) {
	files := map[string]string{
		"/app/src/widget.ts": "export const Widget = 1",
	}
	opts := config.Default()
	r, root := newTestResolver(files, opts)
	r.SetImportMap(&ImportMap{Entries: []ImportMapEntry{
		{Prefix: "@/", Suffix: "", Template: "./src/*"},
	}})

	aliased := r.Resolve(nil, root, Request{Kind: RequestRaw, Path: "@/widget"})
	direct := r.Resolve(nil, root, Request{Kind: RequestRelative, Path: "./src/widget"})

	require.False(t, aliased.IsUnresolvable())
	require.False(t, direct.IsUnresolvable())
	require.Equal(t, firstSource(t, direct).Path, firstSource(t, aliased).Path)
}

func TestResolveMissingRelativeProducesError(t *testing.T) {
	r, root := newTestResolver(map[string]string{"/app/a.ts": "export {}"}, config.Default())
	result := r.Resolve(nil, root, Request{Kind: RequestRelative, Path: "./missing"})
	require.True(t, result.IsUnresolvable())
}

func TestResolvePackageInternalImportsField(t *testing.T) {
	files := map[string]string{
		"/app/package.json": `{
			"name": "app",
			"imports": { "#util": "./src/util.ts" }
		}`,
		"/app/src/util.ts": "export {}",
	}
	r, root := newTestResolver(files, config.Default())
	srcDir, _ := root.Join("src")
	result := r.Resolve(nil, srcDir, Request{Kind: RequestPackageInternal, Internal: "util"})
	require.False(t, result.IsUnresolvable())
	require.Equal(t, "src/util.ts", firstSource(t, result).Path)
}
