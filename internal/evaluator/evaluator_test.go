package evaluator

import (
	"testing"

	"github.com/jsreactor/engine/internal/ast"
	"github.com/jsreactor/engine/internal/effect"
	"github.com/jsreactor/engine/internal/jsast"
	"github.com/jsreactor/engine/internal/resolver"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) effect.Graph {
	t.Helper()
	program, err := jsast.Parse([]byte(src))
	require.NoError(t, err)
	return effect.Analyze(program)
}

func TestLinkRequireProducesCjsRequireReference(t *testing.T) {
	refs, diags := Link(analyze(t, `require("./foo");`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.Equal(t, ast.CjsRequire, refs[0].Kind)
	require.Equal(t, resolver.RequestRelative, refs[0].Request.Kind)
	require.Equal(t, "./foo", refs[0].Request.Path)
}

func TestLinkDynamicImportProducesEsmAsyncReference(t *testing.T) {
	refs, diags := Link(analyze(t, `import("./lazy");`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.Equal(t, ast.EsmAsyncAssetReference, refs[0].Kind)
	require.Equal(t, "./lazy", refs[0].Request.Path)
}

func TestLinkRequireResolveProducesCjsRequireResolveReference(t *testing.T) {
	refs, diags := Link(analyze(t, `require.resolve("./foo");`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.Equal(t, ast.CjsRequireResolve, refs[0].Kind)
}

func TestLinkNewURLProducesUrlAssetReference(t *testing.T) {
	refs, diags := Link(analyze(t, `new URL("./asset.png", import.meta.url);`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.Equal(t, ast.UrlAssetReference, refs[0].Kind)
	require.Equal(t, "./asset.png", refs[0].Request.Path)
}

func TestLinkNewWorkerProducesWorkerAssetReference(t *testing.T) {
	refs, diags := Link(analyze(t, `new Worker("./worker.js");`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.Equal(t, ast.WorkerAssetReference, refs[0].Kind)
}

func TestLinkNonConstantArgumentProducesDiagnostic(t *testing.T) {
	refs, diags := Link(analyze(t, "require(someDynamicVariable);"))
	require.Empty(t, refs)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "very dynamic")
}

func TestLinkIgnoredCallProducesNoReferenceOrDiagnostic(t *testing.T) {
	refs, diags := Link(analyze(t, "// turbopackIgnore\nrequire(someDynamicVariable);"))
	require.Empty(t, refs)
	require.Empty(t, diags)
}

func TestLinkRequireInTryIsMarked(t *testing.T) {
	refs, diags := Link(analyze(t, `try { require("./optional"); } catch (e) {}`))
	require.Empty(t, diags)
	require.Len(t, refs, 1)
	require.True(t, refs[0].InTry)
}
