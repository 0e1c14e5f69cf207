package effect

import (
	"testing"

	"github.com/jsreactor/engine/internal/jsast"
	"github.com/jsreactor/engine/internal/jsvalue"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) jsast.Node {
	t.Helper()
	n, err := jsast.Parse([]byte(src))
	require.NoError(t, err)
	return n
}

func TestAnalyzeRecordsRequireCall(t *testing.T) {
	graph := Analyze(parse(t, `require("./foo");`))
	require.Len(t, graph.Effects, 1)
	e := graph.Effects[0]
	require.Equal(t, EffectCall, e.Kind)
	require.Equal(t, jsvalue.KindWellKnownFunction, e.Callee.Kind)
	require.Equal(t, jsvalue.WellKnownRequire, e.Callee.WellKnownFunction)
	require.Len(t, e.Args, 1)
	s, ok := e.Args[0].IsConstantString()
	require.True(t, ok)
	require.Equal(t, "./foo", s)
}

func TestAnalyzeRecordsRequireResolveAsMemberCall(t *testing.T) {
	graph := Analyze(parse(t, `require.resolve("./foo");`))
	require.Len(t, graph.Effects, 1)
	e := graph.Effects[0]
	require.Equal(t, EffectMemberCall, e.Kind)
	require.Equal(t, jsvalue.WellKnownRequire, e.Object.WellKnownFunction)
	require.NotNil(t, e.Callee.Property)
	require.Equal(t, "resolve", e.Callee.Property.Name)
}

func TestAnalyzeRecordsVariableBindingAndConcatenatedRequireArg(t *testing.T) {
	graph := Analyze(parse(t, "const base = './foo';\nrequire(base + '.js');"))
	v, ok := graph.Vars.Values["base"]
	require.True(t, ok)
	s, ok := v.IsConstantString()
	require.True(t, ok)
	require.Equal(t, "./foo", s)

	require.Len(t, graph.Effects, 1)
	arg := jsvalue.Normalize(graph.Effects[0].Args[0])
	s, ok = arg.IsConstantString()
	require.True(t, ok)
	require.Equal(t, "./foo.js", s)
}

func TestAnalyzeMarksTryBlockEffects(t *testing.T) {
	graph := Analyze(parse(t, `try { require("./foo"); } catch (e) {}`))
	require.Len(t, graph.Effects, 1)
	require.True(t, graph.Effects[0].InTry)
}

func TestAnalyzeMarksIgnoredCallFromLeadingComment(t *testing.T) {
	graph := Analyze(parse(t, "// turbopackIgnore\nrequire(dynamicPath);"))
	require.Len(t, graph.Effects, 1)
	require.True(t, graph.Effects[0].Ignored)
}

func TestAnalyzeRecordsNewURLEffect(t *testing.T) {
	graph := Analyze(parse(t, `new URL("./asset.png", import.meta.url);`))
	require.Len(t, graph.Effects, 1)
	e := graph.Effects[0]
	require.Equal(t, EffectNew, e.Kind)
	require.Equal(t, jsvalue.WellKnownURLConstructor, e.Callee.WellKnownFunction)
	require.Len(t, e.Args, 2)
	s, ok := e.Args[0].IsConstantString()
	require.True(t, ok)
	require.Equal(t, "./asset.png", s)
}

func TestAnalyzeRecordsFreeVarForDirname(t *testing.T) {
	graph := Analyze(parse(t, `const p = __dirname;`))
	var sawFreeVar bool
	for _, e := range graph.Effects {
		if e.Kind == EffectFreeVar && e.Name == "__dirname" {
			sawFreeVar = true
		}
	}
	require.True(t, sawFreeVar)
}
