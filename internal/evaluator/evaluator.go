// Package evaluator implements spec §4.J: the partial-evaluation "link"
// step that turns internal/effect's Effects into typed outgoing references
// (ast.ReferenceKind) by recognizing the five well-known call shapes —
// require(...), require.resolve(...), import(...), new URL(...), and new
// Worker(...)/new SharedWorker(...) — and reducing their arguments to a
// request string internal/resolver can act on.
//
// Grounded on turbopack-ecmascript/src/references/mod.rs (retained at
// _examples/original_source/): the match over WellKnownFunctionKind driving
// reference creation (~lines 1651-1924, 3051, 3181-3202) and the
// "very dynamic" / "not statically analyze-able" diagnostics it emits when
// an argument doesn't reduce to a constant (~lines 1675, 1707, 1900, 1924).
package evaluator

import (
	"github.com/jsreactor/engine/internal/ast"
	"github.com/jsreactor/engine/internal/effect"
	"github.com/jsreactor/engine/internal/jsast"
	"github.com/jsreactor/engine/internal/jsvalue"
	"github.com/jsreactor/engine/internal/resolver"
)

// Reference is one outgoing reference the evaluator produced from an
// Effect: a typed ReferenceKind plus the resolver.Request ready to hand to
// Resolver.Resolve, or a Diagnostic explaining why no Request could be
// produced.
type Reference struct {
	Kind    ast.ReferenceKind
	Request resolver.Request
	Loc     jsast.Loc
	InTry   bool
}

// Diagnostic is emitted in place of a Reference when an effect matched a
// well-known call shape but its argument didn't reduce to a constant
// string. An explicitly ignored call yields neither.
type Diagnostic struct {
	Message string
	Loc     jsast.Loc
}

// Link runs partial evaluation over one file's effect.Graph, producing the
// References the resolver should act on, plus Diagnostics for well-known
// calls whose argument resisted static analysis.
func Link(graph effect.Graph) ([]Reference, []Diagnostic) {
	var refs []Reference
	var diags []Diagnostic

	for _, e := range graph.Effects {
		switch e.Kind {
		case effect.EffectCall:
			linkCall(e, &refs, &diags)
		case effect.EffectMemberCall:
			linkMemberCall(e, &refs, &diags)
		case effect.EffectNew:
			linkNew(e, &refs, &diags)
		case effect.EffectFreeVar:
			// A bare mention of a well-known global with no call around it
			// carries no reference to produce; tracked in VarGraph only.
		}
	}
	return refs, diags
}

func linkCall(e effect.Effect, refs *[]Reference, diags *[]Diagnostic) {
	if e.Ignored {
		return
	}
	if e.Callee.Kind != jsvalue.KindWellKnownFunction {
		return
	}
	switch e.Callee.WellKnownFunction {
	case jsvalue.WellKnownRequire:
		addFromArg(e, ast.CjsRequire, "require(...)", refs, diags)
	case jsvalue.WellKnownImport:
		addFromArg(e, ast.EsmAsyncAssetReference, "import(...)", refs, diags)
	}
}

func linkMemberCall(e effect.Effect, refs *[]Reference, diags *[]Diagnostic) {
	if e.Ignored {
		return
	}
	if e.Object.Kind != jsvalue.KindWellKnownFunction || e.Object.WellKnownFunction != jsvalue.WellKnownRequire {
		return
	}
	if e.Callee.Property == nil || e.Callee.Property.Kind != jsvalue.KindVariable || e.Callee.Property.Name != "resolve" {
		return
	}
	addFromArg(e, ast.CjsRequireResolve, "require.resolve(...)", refs, diags)
}

func linkNew(e effect.Effect, refs *[]Reference, diags *[]Diagnostic) {
	if e.Ignored {
		return
	}
	if e.Callee.Kind != jsvalue.KindWellKnownFunction {
		return
	}
	switch e.Callee.WellKnownFunction {
	case jsvalue.WellKnownURLConstructor:
		addFromArg(e, ast.UrlAssetReference, "new URL(...)", refs, diags)
	case jsvalue.WellKnownWorkerConstructor:
		addFromArg(e, ast.WorkerAssetReference, "new Worker(...)", refs, diags)
	}
}

func addFromArg(e effect.Effect, kind ast.ReferenceKind, label string, refs *[]Reference, diags *[]Diagnostic) {
	if len(e.Args) == 0 {
		*diags = append(*diags, Diagnostic{Message: label + " called with no arguments", Loc: e.Loc})
		return
	}
	specifier, ok := jsvalue.Normalize(e.Args[0]).IsConstantString()
	if !ok {
		*diags = append(*diags, Diagnostic{Message: label + " is very dynamic: argument does not reduce to a constant string", Loc: e.Loc})
		return
	}
	*refs = append(*refs, Reference{
		Kind:    kind,
		Request: resolver.ParseRequest(specifier, kind),
		Loc:     e.Loc,
		InTry:   e.InTry,
	})
}
