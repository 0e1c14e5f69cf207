// Package effect implements spec §4.I: walking a jsast tree to build a
// VarGraph (every local variable's possible values, as jsvalue.JsValue) and
// an ordered list of Effects — the call/free-variable sites the evaluator
// (internal/effect's sibling, internal/evaluator) actually needs to
// partially evaluate to find require/import/URL/Worker references.
//
// Grounded on turbopack-ecmascript/src/analyzer/graph.rs (retained at
// _examples/original_source/turbopack/crates/): its VarGraph/Effect shapes
// (~lines 84-321) and its AstPathVisitor driving FreeVar/Call effect
// emission (~lines 2237-2276) are reproduced here at smaller scope — one
// pass over a jsast.Node tree instead of a full swc Visit implementation,
// since this engine's jsast only has the node kinds the effect extractor
// needs in the first place.
package effect

import (
	"strconv"
	"strings"

	"github.com/jsreactor/engine/internal/jsast"
	"github.com/jsreactor/engine/internal/jsvalue"
)

// EffectKind discriminates Effect (spec §4.I, graph.rs's Effect enum).
type EffectKind uint8

const (
	EffectCall EffectKind = iota
	EffectNew
	EffectMemberCall
	EffectFreeVar
)

// Effect is one site the evaluator may need to resolve (spec §4.I).
type Effect struct {
	Kind EffectKind
	Loc  jsast.Loc

	// Call / New / MemberCall
	Callee jsvalue.JsValue
	Args   []jsvalue.JsValue

	// MemberCall only: the object the method was called on
	Object jsvalue.JsValue

	// FreeVar
	Name string

	// Set when this site is lexically inside a try block — spec §4.I's
	// ast.ImportRecordFlags.HandlesImportErrors / "in_try". A
	// .catch(...)/.then(_, ...) chain on the call does not set it.
	InTry bool

	// Set when a "turbopackIgnore"-style leading comment (spec §6) asks the
	// evaluator to skip this site even if it would otherwise resolve to a
	// constant.
	Ignored bool
}

// VarGraph maps a local variable name to every value the extractor could
// prove it holds at its declaration site. Multiple declarations of the same
// name (distinct lexical scopes) are not disambiguated — spec §4.I scopes
// this engine to single-file, flow-insensitive analysis, matching
// graph.rs's own conservative "map FreeVar names to their Id" comment
// (~line 313) about not tracking every binding precisely.
type VarGraph struct {
	Values map[string]jsvalue.JsValue
}

// Graph is the full output of walking one file: its VarGraph plus the
// ordered Effects found.
type Graph struct {
	Vars    VarGraph
	Effects []Effect
}

// wellKnownFreeVars maps a bare identifier's text to the WellKnownFunction/
// WellKnownObject it's assumed to name at module scope, absent evidence of
// local shadowing (graph.rs ~lines 466-469, 803).
var wellKnownFreeVars = map[string]jsvalue.JsValue{
	"require":      jsvalue.WellKnownFn(jsvalue.WellKnownRequire),
	"__dirname":    jsvalue.FreeVar("__dirname"),
	"__filename":   jsvalue.FreeVar("__filename"),
	"module":       jsvalue.WellKnownObj(jsvalue.WellKnownModule),
	"process":      jsvalue.FreeVar("process"),
	"globalThis":   jsvalue.FreeVar("globalThis"),
	"undefined":    jsvalue.Undefined,
	"URL":          jsvalue.WellKnownFn(jsvalue.WellKnownURLConstructor),
	"Worker":       jsvalue.WellKnownFn(jsvalue.WellKnownWorkerConstructor),
	"SharedWorker": jsvalue.WellKnownFn(jsvalue.WellKnownWorkerConstructor),
}

// Analyze walks program (the jsast.Node returned by jsast.Parse) and
// extracts its VarGraph and Effects.
func Analyze(program jsast.Node) Graph {
	w := &walker{vars: VarGraph{Values: map[string]jsvalue.JsValue{}}}
	w.walkStatements(program, false)
	return Graph{Vars: w.vars, Effects: w.effects}
}

type walker struct {
	vars    VarGraph
	effects []Effect
}

// walkStatements visits n's direct statement children (or n itself, for
// leaf statement nodes), tracking inTry so Effects below a try block are
// correctly flagged.
func (w *walker) walkStatements(n jsast.Node, inTry bool) {
	switch n.Kind {
	case jsast.KindProgram, jsast.KindBlock:
		for _, c := range n.Children {
			w.walkStatements(c, inTry)
		}
	case jsast.KindVariableDeclaration:
		for _, c := range n.Children {
			w.walkStatements(c, inTry)
		}
	case jsast.KindVariableDeclarator:
		if n.Name != nil && n.Name.Kind == jsast.KindIdentifier && n.Init != nil {
			val := w.eval(*n.Init, inTry)
			w.vars.Values[n.Name.Text] = jsvalue.Normalize(val)
		}
		if n.Init != nil {
			w.walkExpr(*n.Init, inTry)
		}
	case jsast.KindExpressionStatement, jsast.KindReturnStatement:
		for _, c := range n.Children {
			w.walkExpr(c, inTry)
		}
	case jsast.KindTryStatement:
		if n.TryBlock != nil {
			w.walkStatements(*n.TryBlock, true)
		}
		if n.CatchBlock != nil {
			w.walkStatements(*n.CatchBlock, inTry)
		}
	case jsast.KindCatchClause:
		for _, c := range n.Children {
			w.walkStatements(c, inTry)
		}
	case jsast.KindImportStatement:
		// Static import/export declarations are already handled by the
		// parser's own import-record extraction (internal/ast.ImportRecord);
		// the effect extractor only needs their dynamic/expression-form
		// counterparts.
	default:
		w.walkExpr(n, inTry)
	}
}

// walkExpr records an Effect for call/new/member-call/free-var expressions
// and recurses into their operands so nested calls are found too.
func (w *walker) walkExpr(n jsast.Node, inTry bool) {
	switch n.Kind {
	case jsast.KindCallExpression:
		callee := w.eval(derefOrUnknown(n.Callee), inTry)
		args := w.evalAll(n.Args, inTry)
		if n.Callee != nil && n.Callee.Kind == jsast.KindMemberExpression {
			obj := w.eval(derefOrUnknown(n.Callee.Callee), inTry)
			w.emit(Effect{Kind: EffectMemberCall, Loc: n.Loc, Object: obj, Callee: callee, Args: args, InTry: inTry, Ignored: isIgnored(n)})
		} else {
			w.emit(Effect{Kind: EffectCall, Loc: n.Loc, Callee: callee, Args: args, InTry: inTry, Ignored: isIgnored(n)})
		}
		// A bare identifier callee (require) or a plain member of one
		// (require.resolve) is already carried by this Effect's Callee/Object,
		// so it is not walked again as a FreeVar.
		if c := n.Callee; c != nil {
			plainMember := c.Kind == jsast.KindMemberExpression && !c.Computed && c.Callee != nil && c.Callee.Kind == jsast.KindIdentifier
			if c.Kind != jsast.KindIdentifier && !plainMember {
				w.walkExpr(*c, inTry)
			}
		}
		for _, a := range n.Args {
			w.walkExpr(a, inTry)
		}
	case jsast.KindNewExpression:
		callee := w.eval(derefOrUnknown(n.Callee), inTry)
		args := w.evalAll(n.Args, inTry)
		w.emit(Effect{Kind: EffectNew, Loc: n.Loc, Callee: callee, Args: args, InTry: inTry, Ignored: isIgnored(n)})
		for _, a := range n.Args {
			w.walkExpr(a, inTry)
		}
	case jsast.KindIdentifier:
		if _, known := wellKnownFreeVars[n.Text]; known {
			if _, isLocal := w.vars.Values[n.Text]; !isLocal {
				w.emit(Effect{Kind: EffectFreeVar, Loc: n.Loc, Name: n.Text, InTry: inTry})
			}
		}
	default:
		if n.Callee != nil {
			w.walkExpr(*n.Callee, inTry)
		}
		if n.Left != nil {
			w.walkExpr(*n.Left, inTry)
		}
		if n.Right != nil {
			w.walkExpr(*n.Right, inTry)
		}
		if n.Test != nil {
			w.walkExpr(*n.Test, inTry)
		}
		if n.Consequent != nil {
			w.walkExpr(*n.Consequent, inTry)
		}
		if n.Alternate != nil {
			w.walkExpr(*n.Alternate, inTry)
		}
		for _, a := range n.Args {
			w.walkExpr(a, inTry)
		}
		for _, c := range n.Children {
			w.walkExpr(c, inTry)
		}
		for _, p := range n.Parts {
			w.walkExpr(p, inTry)
		}
	}
}

func (w *walker) emit(e Effect) { w.effects = append(w.effects, e) }

func derefOrUnknown(n *jsast.Node) jsast.Node {
	if n == nil {
		return jsast.Node{Kind: jsast.KindUnknown}
	}
	return *n
}

// isIgnored reports whether n carries a "turbopackIgnore"-style leading
// comment (SPEC_FULL.md §6).
func isIgnored(n jsast.Node) bool {
	c := strings.ToLower(n.LeadingComment)
	return strings.Contains(c, "turbopackignore") || strings.Contains(c, "webpackignore") || strings.Contains(c, "vite-ignore")
}

// eval reduces n to a jsvalue.JsValue without recording Effects (used when
// building a variable's bound value or a call's argument/callee value);
// walkExpr is responsible for emitting Effects for the same subtree.
func (w *walker) eval(n jsast.Node, inTry bool) jsvalue.JsValue {
	switch n.Kind {
	case jsast.KindImportExpression:
		return jsvalue.WellKnownFn(jsvalue.WellKnownImport)
	case jsast.KindStringLiteral:
		return jsvalue.Str(n.Text)
	case jsast.KindNumberLiteral:
		f, _ := strconv.ParseFloat(n.Text, 64)
		return jsvalue.Num(f)
	case jsast.KindIdentifier:
		if v, ok := w.vars.Values[n.Text]; ok {
			return v
		}
		if v, ok := wellKnownFreeVars[n.Text]; ok {
			return v
		}
		return jsvalue.Variable(n.Text)
	case jsast.KindTemplateLiteral:
		operands := make([]jsvalue.JsValue, 0, len(n.Parts))
		for _, p := range n.Parts {
			if p.Kind == jsast.KindTemplateSubstitution && len(p.Children) == 1 {
				operands = append(operands, w.eval(p.Children[0], inTry))
			} else {
				operands = append(operands, jsvalue.Str(p.Text))
			}
		}
		return jsvalue.Normalize(jsvalue.JsValue{Kind: jsvalue.KindConcat, Operands: operands})
	case jsast.KindBinaryExpression:
		if n.Operator == "+" && n.Left != nil && n.Right != nil {
			left := w.eval(*n.Left, inTry)
			right := w.eval(*n.Right, inTry)
			return jsvalue.Normalize(jsvalue.JsValue{Kind: jsvalue.KindAdd, Operands: []jsvalue.JsValue{left, right}})
		}
		return jsvalue.Unknown("binary operator " + n.Operator + " is not evaluated")
	case jsast.KindLogicalExpression:
		if n.Left != nil && n.Right != nil {
			left := w.eval(*n.Left, inTry)
			right := w.eval(*n.Right, inTry)
			kind := jsvalue.KindLogicalOr
			if n.Operator == "&&" {
				kind = jsvalue.KindLogicalAnd
			}
			return jsvalue.Normalize(jsvalue.JsValue{Kind: kind, Operands: []jsvalue.JsValue{left, right}})
		}
		return jsvalue.Unknown("logical expression missing operand")
	case jsast.KindConditionalExpression:
		if n.Test != nil {
			test := jsvalue.Normalize(w.eval(*n.Test, inTry))
			if truthy, ok := test.Truthy(); ok {
				if truthy && n.Consequent != nil {
					return w.eval(*n.Consequent, inTry)
				}
				if !truthy && n.Alternate != nil {
					return w.eval(*n.Alternate, inTry)
				}
			}
		}
		return jsvalue.Unknown("conditional expression has a non-constant test")
	case jsast.KindMemberExpression:
		if n.Callee == nil || len(n.Args) != 1 {
			return jsvalue.Unknown("malformed member expression")
		}
		obj := w.eval(*n.Callee, inTry)
		if obj.Kind == jsvalue.KindWellKnownObject && obj.WellKnownObject == jsvalue.WellKnownImportMeta {
			if n.Args[0].Text == "url" {
				return jsvalue.FreeVar("import.meta.url")
			}
		}
		prop := w.eval(n.Args[0], inTry)
		return jsvalue.JsValue{Kind: jsvalue.KindMember, Object: &obj, Property: &prop}
	case jsast.KindCallExpression:
		callee := w.eval(derefOrUnknown(n.Callee), inTry)
		args := w.evalAll(n.Args, inTry)
		return jsvalue.JsValue{Kind: jsvalue.KindCall, Callee: &callee, Args: args}
	case jsast.KindNewExpression:
		callee := w.eval(derefOrUnknown(n.Callee), inTry)
		args := w.evalAll(n.Args, inTry)
		return jsvalue.JsValue{Kind: jsvalue.KindNew, Callee: &callee, Args: args}
	case jsast.KindArrayLiteral:
		items := w.evalAll(n.Children, inTry)
		return jsvalue.JsValue{Kind: jsvalue.KindArray, Items: items}
	default:
		return jsvalue.Unknown("unsupported expression shape")
	}
}

func (w *walker) evalAll(ns []jsast.Node, inTry bool) []jsvalue.JsValue {
	out := make([]jsvalue.JsValue, 0, len(ns))
	for _, n := range ns {
		out = append(out, w.eval(n, inTry))
	}
	return out
}
