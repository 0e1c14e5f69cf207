// Package jsvalue implements spec §4.H's abstract value domain for partial
// evaluation: JsValue, the tagged sum every expression the evaluator
// (internal/evaluator) touches reduces to, plus normalization and the
// truthiness/well-known-call classification the effect extractor
// (internal/effect) needs to decide whether a call is a require/import/URL/
// Worker reference worth resolving.
//
// Grounded directly on turbopack-ecmascript/src/analyzer/graph.rs (retained
// in this pack's _examples/original_source/), specifically its JsValue enum
// and the Constant/FreeVar/WellKnownObject/WellKnownFunction cases the
// `eval_context.eval` match arms build (~lines 451-803), trimmed to the
// variants this engine's narrower evaluator scope (no JSX, no full
// TypeScript type evaluation) actually produces or consumes.
package jsvalue

import "strings"

// Kind discriminates JsValue (spec §4.H).
type Kind uint8

const (
	KindConstant Kind = iota
	KindVariable
	KindFreeVar
	KindUrl
	KindArray
	KindObject
	KindConcat
	KindAdd
	KindLogicalAnd
	KindLogicalOr
	KindLogicalNot
	KindMember
	KindCall
	KindMemberCall
	KindNew
	KindAwaited
	KindIterated
	KindAlternatives
	KindFunction
	KindArgument
	KindWellKnownObject
	KindWellKnownFunction
	KindUnknown
	KindModule
)

// ConstantKind discriminates the literal values a Constant JsValue can hold.
type ConstantKind uint8

const (
	ConstantString ConstantKind = iota
	ConstantNumber
	ConstantBool
	ConstantNull
	ConstantUndefined
)

// WellKnownObjectKind names a handful of host objects the evaluator gives
// special meaning (spec §4.H, graph.rs's WellKnownObjectKind).
type WellKnownObjectKind uint8

const (
	WellKnownImportMeta WellKnownObjectKind = iota
	WellKnownProcess
	WellKnownModule
)

// WellKnownFunctionKind names a handful of host functions the evaluator
// recognizes by identity rather than by tracing their definition (spec
// §4.H, graph.rs's WellKnownFunctionKind).
type WellKnownFunctionKind uint8

const (
	WellKnownRequire WellKnownFunctionKind = iota
	WellKnownRequireResolve
	WellKnownImport
	WellKnownURLConstructor
	WellKnownWorkerConstructor
	WellKnownPathJoin
	WellKnownPathResolve
)

// JsValue is the abstract value domain's tagged sum. Only the fields
// relevant to Kind are populated.
type JsValue struct {
	Kind Kind

	// Constant
	ConstantKind ConstantKind
	Str          string
	Num          float64
	Bool         bool

	// Variable / FreeVar: a name, resolved against the VarGraph
	// (internal/effect) for Variable, left as-is for FreeVar
	Name string

	// Url
	URLValue string

	// Array / Object / Alternatives: ordered operands
	Items []JsValue

	// Add / Concat / LogicalAnd / LogicalOr: ordered operands (n-ary, not just
	// binary, since "a" + b + "c" normalizes into one flat Add node)
	Operands []JsValue

	// LogicalNot / Awaited / Iterated: single operand
	Operand *JsValue

	// Member: Object + (constant or dynamic) Property
	Object   *JsValue
	Property *JsValue

	// Call / MemberCall / New: Callee (+ Object/Property for MemberCall)
	// and ordered Args
	Callee *JsValue
	Args   []JsValue

	// Function: parameter names and, if known, its returned value
	Params []string
	Return *JsValue

	// Argument: the index of an unresolved function parameter
	ArgIndex int

	WellKnownObject   WellKnownObjectKind
	WellKnownFunction WellKnownFunctionKind

	// Unknown: a short human-readable reason, surfaced in diagnostics
	Reason string
}

func Str(s string) JsValue { return JsValue{Kind: KindConstant, ConstantKind: ConstantString, Str: s} }

func Num(n float64) JsValue { return JsValue{Kind: KindConstant, ConstantKind: ConstantNumber, Num: n} }

func Bool(b bool) JsValue { return JsValue{Kind: KindConstant, ConstantKind: ConstantBool, Bool: b} }

var Null = JsValue{Kind: KindConstant, ConstantKind: ConstantNull}
var Undefined = JsValue{Kind: KindConstant, ConstantKind: ConstantUndefined}

func FreeVar(name string) JsValue { return JsValue{Kind: KindFreeVar, Name: name} }

func Variable(name string) JsValue { return JsValue{Kind: KindVariable, Name: name} }

func Unknown(reason string) JsValue { return JsValue{Kind: KindUnknown, Reason: reason} }

func WellKnownObj(k WellKnownObjectKind) JsValue {
	return JsValue{Kind: KindWellKnownObject, WellKnownObject: k}
}

func WellKnownFn(k WellKnownFunctionKind) JsValue {
	return JsValue{Kind: KindWellKnownFunction, WellKnownFunction: k}
}

// IsConstantString reports whether v is fully known to be a string and
// returns it. This is the test the evaluator runs before treating a
// require/import/URL/Worker argument as staticially resolvable (spec §4.J).
func (v JsValue) IsConstantString() (string, bool) {
	if v.Kind == KindConstant && v.ConstantKind == ConstantString {
		return v.Str, true
	}
	return "", false
}

// Truthy reports a constant value's truthiness, or ok=false if v isn't
// statically known (graph.rs's analogous truthiness helper feeding
// `LogicalAnd`/`LogicalOr`/ternary short-circuit normalization).
func (v JsValue) Truthy() (truthy, ok bool) {
	switch v.Kind {
	case KindConstant:
		switch v.ConstantKind {
		case ConstantString:
			return v.Str != "", true
		case ConstantNumber:
			return v.Num != 0, true
		case ConstantBool:
			return v.Bool, true
		case ConstantNull, ConstantUndefined:
			return false, true
		}
	case KindArray, KindObject, KindFunction, KindWellKnownObject, KindWellKnownFunction:
		return true, true
	}
	return false, false
}

// Normalize recursively folds a JsValue into its simplest equivalent form:
// constant-folds Add/Concat chains of all-constant operands, collapses
// single-item Alternatives, and short-circuits LogicalAnd/LogicalOr/Not when
// every operand's truthiness is statically known. Mirrors graph.rs's
// per-variant `normalize` methods (JsValue::normalize, Effect::normalize),
// consolidated here into one recursive pass instead of one method per
// node kind since this engine's JsValue has no separate per-kind Rust type
// to hang individual methods off.
func Normalize(v JsValue) JsValue {
	switch v.Kind {
	case KindAdd, KindConcat:
		operands := make([]JsValue, 0, len(v.Operands))
		for _, o := range v.Operands {
			operands = append(operands, Normalize(o))
		}
		if allConstantStrings(operands) {
			var sb strings.Builder
			for _, o := range operands {
				sb.WriteString(o.Str)
			}
			return Str(sb.String())
		}
		v.Operands = operands
		return v

	case KindLogicalAnd:
		for i, o := range v.Operands {
			n := Normalize(o)
			if truthy, ok := n.Truthy(); ok {
				if !truthy {
					return n
				}
				if i == len(v.Operands)-1 {
					return n
				}
				continue
			}
			rest := append([]JsValue{n}, v.Operands[i+1:]...)
			return JsValue{Kind: KindLogicalAnd, Operands: rest}
		}
		return Bool(true)

	case KindLogicalOr:
		for i, o := range v.Operands {
			n := Normalize(o)
			if truthy, ok := n.Truthy(); ok {
				if truthy {
					return n
				}
				if i == len(v.Operands)-1 {
					return n
				}
				continue
			}
			rest := append([]JsValue{n}, v.Operands[i+1:]...)
			return JsValue{Kind: KindLogicalOr, Operands: rest}
		}
		return Bool(false)

	case KindLogicalNot:
		if v.Operand == nil {
			return v
		}
		inner := Normalize(*v.Operand)
		if truthy, ok := inner.Truthy(); ok {
			return Bool(!truthy)
		}
		v.Operand = &inner
		return v

	case KindAlternatives:
		if len(v.Items) == 1 {
			return Normalize(v.Items[0])
		}
		items := make([]JsValue, 0, len(v.Items))
		for _, it := range v.Items {
			items = append(items, Normalize(it))
		}
		v.Items = items
		return v

	default:
		return v
	}
}

func allConstantStrings(vs []JsValue) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if _, ok := v.IsConstantString(); !ok {
			return false
		}
	}
	return true
}
