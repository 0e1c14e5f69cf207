// Package ast holds data structures shared across the resolver, the
// jsast/effect/evaluator pipeline, and the reactive cache: the syntactic
// ImportKind a parser assigns to each request, the typed ReferenceKind the
// evaluator assigns once it has reduced a request to a constant pattern, the
// ImportedSymbol shape the parser's import map uses, and the small Index32
// utility used anywhere a 32-bit handle needs a cheap invalid value.
package ast

import (
	"github.com/jsreactor/engine/internal/logger"
)

// ImportKind is how the parser found a given module request in source text.
type ImportKind uint8

const (
	// An entry point provided by the caller
	ImportEntryPoint ImportKind = iota

	// An ES6 import or re-export statement
	ImportStmt

	// A call to "require()"
	ImportRequire

	// An "import()" expression with a string argument
	ImportDynamic

	// A call to "require.resolve()"
	ImportRequireResolve
)

func (kind ImportKind) String() string {
	switch kind {
	case ImportEntryPoint:
		return "entry-point"
	case ImportStmt:
		return "import-statement"
	case ImportRequire:
		return "require-call"
	case ImportDynamic:
		return "dynamic-import"
	case ImportRequireResolve:
		return "require-resolve"
	default:
		panic("internal error")
	}
}

// ReferenceKind is the typed outgoing reference the evaluator (component J)
// produces once it has reduced a require/import/new URL/new Worker call to a
// constant (or best-effort) Pattern. Distinct from ImportKind: ImportKind is
// assigned by the parser from syntax alone, ReferenceKind is assigned by the
// evaluator after partial evaluation has identified which well-known call
// shape produced the reference.
type ReferenceKind uint8

const (
	// require(expr)
	CjsRequire ReferenceKind = iota

	// require.resolve(expr)
	CjsRequireResolve

	// import(expr) — resolved asynchronously, unlike a static ImportStmt
	EsmAsyncAssetReference

	// new URL(expr, import.meta.url)
	UrlAssetReference

	// new Worker(expr) / new SharedWorker(expr)
	WorkerAssetReference
)

func (kind ReferenceKind) String() string {
	switch kind {
	case CjsRequire:
		return "cjs-require"
	case CjsRequireResolve:
		return "cjs-require-resolve"
	case EsmAsyncAssetReference:
		return "esm-async-asset-reference"
	case UrlAssetReference:
		return "url-asset-reference"
	case WorkerAssetReference:
		return "worker-asset-reference"
	default:
		panic("internal error")
	}
}

// ImportedSymbolKind discriminates the five shapes a parser's import map
// entry can name as "what is actually consumed" from an import.
type ImportedSymbolKind uint8

const (
	// The whole module's side-effecting evaluation, no specific binding
	ImportedModuleEvaluation ImportedSymbolKind = iota

	// A single named export binding
	ImportedSymbol

	// One part of a module that has been split into independently
	// re-orderable parts (e.g. by tree-shaking-aware codegen)
	ImportedPart

	// A part's evaluation only, no value
	ImportedPartEvaluation

	// The module's entire exports object (namespace import)
	ImportedExports
)

// ImportedSymbolRef names what an import statement actually consumes, per
// the parser's import map entry shape. Only SymbolName/PartID are populated
// for the Symbol/Part/PartEvaluation kinds respectively.
type ImportedSymbolRef struct {
	Kind       ImportedSymbolKind
	SymbolName string
	PartID     uint32
}

// ImportAnnotations carries per-import metadata parsed from leading
// comments, independent of ImportKind/ReferenceKind.
type ImportAnnotations struct {
	// Parsed from a leading "/* turbopackIgnore: true */"-style comment.
	// When set the evaluator must not attempt to resolve this import even
	// if it reduces to a constant string.
	TurbopackIgnore bool
}

type ImportRecordFlags uint16

const (
	// Sometimes the parser creates an import record and decides it isn't
	// needed. For example, TypeScript code may have import statements that
	// later turn out to be type-only imports after analyzing the whole file.
	IsUnused ImportRecordFlags = 1 << iota

	// If this is true, the import contains syntax like "* as ns".
	ContainsImportStar

	// If this is true, the import contains an import for the alias
	// "default", either via "import x from" or "import {default as x} from".
	ContainsDefaultAlias

	// If this is true, the import contains an import for the alias
	// "__esModule", via the "import {__esModule} from" syntax.
	ContainsESModuleAlias

	// True for the following cases:
	//
	//   try { require('x') } catch { handle }
	//   try { await import('x') } catch { handle }
	//   try { require.resolve('x') } catch { handle }
	//   import('x').catch(handle)
	//   import('x').then(_, handle)
	//
	// In these cases a resolve failure should surface as a warning, not an
	// error — matches the Effect.Call "in_try" flag.
	HandlesImportErrors

	// If true, this was originally written as a bare "import 'file'"
	// statement with no bindings.
	WasOriginallyBareImport

	// If true, this import can be dropped if it's unused and the target
	// module has no side effects.
	IsExternalWithoutSideEffects
)

func (flags ImportRecordFlags) Has(flag ImportRecordFlags) bool {
	return (flags & flag) != 0
}

// ImportRecord is one entry of the parser's import map (spec "Parser
// (external collaborator)"): a request string plus everything the resolver
// and evaluator need to classify and act on it.
type ImportRecord struct {
	Path        logger.Path
	Range       logger.Range
	Annotations ImportAnnotations
	Imported    ImportedSymbolRef

	// Set once the evaluator has produced a typed reference for this
	// record; the zero value (CjsRequire) is only meaningful when Flags
	// does not have IsUnused and a reference was actually produced.
	Reference ReferenceKind

	// Location of the surrounding try/catch or .catch()/.then() handler
	// when HandlesImportErrors is set, used for error reporting.
	ErrorHandlerLoc logger.Loc

	// Stable handle into the reactive cache's module table, assigned once
	// this record's target has been resolved and admitted.
	ResolvedIndex Index32

	Flags ImportRecordFlags
	Kind  ImportKind
}

// Index32 stores a 32-bit index where the zero value is an invalid index.
// This is a better alternative to storing the index as a pointer since that
// has the same properties but takes up less space and costs no pointer
// traversal.
type Index32 struct {
	flippedBits uint32
}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}
