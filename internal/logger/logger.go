// Package logger holds the handful of location/path value types the rest of
// this engine shares: Loc/Range for byte offsets into a source file's
// contents, and Path for a parser-facing module path (as distinct from
// internal/fspath.FsPath, the reactive-FS-rooted path the resolver and
// cache use once a Path has actually been resolved).
//
// Trimmed from the teacher's internal/logger/logger.go, which bundles these
// types together with a full terminal diagnostic renderer (colored output,
// summary tables, deferred logs, a per-platform MsgID registry for
// error-level overrides) that nothing in this engine's scope — a resolver
// and partial evaluator, not a bundler with its own CLI diagnostics
// surface — exercises. Only the value types internal/ast and internal/jsast
// actually consume are kept; see DESIGN.md for the deletion rationale.
package logger

// Loc is a 0-based byte offset from the start of a source file.
type Loc struct {
	Start int32
}

// Range is a Loc plus a byte length, e.g. the span of one import specifier.
type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

// Path represents a parser-facing module path — either a real file system
// path (Namespace == "file") or an abstract/virtual module path — before
// the resolver has turned it into a resolved internal/fspath.FsPath.
type Path struct {
	Text      string
	Namespace string

	// Trailing suffix (e.g. "?#iefix") some legacy import specifiers carry
	// that should be ignored for resolution purposes but preserved in any
	// output that echoes the original specifier back.
	IgnoredSuffix string

	Flags PathFlags
}

type PathFlags uint8

const (
	// Set when a "browser" package.json field maps this path to `false`.
	PathDisabled PathFlags = 1 << iota
)

func (p Path) IsDisabled() bool {
	return (p.Flags & PathDisabled) != 0
}
