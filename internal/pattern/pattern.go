// Package pattern implements the mixed constant/dynamic path pattern engine
// (spec §3 "Pattern", §4.B). A Pattern is a tagged sum, normalized so that at
// most one top-level Alternatives exists and every alternative is either a
// Constant, a single Dynamic/DynamicNoSlash, or a Concatenation of those
// three. This mirrors the teacher's helpers.GlobPart model
// (internal/helpers/glob.go: Prefix + {none, *, **}) generalized from a flat
// glob into the richer tagged-sum shape the resolver needs for directory
// enumeration.
package pattern

import (
	"strings"
)

type Kind uint8

const (
	KindConstant Kind = iota
	KindDynamic
	KindDynamicNoSlash
	KindAlternatives
	KindConcatenation
)

// Pattern is a value type; the zero value is the empty constant pattern.
type Pattern struct {
	Kind     Kind
	Constant string
	Parts    []Pattern // Alternatives: each a normalized alternative. Concatenation: ordered sequence.
}

func Constant(s string) Pattern { return Pattern{Kind: KindConstant, Constant: s} }

var Dyn = Pattern{Kind: KindDynamic}
var DynNoSlash = Pattern{Kind: KindDynamicNoSlash}

func Concatenation(parts ...Pattern) Pattern {
	return normalizeConcat(parts)
}

func Alternatives(alts ...Pattern) Pattern {
	return normalizeAlternatives(alts)
}

// forbidden substrings/suffixes that a match may never contain; see spec §3
// and the testable property in spec §8. We enforce this as a single
// whole-string check rather than threading the rule through every
// intermediate Dynamic-consumption step; the two are equivalent for the
// purposes of the documented invariant, and far simpler to keep correct.
var forbiddenSubstrings = []string{"ROOT", "/./", "/../", "node_modules/", "__tests__/", "__test__/"}

func containsForbidden(v string) bool {
	if strings.HasPrefix(v, "./") || strings.HasPrefix(v, "../") {
		return true
	}
	for _, bad := range forbiddenSubstrings {
		if strings.Contains(v, bad) {
			return true
		}
	}
	if strings.HasSuffix(v, ".d.ts") || strings.HasSuffix(v, ".map") {
		return true
	}
	return false
}

// key returns a canonical string encoding used for structural equality and
// deduplication of Alternatives.
func (p Pattern) key() string {
	var b strings.Builder
	p.writeKey(&b)
	return b.String()
}

func (p Pattern) writeKey(b *strings.Builder) {
	switch p.Kind {
	case KindConstant:
		b.WriteByte('C')
		b.WriteString(p.Constant)
		b.WriteByte(0)
	case KindDynamic:
		b.WriteByte('D')
	case KindDynamicNoSlash:
		b.WriteByte('N')
	case KindAlternatives:
		b.WriteByte('[')
		for _, a := range p.Parts {
			a.writeKey(b)
			b.WriteByte(',')
		}
		b.WriteByte(']')
	case KindConcatenation:
		b.WriteByte('(')
		for _, a := range p.Parts {
			a.writeKey(b)
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
}

func (p Pattern) Equal(other Pattern) bool { return p.key() == other.key() }

// Normalize re-derives the canonical form of p. It is idempotent.
func (p Pattern) Normalize() Pattern {
	switch p.Kind {
	case KindAlternatives:
		return normalizeAlternatives(p.Parts)
	case KindConcatenation:
		return normalizeConcat(p.Parts)
	default:
		return p
	}
}

func normalizeAlternatives(raw []Pattern) Pattern {
	var flat []Pattern
	for _, p := range raw {
		n := p.Normalize()
		if n.Kind == KindAlternatives {
			flat = append(flat, n.Parts...)
		} else {
			flat = append(flat, n)
		}
	}
	seen := map[string]bool{}
	var deduped []Pattern
	for _, p := range flat {
		k := p.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, p)
	}
	if len(deduped) == 1 {
		return deduped[0]
	}
	return Pattern{Kind: KindAlternatives, Parts: deduped}
}

// normalizeConcat implements the distribution of Alternatives over
// Concatenation (so that the result has at most one top-level Alternatives),
// merging of adjacent Constants, and collapsing of adjacent same-kind
// Dynamics.
func normalizeConcat(raw []Pattern) Pattern {
	var flat []Pattern
	for _, p := range raw {
		n := p.Normalize()
		if n.Kind == KindConcatenation {
			flat = append(flat, n.Parts...)
		} else {
			flat = append(flat, n)
		}
	}

	for i, p := range flat {
		if p.Kind == KindAlternatives {
			var out []Pattern
			for _, alt := range p.Parts {
				seq := make([]Pattern, 0, len(flat))
				seq = append(seq, flat[:i]...)
				seq = append(seq, alt)
				seq = append(seq, flat[i+1:]...)
				out = append(out, normalizeConcat(seq))
			}
			return normalizeAlternatives(out)
		}
	}

	merged := mergeAdjacent(flat)
	switch len(merged) {
	case 0:
		return Constant("")
	case 1:
		return merged[0]
	default:
		return Pattern{Kind: KindConcatenation, Parts: merged}
	}
}

func mergeAdjacent(parts []Pattern) []Pattern {
	var out []Pattern
	for _, p := range parts {
		if p.Kind == KindConstant && p.Constant == "" {
			continue
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Kind == KindConstant && p.Kind == KindConstant {
				last.Constant += p.Constant
				continue
			}
			if (last.Kind == KindDynamic && p.Kind == KindDynamic) ||
				(last.Kind == KindDynamicNoSlash && p.Kind == KindDynamicNoSlash) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Push appends a pattern to the end of a concatenation (or builds one).
func (p Pattern) Push(next Pattern) Pattern {
	return Concatenation(p, next)
}

// PushFront prepends a pattern to the start of a concatenation.
func (p Pattern) PushFront(prev Pattern) Pattern {
	return Concatenation(prev, p)
}

// Extend concatenates two patterns.
func (p Pattern) Extend(next Pattern) Pattern {
	return Concatenation(p, next)
}

func (p Pattern) HasConstantParts() bool {
	switch p.Kind {
	case KindConstant:
		return true
	case KindConcatenation:
		for _, part := range p.Parts {
			if part.HasConstantParts() {
				return true
			}
		}
		return false
	case KindAlternatives:
		for _, part := range p.Parts {
			if part.HasConstantParts() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (p Pattern) HasDynamicParts() bool {
	switch p.Kind {
	case KindDynamic, KindDynamicNoSlash:
		return true
	case KindConcatenation, KindAlternatives:
		for _, part := range p.Parts {
			if part.HasDynamicParts() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// sequence returns the pattern as a flat list of non-Alternatives parts to
// match in order; a bare Constant/Dynamic/DynamicNoSlash is a 1-element
// sequence.
func (p Pattern) sequence() []Pattern {
	if p.Kind == KindConcatenation {
		return p.Parts
	}
	return []Pattern{p}
}

// IsMatch reports whether v is matched exactly by p.
func (p Pattern) IsMatch(v string) bool {
	if containsForbidden(v) {
		return false
	}
	return p.matches(v)
}

func (p Pattern) matches(v string) bool {
	switch p.Kind {
	case KindAlternatives:
		for _, alt := range p.Parts {
			if alt.matches(v) {
				return true
			}
		}
		return false
	default:
		return matchSeq(p.sequence(), v)
	}
}

func matchSeq(parts []Pattern, v string) bool {
	if len(parts) == 0 {
		return v == ""
	}
	first := parts[0]
	rest := parts[1:]

	switch first.Kind {
	case KindConstant:
		if !strings.HasPrefix(v, first.Constant) {
			return false
		}
		return matchSeq(rest, v[len(first.Constant):])

	case KindDynamic, KindDynamicNoSlash:
		limit := len(v)
		if first.Kind == KindDynamicNoSlash {
			if idx := strings.IndexByte(v, '/'); idx >= 0 {
				limit = idx
			}
		}
		for n := 0; n <= limit; n++ {
			if matchSeq(rest, v[n:]) {
				return true
			}
		}
		return false

	case KindAlternatives:
		for _, alt := range first.Parts {
			seq := append(alt.sequence(), rest...)
			if matchSeq(seq, v) {
				return true
			}
		}
		return false

	case KindConcatenation:
		return matchSeq(append(append([]Pattern{}, first.Parts...), rest...), v)
	}
	return false
}

// CouldMatch reports whether there exists some continuation of v that this
// pattern would match, i.e. v is a valid (possibly partial) prefix.
func (p Pattern) CouldMatch(v string) bool {
	switch p.Kind {
	case KindAlternatives:
		for _, alt := range p.Parts {
			if alt.CouldMatch(v) {
				return true
			}
		}
		return false
	default:
		return couldMatchSeq(p.sequence(), v)
	}
}

func couldMatchSeq(parts []Pattern, v string) bool {
	if len(parts) == 0 {
		return v == ""
	}
	first := parts[0]
	rest := parts[1:]
	switch first.Kind {
	case KindConstant:
		if len(v) <= len(first.Constant) {
			return strings.HasPrefix(first.Constant, v)
		}
		if !strings.HasPrefix(v, first.Constant) {
			return false
		}
		return couldMatchSeq(rest, v[len(first.Constant):])
	case KindDynamic, KindDynamicNoSlash:
		limit := len(v)
		if first.Kind == KindDynamicNoSlash {
			if idx := strings.IndexByte(v, '/'); idx >= 0 {
				limit = idx
			}
		}
		for n := 0; n <= limit; n++ {
			if couldMatchSeq(rest, v[n:]) {
				return true
			}
		}
		// Even consuming everything still "could" continue beyond v.
		return true
	case KindAlternatives:
		for _, alt := range first.Parts {
			seq := append(alt.sequence(), rest...)
			if couldMatchSeq(seq, v) {
				return true
			}
		}
		return false
	case KindConcatenation:
		return couldMatchSeq(append(append([]Pattern{}, first.Parts...), rest...), v)
	}
	return false
}

// MustMatch reports whether every string this pattern can match starts with
// v, i.e. v is a guaranteed (not just possible) prefix of every match.
func (p Pattern) MustMatch(v string) bool {
	switch p.Kind {
	case KindAlternatives:
		for _, alt := range p.Parts {
			if !alt.MustMatch(v) {
				return false
			}
		}
		return len(p.Parts) > 0
	default:
		cp, _ := p.ConstantPrefix()
		return strings.HasPrefix(cp, v) || strings.HasPrefix(v, cp) && len(v) <= len(cp)
	}
}

// ConstantPrefix returns the longest constant string every match of p is
// guaranteed to start with.
func (p Pattern) ConstantPrefix() (string, bool) {
	switch p.Kind {
	case KindConstant:
		return p.Constant, true
	case KindDynamic, KindDynamicNoSlash:
		return "", true
	case KindConcatenation:
		if len(p.Parts) == 0 || p.Parts[0].Kind != KindConstant {
			return "", true
		}
		return p.Parts[0].Constant, true
	case KindAlternatives:
		if len(p.Parts) == 0 {
			return "", false
		}
		prefix, _ := p.Parts[0].ConstantPrefix()
		for _, alt := range p.Parts[1:] {
			ap, _ := alt.ConstantPrefix()
			prefix = commonPrefix(prefix, ap)
		}
		return prefix, true
	}
	return "", true
}

// ConstantSuffix is the dual of ConstantPrefix.
func (p Pattern) ConstantSuffix() (string, bool) {
	switch p.Kind {
	case KindConstant:
		return p.Constant, true
	case KindDynamic, KindDynamicNoSlash:
		return "", true
	case KindConcatenation:
		if len(p.Parts) == 0 || p.Parts[len(p.Parts)-1].Kind != KindConstant {
			return "", true
		}
		return p.Parts[len(p.Parts)-1].Constant, true
	case KindAlternatives:
		if len(p.Parts) == 0 {
			return "", false
		}
		suffix, _ := p.Parts[0].ConstantSuffix()
		for _, alt := range p.Parts[1:] {
			as, _ := alt.ConstantSuffix()
			suffix = commonSuffix(suffix, as)
		}
		return suffix, true
	}
	return "", true
}

func commonPrefix(a, b string) string {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}

func commonSuffix(a, b string) string {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return a[len(a)-n:]
}

// StripPrefixLen removes n bytes from the pattern's guaranteed constant
// prefix, returning ok=false if doing so would need to split a Dynamic.
func (p Pattern) StripPrefixLen(n int) (Pattern, bool) {
	switch p.Kind {
	case KindConstant:
		if n > len(p.Constant) {
			return Pattern{}, false
		}
		return Constant(p.Constant[n:]), true
	case KindConcatenation:
		if len(p.Parts) == 0 || p.Parts[0].Kind != KindConstant || n > len(p.Parts[0].Constant) {
			if n == 0 {
				return p, true
			}
			return Pattern{}, false
		}
		rest := append([]Pattern{Constant(p.Parts[0].Constant[n:])}, p.Parts[1:]...)
		return normalizeConcat(rest), true
	default:
		if n == 0 {
			return p, true
		}
		return Pattern{}, false
	}
}

// StripSuffixLen is the dual of StripPrefixLen.
func (p Pattern) StripSuffixLen(n int) (Pattern, bool) {
	switch p.Kind {
	case KindConstant:
		if n > len(p.Constant) {
			return Pattern{}, false
		}
		return Constant(p.Constant[:len(p.Constant)-n]), true
	case KindConcatenation:
		last := p.Parts[len(p.Parts)-1]
		if last.Kind != KindConstant || n > len(last.Constant) {
			if n == 0 {
				return p, true
			}
			return Pattern{}, false
		}
		parts := append(append([]Pattern{}, p.Parts[:len(p.Parts)-1]...), Constant(last.Constant[:len(last.Constant)-n]))
		return normalizeConcat(parts), true
	default:
		if n == 0 {
			return p, true
		}
		return Pattern{}, false
	}
}

// Constant entry returned by NextConstants: a candidate string continuation
// after matching some prefix, tagged whether it ends the whole pattern.
type ConstantMatch struct {
	Value string
	End   bool
}

// NextConstants enumerates the constant continuations available after the
// input v has been consumed as a matched prefix. It returns ok=false if the
// pattern is not finitely enumerable from this point (an unbounded Dynamic
// continuation with no further constant part to anchor on).
func (p Pattern) NextConstants(v string) (result []ConstantMatch, ok bool) {
	alts := p.Parts
	if p.Kind != KindAlternatives {
		alts = []Pattern{p}
	}
	seen := map[string]bool{}
	for _, alt := range alts {
		parts := alt.sequence()
		consts, altOK := nextConstantsSeq(parts, v)
		if !altOK {
			return nil, false
		}
		for _, c := range consts {
			key := c.Value + "\x00" + boolStr(c.End)
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, c)
		}
	}
	return result, true
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func nextConstantsSeq(parts []Pattern, v string) ([]ConstantMatch, bool) {
	if len(parts) == 0 {
		if v == "" {
			return []ConstantMatch{{Value: "", End: true}}, true
		}
		return nil, true
	}
	first := parts[0]
	switch first.Kind {
	case KindConstant:
		if v == "" {
			return []ConstantMatch{{Value: first.Constant, End: len(parts) == 1}}, true
		}
		if len(v) <= len(first.Constant) {
			if !strings.HasPrefix(first.Constant, v) {
				return nil, true
			}
			return nextConstantsSeq(parts[1:], "")
		}
		if !strings.HasPrefix(v, first.Constant) {
			return nil, true
		}
		return nextConstantsSeq(parts[1:], v[len(first.Constant):])
	case KindDynamic, KindDynamicNoSlash:
		// A dynamic continuation with nothing left afterward cannot be
		// finitely enumerated as constants.
		if len(parts) == 1 {
			return nil, false
		}
		return nextConstantsSeq(parts[1:], "")
	case KindAlternatives:
		var out []ConstantMatch
		for _, alt := range first.Parts {
			seq := append(alt.sequence(), parts[1:]...)
			c, ok := nextConstantsSeq(seq, v)
			if !ok {
				return nil, false
			}
			out = append(out, c...)
		}
		return out, true
	case KindConcatenation:
		return nextConstantsSeq(append(append([]Pattern{}, first.Parts...), parts[1:]...), v)
	}
	return nil, true
}

// SpreadIntoStar replaces each "*" byte in template with a copy of p.
func (p Pattern) SpreadIntoStar(template string) Pattern {
	var parts []Pattern
	last := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '*' {
			if i > last {
				parts = append(parts, Constant(template[last:i]))
			}
			parts = append(parts, p)
			last = i + 1
		}
	}
	if last < len(template) {
		parts = append(parts, Constant(template[last:]))
	}
	return Concatenation(parts...)
}

// dynamicArity counts the number of Dynamic/DynamicNoSlash slots within a
// single (non-Alternatives) pattern.
func dynamicArity(p Pattern) int {
	switch p.Kind {
	case KindDynamic, KindDynamicNoSlash:
		return 1
	case KindConcatenation:
		n := 0
		for _, part := range p.Parts {
			n += dynamicArity(part)
		}
		return n
	}
	return 0
}

// captureDynamics matches v against p (a non-Alternatives pattern) and
// returns the captured substring for each Dynamic slot in order.
func captureDynamics(p Pattern, v string) ([]string, bool) {
	var captures []string
	var rec func(parts []Pattern, s string) bool
	rec = func(parts []Pattern, s string) bool {
		if len(parts) == 0 {
			return s == ""
		}
		first := parts[0]
		rest := parts[1:]
		switch first.Kind {
		case KindConstant:
			if !strings.HasPrefix(s, first.Constant) {
				return false
			}
			return rec(rest, s[len(first.Constant):])
		case KindDynamic, KindDynamicNoSlash:
			limit := len(s)
			if first.Kind == KindDynamicNoSlash {
				if idx := strings.IndexByte(s, '/'); idx >= 0 {
					limit = idx
				}
			}
			for n := 0; n <= limit; n++ {
				captures = append(captures, s[:n])
				if rec(rest, s[n:]) {
					return true
				}
				captures = captures[:len(captures)-1]
			}
			return false
		}
		return false
	}
	if !rec(p.sequence(), v) {
		return nil, false
	}
	return captures, true
}

// MatchApplyTemplate matches v against p and, if it matches with exactly the
// same dynamic arity as target, re-applies the captured dynamic substrings
// onto target's dynamic slots (in order), returning the resulting concrete
// string. It returns ok=false if arities differ or v does not match p.
func (p Pattern) MatchApplyTemplate(v string, target Pattern) (string, bool) {
	if containsForbidden(v) {
		return "", false
	}
	if p.Kind == KindAlternatives {
		for _, alt := range p.Parts {
			if s, ok := alt.MatchApplyTemplate(v, target); ok {
				return s, true
			}
		}
		return "", false
	}
	captures, ok := captureDynamics(p, v)
	if !ok {
		return "", false
	}
	if dynamicArity(target) != len(captures) {
		return "", false
	}
	var b strings.Builder
	idx := 0
	var write func(parts []Pattern)
	write = func(parts []Pattern) {
		for _, part := range parts {
			switch part.Kind {
			case KindConstant:
				b.WriteString(part.Constant)
			case KindDynamic, KindDynamicNoSlash:
				b.WriteString(captures[idx])
				idx++
			case KindConcatenation:
				write(part.Parts)
			}
		}
	}
	write(target.sequence())
	return b.String(), true
}

// ReplaceFinalConstants rewrites the last Constant segment of every
// alternative using cb, which receives the current value and returns its
// replacement.
func (p Pattern) ReplaceFinalConstants(cb func(string) string) Pattern {
	switch p.Kind {
	case KindAlternatives:
		out := make([]Pattern, len(p.Parts))
		for i, alt := range p.Parts {
			out[i] = alt.ReplaceFinalConstants(cb)
		}
		return normalizeAlternatives(out)
	case KindConstant:
		return Constant(cb(p.Constant))
	case KindConcatenation:
		parts := append([]Pattern{}, p.Parts...)
		last := len(parts) - 1
		if parts[last].Kind == KindConstant {
			parts[last] = Constant(cb(parts[last].Constant))
		}
		return normalizeConcat(parts)
	default:
		return p
	}
}

// ReplaceConstants rewrites every Constant segment using cb.
func (p Pattern) ReplaceConstants(cb func(string) string) Pattern {
	switch p.Kind {
	case KindConstant:
		return Constant(cb(p.Constant))
	case KindAlternatives:
		out := make([]Pattern, len(p.Parts))
		for i, alt := range p.Parts {
			out[i] = alt.ReplaceConstants(cb)
		}
		return normalizeAlternatives(out)
	case KindConcatenation:
		out := make([]Pattern, len(p.Parts))
		for i, part := range p.Parts {
			out[i] = part.ReplaceConstants(cb)
		}
		return normalizeConcat(out)
	default:
		return p
	}
}

// OrAnyNestedFile returns Alternatives(p, Concatenation(p, Constant("/"), Dynamic))
// — "this exact path, or any file somewhere underneath it" — used by
// directory-style resolve requests that should also match nested files.
func (p Pattern) OrAnyNestedFile() Pattern {
	return Alternatives(p, Concatenation(p, Constant("/"), Dyn))
}

// FilterCouldMatch keeps only the alternatives of p that could still match v.
func (p Pattern) FilterCouldMatch(v string) Pattern {
	if p.Kind != KindAlternatives {
		if p.CouldMatch(v) {
			return p
		}
		return Pattern{Kind: KindAlternatives}
	}
	var kept []Pattern
	for _, alt := range p.Parts {
		if alt.CouldMatch(v) {
			kept = append(kept, alt)
		}
	}
	return normalizeAlternatives(kept)
}

// FilterCouldNotMatch keeps only the alternatives of p that could not match v.
func (p Pattern) FilterCouldNotMatch(v string) Pattern {
	if p.Kind != KindAlternatives {
		if !p.CouldMatch(v) {
			return p
		}
		return Pattern{Kind: KindAlternatives}
	}
	var kept []Pattern
	for _, alt := range p.Parts {
		if !alt.CouldMatch(v) {
			kept = append(kept, alt)
		}
	}
	return normalizeAlternatives(kept)
}

// SplitCouldMatch partitions p's alternatives by whether they could match v.
func (p Pattern) SplitCouldMatch(v string) (could Pattern, couldNot Pattern) {
	return p.FilterCouldMatch(v), p.FilterCouldNotMatch(v)
}

// WithNormalizedPath lexically resolves "." and ".." segments that appear
// within the pattern's leading Constant text, the same way fspath.FsPath.Join
// does for concrete paths. It returns ok=false if a ".." would need to climb
// past the start of the pattern (and there is no preceding Dynamic to absorb
// it, in which case the pattern is simply returned unchanged since we cannot
// know what the Dynamic will capture).
func (p Pattern) WithNormalizedPath() (Pattern, bool) {
	parts := p.sequence()
	if len(parts) == 0 {
		return p, true
	}
	if parts[0].Kind != KindConstant {
		return p, true
	}
	segs := strings.Split(parts[0].Constant, "/")
	var stack []string
	for _, seg := range segs {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return Pattern{}, false
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}
	rest := append([]Pattern{Constant(strings.Join(stack, "/"))}, parts[1:]...)
	return normalizeConcat(rest), true
}
