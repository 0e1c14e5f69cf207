package pattern

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	p := Concatenation(Constant("a"), Constant("b"), Dyn, Dyn, Constant("c"))
	n1 := p.Normalize()
	n2 := n1.Normalize()
	if n1.key() != n2.key() {
		t.Fatalf("normalize not idempotent: %q vs %q", n1.key(), n2.key())
	}
	// adjacent constants merged, adjacent dynamics collapsed
	if len(n1.Parts) != 3 {
		t.Fatalf("expected 3 merged parts, got %d (%+v)", len(n1.Parts), n1)
	}
}

func TestAlternativesDeduped(t *testing.T) {
	p := Alternatives(Constant("a"), Constant("a"), Constant("b"))
	if p.Kind != KindAlternatives || len(p.Parts) != 2 {
		t.Fatalf("expected deduped alternatives, got %+v", p)
	}
}

func TestIsMatchImpliesCouldMatch(t *testing.T) {
	p := Concatenation(Constant("lib/"), Dyn, Constant(".js"))
	for _, v := range []string{"lib/foo.js", "lib/a/b.js", "lib/.js"} {
		if p.IsMatch(v) && !p.CouldMatch(v) {
			t.Fatalf("is_match(%q) true but could_match false", v)
		}
	}
}

func TestMustMatchPrefix(t *testing.T) {
	p := Concatenation(Constant("src/"), Dyn)
	if !p.MustMatch("src/") {
		t.Fatalf("expected must_match(src/)")
	}
	matched := "src/anything"
	if p.IsMatch(matched) {
		// every matching string must start with the declared prefix
		prefix, _ := p.ConstantPrefix()
		if !(len(matched) >= len(prefix) && matched[:len(prefix)] == prefix) {
			t.Fatalf("match %q does not start with prefix %q", matched, prefix)
		}
	}
}

func TestForbiddenSubstringsNeverMatch(t *testing.T) {
	p := Alternatives(Dyn, Concatenation(Constant("a/"), Dyn))
	bad := []string{
		"a/node_modules/x",
		"a/__tests__/x",
		"a/__test__/x",
		"x/./y",
		"x/../y",
		"a/file.d.ts",
		"a/file.map",
	}
	for _, v := range bad {
		if p.IsMatch(v) {
			t.Fatalf("pattern must not match forbidden string %q", v)
		}
	}
}

func TestSpreadIntoStarAndMatchApplyTemplate(t *testing.T) {
	base := Concatenation(Constant("src/"), Dyn, Constant(".ts"))
	spread := base.SpreadIntoStar("x*y")
	// spread should be Constant("x") + base + Constant("y")
	value := "xsrc/foo.tsy"
	if !spread.IsMatch(value) {
		t.Fatalf("expected spread pattern to match %q", value)
	}
	out, ok := spread.MatchApplyTemplate(value, base)
	if !ok {
		t.Fatalf("expected match_apply_template to succeed")
	}
	if out != "src/foo.ts" {
		t.Fatalf("got %q want %q", out, "src/foo.ts")
	}
}

func TestMatchApplyTemplateArityMismatch(t *testing.T) {
	one := Concatenation(Constant("a/"), Dyn)
	two := Concatenation(Constant("b/"), Dyn, Constant("/"), Dyn)
	_, ok := one.MatchApplyTemplate("a/x", two)
	if ok {
		t.Fatalf("expected arity mismatch to fail")
	}
}

func TestNextConstants(t *testing.T) {
	p := Alternatives(Constant("index.ts"), Constant("index.js"))
	consts, ok := p.NextConstants("")
	if !ok {
		t.Fatalf("expected finite enumeration")
	}
	if len(consts) != 2 {
		t.Fatalf("expected 2 constants, got %d: %+v", len(consts), consts)
	}
	for _, c := range consts {
		if !c.End {
			t.Fatalf("expected all constants to end the pattern: %+v", c)
		}
	}
}

func TestNextConstantsUnboundedDynamic(t *testing.T) {
	p := Concatenation(Constant("src/"), Dyn)
	_, ok := p.NextConstants("src/")
	if ok {
		t.Fatalf("trailing dynamic with nothing after it should not be finitely enumerable")
	}
}

func TestWithNormalizedPathEscape(t *testing.T) {
	p := Concatenation(Constant("a/../../b"))
	_, ok := p.WithNormalizedPath()
	if ok {
		t.Fatalf("expected escape to fail normalization")
	}
	p2 := Concatenation(Constant("a/b/../c"))
	n, ok := p2.WithNormalizedPath()
	if !ok {
		t.Fatalf("expected normalization to succeed")
	}
	if n.Kind != KindConstant || n.Constant != "a/c" {
		t.Fatalf("got %+v", n)
	}
}

func TestOrAnyNestedFile(t *testing.T) {
	p := Constant("dir").OrAnyNestedFile()
	if !p.IsMatch("dir") {
		t.Fatalf("expected exact match")
	}
	if !p.IsMatch("dir/nested/file.ts") {
		t.Fatalf("expected nested match")
	}
}

func TestFilterCouldMatchSplits(t *testing.T) {
	p := Alternatives(Constant("a"), Constant("b"))
	could, couldNot := p.SplitCouldMatch("a")
	if !could.CouldMatch("a") {
		t.Fatalf("expected could to match a")
	}
	if couldNot.CouldMatch("a") {
		t.Fatalf("expected couldNot to not match a")
	}
}
