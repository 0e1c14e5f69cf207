package fspath

import "testing"

func TestJoinStaysInsideRoot(t *testing.T) {
	root := Root(1)
	p, ok := root.Join("a/b")
	if !ok || p.Path != "a/b" {
		t.Fatalf("got %+v %v", p, ok)
	}
	if _, ok := p.Join("../../.."); ok {
		t.Fatalf("expected escape to fail")
	}
}

func TestJoinContractHolds(t *testing.T) {
	cases := []struct{ base, rel string }{
		{"a/b", "c"},
		{"a/b", ".."},
		{"a/b", "../c/./d"},
		{"", "a/b/c"},
	}
	for _, c := range cases {
		base := FsPath{Fs: 1, Path: c.base}
		joined, ok := base.Join(c.rel)
		if !ok {
			t.Fatalf("join(%q,%q) failed without leaving the root", c.base, c.rel)
		}
		inside, insideOK := base.TryJoinInside(c.rel)
		if insideOK != joined.IsInsideOrEqual(base) || (insideOK && inside.Path != joined.Path) {
			t.Fatalf("tryJoinInside(%q,%q) = %q %v, join = %q", c.base, c.rel, inside.Path, insideOK, joined.Path)
		}
	}
}

func TestJoinDotDotEscapesRoot(t *testing.T) {
	root := Root(1)
	if _, ok := root.Join(".."); ok {
		t.Fatalf("root.Join(\"..\") should fail")
	}
	p, _ := root.Join("a")
	if p.IsInside(p) {
		t.Fatalf("a path is never strictly inside itself")
	}
}

func TestIsInsideRequiresSlashBoundary(t *testing.T) {
	next, _ := Root(1).Join(".next")
	next2, _ := Root(1).Join(".next2")
	if next.IsInside(next2) {
		t.Fatalf(".next must not be considered inside .next2")
	}
	inner, _ := next.Join("cache")
	if !inner.IsInside(next) {
		t.Fatalf("%q should be inside %q", inner.Path, next.Path)
	}
}

func TestWithExtensionRoundTrips(t *testing.T) {
	p := FsPath{Fs: 1, Path: "a/b/file.ts"}
	stripped := p.WithExtension("")
	if stripped.Path != "a/b/file" {
		t.Fatalf("got %q", stripped.Path)
	}
	restored := stripped.WithExtension(".ts")
	if restored != p {
		t.Fatalf("got %+v want %+v", restored, p)
	}
}

func TestFileNameStemExtension(t *testing.T) {
	p := FsPath{Fs: 1, Path: "a/b.test.tsx"}
	if p.FileName() != "b.test.tsx" {
		t.Fatalf("filename: %q", p.FileName())
	}
	if p.FileStem() != "b.test" {
		t.Fatalf("stem: %q", p.FileStem())
	}
	if p.Extension() != ".tsx" {
		t.Fatalf("ext: %q", p.Extension())
	}
	if !p.HasExtension(".tsx") {
		t.Fatalf("expected .tsx extension")
	}
}

func TestGetRelativePathTo(t *testing.T) {
	a := FsPath{Fs: 1, Path: "a/b"}
	b := FsPath{Fs: 1, Path: "a/c"}
	rel, ok := a.GetRelativePathTo(b)
	if !ok || rel != "../c" {
		t.Fatalf("got %q %v", rel, ok)
	}
}

func TestSplitLastSegment(t *testing.T) {
	cases := []struct {
		in       string
		dir, last string
	}{
		{"a/b/c/..", "a", "b"},
		{"a/../..", "a/../..", ""},
	}
	for _, c := range cases {
		dir, last := SplitLastSegment(c.in)
		if dir != c.dir || last != c.last {
			t.Fatalf("SplitLastSegment(%q) = (%q,%q) want (%q,%q)", c.in, dir, last, c.dir, c.last)
		}
	}
}
