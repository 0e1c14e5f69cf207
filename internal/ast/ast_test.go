package ast

import "testing"

func TestImportKindString(t *testing.T) {
	cases := map[ImportKind]string{
		ImportEntryPoint:     "entry-point",
		ImportStmt:           "import-statement",
		ImportRequire:        "require-call",
		ImportDynamic:        "dynamic-import",
		ImportRequireResolve: "require-resolve",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("ImportKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestReferenceKindString(t *testing.T) {
	cases := map[ReferenceKind]string{
		CjsRequire:             "cjs-require",
		CjsRequireResolve:      "cjs-require-resolve",
		EsmAsyncAssetReference: "esm-async-asset-reference",
		UrlAssetReference:      "url-asset-reference",
		WorkerAssetReference:   "worker-asset-reference",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("ReferenceKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestImportRecordFlagsHas(t *testing.T) {
	flags := ContainsImportStar | HandlesImportErrors
	if !flags.Has(ContainsImportStar) {
		t.Fatal("expected ContainsImportStar to be set")
	}
	if !flags.Has(HandlesImportErrors) {
		t.Fatal("expected HandlesImportErrors to be set")
	}
	if flags.Has(WasOriginallyBareImport) {
		t.Fatal("expected WasOriginallyBareImport to be unset")
	}
}

func TestIndex32ValidityAndRoundTrip(t *testing.T) {
	var zero Index32
	if zero.IsValid() {
		t.Fatal("zero-value Index32 should be invalid")
	}

	idx := MakeIndex32(42)
	if !idx.IsValid() {
		t.Fatal("MakeIndex32(42) should be valid")
	}
	if got := idx.GetIndex(); got != 42 {
		t.Fatalf("GetIndex() = %d, want 42", got)
	}
}
