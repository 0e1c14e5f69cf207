package resolver

import "strings"

// ImportMapResultKind discriminates ImportMapResult (grounded on
// turbopack-core/src/resolve/mod.rs's resolve_import_map_result, which
// matches these exact five outcomes plus NoEntry).
type ImportMapResultKind uint8

const (
	ImportMapNoEntry ImportMapResultKind = iota
	ImportMapResultEntry
	ImportMapAlias
	ImportMapExternal
	ImportMapAliasExternal
	ImportMapAlternatives
)

// ImportMapResult is one lookup outcome from an ImportMap.
type ImportMapResult struct {
	Kind ImportMapResultKind

	// ImportMapResultEntry
	Result *ResolveResult

	// ImportMapAlias / ImportMapAliasExternal
	AliasRequest    Request
	AliasLookupPath string
	HasAliasLookup  bool

	// ImportMapExternal / ImportMapAliasExternal
	ExternalName string
	ExternalKind ExternalKind
	Traced       bool

	// ImportMapAlternatives
	Alternatives []ImportMapResult
}

// ImportMapEntry is one compiled rule: requests that start with Prefix and
// end with Suffix rewrite to Template, with '*' in Template substituted by
// the text captured between them. This mirrors the "exact
// or single-wildcard" shape tsconfig's compilerOptions.paths and package.json
// subpath patterns both reduce to.
type ImportMapEntry struct {
	Prefix       string
	Suffix       string
	Template     string
	External     bool
	ExternalKind ExternalKind
	LookupDir    string
}

// ImportMap is an ordered set of rewrite rules (spec §6 "import_map"),
// compiled from a JSON alias file or from tsconfig.json's
// compilerOptions.paths (see tsconfig.go).
type ImportMap struct {
	Entries []ImportMapEntry
}

// Lookup finds the first entry whose Prefix/Suffix bracket request and
// returns the appropriate ImportMapResult, or ImportMapNoEntry.
func (m *ImportMap) Lookup(request string) ImportMapResult {
	if m == nil {
		return ImportMapResult{Kind: ImportMapNoEntry}
	}
	for _, e := range m.Entries {
		if !strings.HasPrefix(request, e.Prefix) || !strings.HasSuffix(request, e.Suffix) {
			continue
		}
		captured := request[len(e.Prefix) : len(request)-len(e.Suffix)]
		target := strings.Replace(e.Template, "*", captured, 1)

		if e.External {
			return ImportMapResult{
				Kind: ImportMapExternal, ExternalName: target, ExternalKind: e.ExternalKind,
			}
		}
		return ImportMapResult{
			Kind: ImportMapAlias,
			AliasRequest: Request{
				Kind: RequestRaw,
				Path: target,
			},
			AliasLookupPath: e.LookupDir,
			HasAliasLookup:  e.LookupDir != "",
		}
	}
	return ImportMapResult{Kind: ImportMapNoEntry}
}
