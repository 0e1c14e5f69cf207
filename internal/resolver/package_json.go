package resolver

import (
	"encoding/json"
	"sort"
	"strings"
)

// PackageJSON is the subset of package.json fields the resolver reads
// (spec §6 "On-disk formats touched"). Grounded on the teacher's
// package_json.go struct shape, trimmed to what Node resolution and
// exports/imports-field handling actually need.
type PackageJSON struct {
	Name    string
	Main    string
	Module  string
	Browser map[string]browserEntry
	Exports json.RawMessage
	Imports json.RawMessage
}

// browserEntry is one value of the "browser" alias map: either a relative
// path to redirect to, or false to mark the module as ignored entirely.
type browserEntry struct {
	Ignore bool
	Target string
}

func (b *browserEntry) UnmarshalJSON(data []byte) error {
	if string(data) == "false" {
		b.Ignore = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b.Target = s
	return nil
}

type rawPackageJSON struct {
	Name    string                  `json:"name"`
	Main    string                  `json:"main"`
	Module  string                  `json:"module"`
	Browser map[string]browserEntry `json:"browser"`
	Exports json.RawMessage         `json:"exports"`
	Imports json.RawMessage         `json:"imports"`
}

// ParsePackageJSON decodes a package.json's bytes. A malformed document
// yields an error; the resolver then skips that package.json.
func ParsePackageJSON(data []byte) (*PackageJSON, error) {
	var raw rawPackageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &PackageJSON{
		Name:    raw.Name,
		Main:    raw.Main,
		Module:  raw.Module,
		Browser: raw.Browser,
		Exports: raw.Exports,
		Imports: raw.Imports,
	}, nil
}

// exportsTarget is one leaf of a compiled exports/imports subpath map: a
// key ("." , "./foo", "./foo/*", or "#foo") plus its resolved value, which
// may itself require condition matching (value is a conditions object) or
// be a plain string/null.
type exportsTarget struct {
	key        string
	isWildcard bool
	prefix     string // text before "*" in a wildcard key
	suffix     string // text after "*" in a wildcard key
	value      json.RawMessage
}

// compileSubpathMap flattens the top-level keys of an exports/imports
// object (a JSON object keyed by subpath) into a sorted, longest-prefix
// friendly slice. Non-subpath-keyed (bare conditions-only) objects are
// represented as a single "." entry, matching Node's own disambiguation
// rule (all keys start with "." or "#", or none do).
func compileSubpathMap(raw json.RawMessage) ([]exportsTarget, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// A bare string/array "exports" value is legal; treat it as "."'s
		// value directly.
		return []exportsTarget{{key: ".", value: raw}}, nil
	}

	isSubpathKeyed := false
	for k := range obj {
		if strings.HasPrefix(k, ".") || strings.HasPrefix(k, "#") {
			isSubpathKeyed = true
			break
		}
	}
	if !isSubpathKeyed {
		return []exportsTarget{{key: ".", value: raw}}, nil
	}

	var out []exportsTarget
	for k, v := range obj {
		t := exportsTarget{key: k, value: v}
		if idx := strings.IndexByte(k, '*'); idx >= 0 {
			t.isWildcard = true
			t.prefix = k[:idx]
			t.suffix = k[idx+1:]
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return len(out[i].prefix) > len(out[j].prefix)
	})
	return out, nil
}

// lookupSubpath finds the best-matching entry for request (a subpath like
// "." or "./foo/bar") among a compiled exports/imports map: exact keys win
// over wildcards, longest wildcard prefix wins among wildcards.
func lookupSubpath(entries []exportsTarget, request string) (exportsTarget, string, bool) {
	for _, e := range entries {
		if !e.isWildcard && e.key == request {
			return e, "", true
		}
	}
	for _, e := range entries {
		if e.isWildcard && strings.HasPrefix(request, e.prefix) && strings.HasSuffix(request, e.suffix) {
			captured := request[len(e.prefix) : len(request)-len(e.suffix)]
			return e, captured, true
		}
	}
	return exportsTarget{}, "", false
}

// resolveConditions walks a conditions object (possibly nested) picking the
// first matching condition in document order, falling back to "default".
// conditions lists the currently active condition names;
// unspecifiedDefault controls what happens when a condition isn't present
// in that list at all ("default" semantics per spec's unspecified_conditions).
func resolveConditions(raw json.RawMessage, conditions []string, unspecifiedDefault bool) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	if string(raw) == "null" {
		return "", false
	}

	// Array form: first resolvable alternative wins.
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, item := range arr {
			if s, ok := resolveConditions(item, conditions, unspecifiedDefault); ok {
				return s, true
			}
		}
		return "", false
	}

	var obj orderedConditions
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	active := map[string]bool{}
	for _, c := range conditions {
		active[c] = true
	}
	for _, entry := range obj.entries {
		if entry.key == "default" {
			return resolveConditions(entry.value, conditions, unspecifiedDefault)
		}
		isActive, known := active[entry.key]
		if !known {
			isActive = unspecifiedDefault
		}
		if isActive {
			return resolveConditions(entry.value, conditions, unspecifiedDefault)
		}
	}
	return "", false
}

// orderedConditions preserves the JSON object's key order, which matters
// for condition precedence (first matching condition wins).
type orderedConditions struct {
	entries []struct {
		key   string
		value json.RawMessage
	}
}

func (o *orderedConditions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		o.entries = append(o.entries, struct {
			key   string
			value json.RawMessage
		}{key, raw})
	}
	return nil
}
