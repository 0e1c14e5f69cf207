package resolver

import (
	"encoding/json"
	"strings"
)

// tsconfigRaw is the subset of tsconfig.json the resolver reads (spec §6).
type tsconfigRaw struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// CompileTsconfigPaths turns compilerOptions.paths + baseUrl into an
// ImportMap whose entries alias into baseUrl, exactly like turbopack's own
// handling of tsconfig.json: "a tsconfig.json compilerOptions.paths option
// might alias '@*' to './*'" (turbopack-core/src/resolve/mod.rs, around the
// apply_in_package/alias machinery) — this engine compiles that mapping
// once, up front, instead of threading tsconfig state through every
// resolve call.
func CompileTsconfigPaths(data []byte) (*ImportMap, error) {
	var raw tsconfigRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	base := raw.CompilerOptions.BaseURL
	if base == "" {
		base = "."
	}

	m := &ImportMap{}
	for key, targets := range raw.CompilerOptions.Paths {
		if len(targets) == 0 {
			continue
		}
		target := targets[0]

		prefix, suffix := key, ""
		if idx := strings.IndexByte(key, '*'); idx >= 0 {
			prefix, suffix = key[:idx], key[idx+1:]
		}
		tprefix, tsuffix := target, ""
		if idx := strings.IndexByte(target, '*'); idx >= 0 {
			tprefix, tsuffix = target[:idx], target[idx+1:]
		}

		m.Entries = append(m.Entries, ImportMapEntry{
			Prefix:   prefix,
			Suffix:   suffix,
			Template: joinBase(base, tprefix) + "*" + tsuffix,
		})
	}
	return m, nil
}

func joinBase(base, rest string) string {
	base = strings.TrimSuffix(base, "/")
	rest = strings.TrimPrefix(rest, "/")
	if base == "." || base == "" {
		return "./" + rest
	}
	return base + "/" + rest
}
