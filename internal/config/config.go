// Package config is the resolver's CLI/configuration surface (spec §6
// "CLI / configuration surface"), trimmed from the teacher's much larger
// Options struct (bundler targets, loaders, JSX, source maps, plugin hooks
// for a full build) down to exactly the fields the resolver needs. Loaded
// with github.com/spf13/viper, grounded on philjestin-philtographer's and
// bennypowers-mappa's cmd/root.go wiring: a config file, environment
// variables, and CLI flags merged by viper, then unmarshaled into a single
// struct.
package config

// ModuleRootKind discriminates ModuleRoot's two shapes (spec §6 "modules").
type ModuleRootKind uint8

const (
	ModuleRootNested ModuleRootKind = iota
	ModuleRootPath
)

// ModuleRoot is one entry of ResolveOptions.Modules: either a named,
// possibly-nested module directory convention (like "node_modules") walked
// upward from the request, or a single fixed path.
type ModuleRoot struct {
	Kind ModuleRootKind `mapstructure:"kind"`

	// Nested
	Root  string   `mapstructure:"root"`
	Names []string `mapstructure:"names"`

	// Path
	Dir                string   `mapstructure:"dir"`
	ExcludedExtensions []string `mapstructure:"excluded_extensions"`
}

// IntoPackageRuleKind discriminates IntoPackageRule's two shapes (spec §6
// "into_package").
type IntoPackageRuleKind uint8

const (
	IntoPackageMainField IntoPackageRuleKind = iota
	IntoPackageExportsField
)

// IntoPackageRule is one entry of ResolveOptions.IntoPackage, tried in order
// when resolving into a package directory.
type IntoPackageRule struct {
	Kind IntoPackageRuleKind `mapstructure:"kind"`

	// MainField
	Field string `mapstructure:"field"`

	// ExportsField
	Conditions            []string `mapstructure:"conditions"`
	UnspecifiedConditions string   `mapstructure:"unspecified_conditions"`
}

// InPackageRuleKind discriminates InPackageRule's two shapes (spec §6
// "in_package").
type InPackageRuleKind uint8

const (
	InPackageAliasField InPackageRuleKind = iota
	InPackageImportsField
)

// InPackageRule is one entry of ResolveOptions.InPackage, tried in order
// before a relative or module request is resolved.
type InPackageRule struct {
	Kind InPackageRuleKind `mapstructure:"kind"`

	// AliasField
	Name string `mapstructure:"name"`

	// ImportsField
	Conditions            []string `mapstructure:"conditions"`
	UnspecifiedConditions string   `mapstructure:"unspecified_conditions"`
}

// ResolveOptions is the resolver's full configuration object (spec §6).
type ResolveOptions struct {
	Extensions   []string     `mapstructure:"extensions"`
	DefaultFiles []string     `mapstructure:"default_files"`
	Modules      []ModuleRoot `mapstructure:"modules"`

	IntoPackage []IntoPackageRule `mapstructure:"into_package"`
	InPackage   []InPackageRule   `mapstructure:"in_package"`

	ImportMap         string `mapstructure:"import_map"`
	FallbackImportMap string `mapstructure:"fallback_import_map"`
	ResolvedMap       string `mapstructure:"resolved_map"`

	PreferRelative                      bool `mapstructure:"prefer_relative"`
	FullySpecified                      bool `mapstructure:"fully_specified"`
	EnableTypeScriptWithOutputExtension bool `mapstructure:"enable_typescript_with_output_extension"`
	ParseDataURIs                       bool `mapstructure:"parse_data_uris"`
	LooseErrors                         bool `mapstructure:"loose_errors"`
	CollectAffectingSources             bool `mapstructure:"collect_affecting_sources"`

	// Plugin hook identifiers, resolved against the embedding program's own
	// plugin registry — this engine doesn't define a plugin ABI itself
	// (spec §1 non-goals), it only carries the ordered name lists through.
	BeforeResolvePlugins []string `mapstructure:"before_resolve_plugins"`
	AfterResolvePlugins  []string `mapstructure:"after_resolve_plugins"`
}

// Default returns the conventional Node-compatible resolution defaults.
func Default() ResolveOptions {
	return ResolveOptions{
		Extensions:   []string{".tsx", ".ts", ".jsx", ".js", ".mjs", ".cjs", ".json"},
		DefaultFiles: []string{"index"},
		Modules: []ModuleRoot{
			{Kind: ModuleRootNested, Root: "/", Names: []string{"node_modules"}},
		},
		IntoPackage: []IntoPackageRule{
			{Kind: IntoPackageExportsField, Conditions: []string{"import", "require", "node", "default"}},
			{Kind: IntoPackageMainField, Field: "main"},
		},
		InPackage: []InPackageRule{
			{Kind: InPackageImportsField, Conditions: []string{"import", "require", "node", "default"}},
			{Kind: InPackageAliasField, Name: "browser"},
		},
	}
}
