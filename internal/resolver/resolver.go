package resolver

import (
	"strings"

	"github.com/jsreactor/engine/internal/config"
	"github.com/jsreactor/engine/internal/dirmatch"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/pattern"
	"github.com/jsreactor/engine/internal/reactivefs"
)

// BeforeResolveFunc is a before-resolve plugin hook (spec §4.F): given the
// lookup directory and request, it may short-circuit resolution entirely.
type BeforeResolveFunc func(lookupDir fspath.FsPath, req Request) (ResolveResult, bool)

// AfterResolveFunc is an after-resolve plugin hook: given a resolved source
// path, it may replace it and/or contribute additional affecting sources.
type AfterResolveFunc func(source fspath.FsPath) (replacement fspath.FsPath, affecting []fspath.FsPath, changed bool)

// Resolver implements spec §4.F against one reactive filesystem. It is safe
// for concurrent use by multiple tasks: every method takes the caller's
// reactivefs.TaskHandle and holds no resolve-scoped mutable state beyond
// local call-stack variables (the cycle-guard set is allocated fresh per
// top-level Resolve call).
//
// Grounded on the teacher's resolver.Resolver (a struct bundling fs access,
// options and caches, with a dispatch method keyed on request kind), rebuilt
// against turbopack's request/import-map/exports-field algorithm described
// in turbopack-core/src/resolve/mod.rs.
type Resolver struct {
	fsys              *reactivefs.FS
	opts              config.ResolveOptions
	importMap         *ImportMap
	fallbackImportMap *ImportMap

	before map[string]BeforeResolveFunc
	after  map[string]AfterResolveFunc
}

// New builds a Resolver over fsys using opts (typically config.Default()
// merged with project configuration).
func New(fsys *reactivefs.FS, opts config.ResolveOptions) *Resolver {
	return &Resolver{
		fsys:   fsys,
		opts:   opts,
		before: map[string]BeforeResolveFunc{},
		after:  map[string]AfterResolveFunc{},
	}
}

// SetImportMap installs the project's primary import map (spec §6
// "import_map"), compiled ahead of time from a JSON alias file and/or
// tsconfig.json via CompileTsconfigPaths.
func (r *Resolver) SetImportMap(m *ImportMap) { r.importMap = m }

// SetFallbackImportMap installs the map consulted only once direct
// resolution and the primary import map both fail (spec §6
// "fallback_import_map").
func (r *Resolver) SetFallbackImportMap(m *ImportMap) { r.fallbackImportMap = m }

// RegisterBeforeResolve names a before-resolve plugin hook so it can be
// referenced from config.ResolveOptions.BeforeResolvePlugins.
func (r *Resolver) RegisterBeforeResolve(name string, fn BeforeResolveFunc) { r.before[name] = fn }

// RegisterAfterResolve names an after-resolve plugin hook so it can be
// referenced from config.ResolveOptions.AfterResolvePlugins.
func (r *Resolver) RegisterAfterResolve(name string, fn AfterResolveFunc) { r.after[name] = fn }

// Resolve is the resolver's single entry point (spec §4.F): resolve req as
// seen from lookupDir, a directory that need not itself exist on disk.
func (r *Resolver) Resolve(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request) ResolveResult {
	visited := map[string]bool{}
	return r.resolveWithImportMap(task, lookupDir, req, visited)
}

// resolveWithImportMap runs the before-resolve plugins, then the primary
// import map (recursing through Alias results with a cycle guard), then
// falls through to direct dispatch, and finally the fallback import map if
// everything else came back unresolvable.
func (r *Resolver) resolveWithImportMap(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool) ResolveResult {
	for _, name := range r.opts.BeforeResolvePlugins {
		if fn, ok := r.before[name]; ok {
			if result, matched := fn(lookupDir, req); matched {
				return result
			}
		}
	}

	if result, ok := r.resolveViaImportMap(task, lookupDir, req, visited, r.importMap); ok {
		return result
	}

	result := r.dispatch(task, lookupDir, req, visited)

	if result.IsUnresolvable() && r.fallbackImportMap != nil {
		if fallback, ok := r.resolveViaImportMap(task, lookupDir, req, visited, r.fallbackImportMap); ok {
			result = fallback
		}
	}

	r.runAfterResolve(&result)
	return result
}

// resolveViaImportMap looks up req in m and, if it produced a definitive
// outcome, returns it. ok is false when m has nothing to say and direct
// dispatch should run instead.
func (r *Resolver) resolveViaImportMap(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool, m *ImportMap) (ResolveResult, bool) {
	if m == nil {
		return ResolveResult{}, false
	}
	if req.Kind == RequestAlternatives {
		var merged ResolveResult
		any := false
		for _, alt := range req.Alternatives {
			if result, ok := r.resolveViaImportMap(task, lookupDir, alt, visited, m); ok {
				merge(&merged, result)
				any = true
			}
		}
		return merged, any
	}

	text, ok := requestString(req)
	if !ok {
		return ResolveResult{}, false
	}
	cycleKey := text + "|" + lookupDir.Path
	if visited[cycleKey] {
		return ResolveResult{}, false
	}

	lookupResult := m.Lookup(text)
	return r.applyImportMapResult(task, lookupDir, req, visited, cycleKey, lookupResult)
}

func (r *Resolver) applyImportMapResult(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool, cycleKey string, result ImportMapResult) (ResolveResult, bool) {
	switch result.Kind {
	case ImportMapNoEntry:
		return ResolveResult{}, false

	case ImportMapResultEntry:
		return *result.Result, true

	case ImportMapExternal:
		var out ResolveResult
		out.addExternal(keyFor(result.ExternalName), result.ExternalName, result.ExternalKind, result.Traced)
		return out, true

	case ImportMapAlias:
		newLookupDir := lookupDir
		if result.HasAliasLookup {
			if p, ok := lookupDir.Join(result.AliasLookupPath); ok {
				newLookupDir = p
			}
		}
		visited[cycleKey] = true
		out := r.resolveWithImportMap(task, newLookupDir, result.AliasRequest, visited)
		delete(visited, cycleKey)
		return out, true

	case ImportMapAliasExternal:
		var out ResolveResult
		if result.Traced {
			out.addExternal(keyFor(result.ExternalName), result.ExternalName, result.ExternalKind, true)
			return out, true
		}
		return ResolveResult{}, false

	case ImportMapAlternatives:
		var merged ResolveResult
		any := false
		for _, alt := range result.Alternatives {
			if out, ok := r.applyImportMapResult(task, lookupDir, req, visited, cycleKey, alt); ok {
				merge(&merged, out)
				any = true
			}
		}
		return merged, any

	default:
		return ResolveResult{}, false
	}
}

func (r *Resolver) runAfterResolve(result *ResolveResult) {
	if len(r.opts.AfterResolvePlugins) == 0 {
		return
	}
	for i, entry := range result.Primary {
		if entry.Item.Kind != ItemSource {
			continue
		}
		for _, name := range r.opts.AfterResolvePlugins {
			fn, ok := r.after[name]
			if !ok {
				continue
			}
			replacement, affecting, changed := fn(entry.Item.Source)
			if changed {
				result.Primary[i].Item.Source = replacement
			}
			for _, p := range affecting {
				result.addAffecting(p)
			}
		}
	}
}

func merge(into *ResolveResult, from ResolveResult) {
	into.Primary = append(into.Primary, from.Primary...)
	for _, p := range from.AffectingSources {
		into.addAffecting(p)
	}
}

// requestString renders req back into the canonical text an import map rule
// is written against. Requests without a natural textual form (Windows,
// Empty, Dynamic, Unknown) return ok=false.
func requestString(req Request) (string, bool) {
	switch req.Kind {
	case RequestRelative, RequestRaw:
		return req.Path, true
	case RequestModule:
		return req.Module, true
	case RequestServerRelative:
		return req.Path, true
	case RequestPackageInternal:
		return "#" + req.Internal, true
	case RequestUri:
		return req.Protocol + "://" + req.Remainder, true
	default:
		return "", false
	}
}

// dispatch resolves req directly, without consulting an import map.
func (r *Resolver) dispatch(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool) ResolveResult {
	switch req.Kind {
	case RequestRelative:
		return r.resolveRelative(task, lookupDir, req, false)
	case RequestRaw:
		return r.resolveRelative(task, lookupDir, req, true)
	case RequestModule:
		return r.resolveModule(task, lookupDir, req, visited)
	case RequestPackageInternal:
		return r.resolvePackageInternal(task, lookupDir, req, visited)
	case RequestServerRelative:
		return r.resolveServerRelative(task, lookupDir, req, visited)
	case RequestUri:
		var out ResolveResult
		name := req.Protocol + ":" + req.Remainder
		out.addExternal(keyFor(name), name, ExternalUrl, false)
		return out
	case RequestDataUri:
		return r.resolveDataURI(req)
	case RequestAlternatives:
		var merged ResolveResult
		for _, alt := range req.Alternatives {
			merge(&merged, r.resolveWithImportMap(task, lookupDir, alt, visited))
		}
		if len(merged.Primary) == 0 {
			return unresolvable(keyFor(""), "no alternatives to resolve")
		}
		return merged
	case RequestWindows:
		return unresolvable(keyFor(req.Path), "Windows-style paths are not supported by this resolver")
	case RequestEmpty:
		var out ResolveResult
		out.addIgnore(keyFor(""))
		return out
	case RequestDynamic:
		return unresolvable(keyFor(""), "request contains a dynamic expression that could not be statically analyzed")
	default:
		return unresolvable(keyFor(req.UnknownPath), "unrecognized import specifier")
	}
}

func (r *Resolver) resolveDataURI(req Request) ResolveResult {
	var out ResolveResult
	if !r.opts.ParseDataURIs {
		name := "data:" + req.MediaType
		out.addExternal(keyFor(name), name, ExternalUrl, false)
		return out
	}
	key := keyFor("data:" + req.MediaType + "," + req.Data)
	out.Primary = append(out.Primary, PrimaryEntry{Key: key, Item: ResolveResultItem{Kind: ItemCustom, Custom: 1}})
	return out
}

// resolveServerRelative re-enters resolution at the filesystem root with the
// leading '/' stripped (spec §4.F "ServerRelative").
func (r *Resolver) resolveServerRelative(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool) ResolveResult {
	root := fspath.Root(lookupDir.Fs)
	newReq := Request{Kind: RequestRelative, Path: strings.TrimPrefix(req.Path, "/"), ForceInLookupDir: true, Query: req.Query, Fragment: req.Fragment}
	return r.resolveWithImportMap(task, root, newReq, visited)
}

// resolveRelative resolves a relative (or, if raw, an exact) path against
// lookupDir: apply the in_package alias field (unless raw), enumerate
// file/directory candidates through internal/dirmatch using the extensions +
// default-files pattern, and recurse into directories that match.
func (r *Resolver) resolveRelative(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, isRaw bool) ResolveResult {
	path := req.Path
	var result ResolveResult

	if !isRaw {
		if aliased, ignored, applied := r.applyInPackageAlias(task, lookupDir, path, &result); applied {
			if ignored {
				result.addIgnore(keyFor(path))
				return result
			}
			path = aliased
		}
	}

	pat := r.candidatePattern(path)
	matches, err := dirmatch.ReadMatches(r.fsys, task, lookupDir, "", req.ForceInLookupDir, pat)
	if err != nil {
		result.addError(keyFor(path), err.Error())
		return result
	}

	found := false
	for _, m := range matches {
		switch m.Kind {
		case dirmatch.KindFile:
			result.addSource(keyFor(path), m.Path)
			found = true
		case dirmatch.KindDirectory:
			if r.resolveIntoFolder(task, m.Path, path, &result) {
				found = true
			}
		}
	}

	if !found {
		result.addError(keyFor(path), "could not resolve relative import \""+path+"\"")
	}
	return result
}

// candidatePattern builds the Pattern dirmatch walks to enumerate a relative
// request's candidates: the path itself, the path with each configured
// extension appended, and (so directories can be detected) the bare path.
func (r *Resolver) candidatePattern(path string) pattern.Pattern {
	alts := []pattern.Pattern{pattern.Constant(path)}
	if !r.opts.FullySpecified || hasNoExtension(path) {
		for _, ext := range r.opts.Extensions {
			alts = append(alts, pattern.Constant(path+ext))
		}
	}
	return pattern.Alternatives(alts...)
}

func hasNoExtension(p string) bool {
	slash := strings.LastIndexByte(p, '/')
	dot := strings.LastIndexByte(p, '.')
	return dot <= slash
}

// resolveIntoFolder implements spec §4.F "resolve_into_folder": apply
// opts.IntoPackage in order if a package.json is present, then fall back to
// opts.DefaultFiles with extensions.
func (r *Resolver) resolveIntoFolder(task reactivefs.TaskHandle, dir fspath.FsPath, originalPath string, result *ResolveResult) bool {
	pkgPath, ok := dir.Join("package.json")
	if ok {
		if content, err := r.fsys.Read(pkgPath, task); err == nil && content.IsPresent() {
			result.addAffecting(pkgPath)
			if pkg, perr := ParsePackageJSON(content.File.Content); perr == nil {
				if r.resolveIntoPackage(task, dir, pkg, ".", originalPath, result) {
					return true
				}
			}
		}
	}

	found := false
	for _, name := range r.opts.DefaultFiles {
		pat := r.candidatePattern(name)
		matches, err := dirmatch.ReadMatches(r.fsys, task, dir, "", true, pat)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if m.Kind == dirmatch.KindFile {
				result.addSource(keyFor(originalPath), m.Path)
				found = true
			}
		}
		if found {
			break
		}
	}
	return found
}

// resolveIntoPackage implements opts.IntoPackage in order: the
// exports-field rule (handleExportsImportsField against pkg.Exports) or the
// main-field rule ("module" reads pkg.Module; any other field name reads
// pkg.Main).
func (r *Resolver) resolveIntoPackage(task reactivefs.TaskHandle, pkgDir fspath.FsPath, pkg *PackageJSON, subpath, originalPath string, result *ResolveResult) bool {
	for _, rule := range r.opts.IntoPackage {
		switch rule.Kind {
		case IntoPackageExportsField:
			if pkg.Exports == nil {
				continue
			}
			if r.handleExportsImportsField(task, pkgDir, pkg.Exports, subpath, rule.Conditions, rule.UnspecifiedConditions, originalPath, result) {
				return true
			}
		case IntoPackageMainField:
			field := rule.Field
			if field == "" {
				field = "main"
			}
			value := pkg.Main
			if field == "module" {
				value = pkg.Module
			}
			if value == "" {
				continue
			}
			target, ok := pkgDir.Join(value)
			if !ok {
				continue
			}
			pat := r.candidatePattern(target.FileName())
			parent, _ := target.Parent()
			matches, err := dirmatch.ReadMatches(r.fsys, task, parent, "", true, pat)
			if err != nil {
				continue
			}
			for _, m := range matches {
				if m.Kind == dirmatch.KindFile {
					result.addSource(keyFor(originalPath), m.Path)
					return true
				}
				if m.Kind == dirmatch.KindDirectory {
					if r.resolveIntoFolder(task, m.Path, originalPath, result) {
						return true
					}
				}
			}
		}
	}
	return false
}

// handleExportsImportsField implements spec §4.F's condition-based
// subpath lookup (grounded on handle_exports_imports_field,
// turbopack-core/src/resolve/mod.rs ~2870-2978): find the best-matching
// subpath entry, resolve its conditions, then resolve the resulting target
// path relative to pkgDir.
func (r *Resolver) handleExportsImportsField(task reactivefs.TaskHandle, pkgDir fspath.FsPath, raw []byte, subpath string, conditions []string, unspecifiedConditions string, originalPath string, result *ResolveResult) bool {
	entries, err := compileSubpathMap(raw)
	if err != nil {
		return false
	}
	entry, captured, ok := lookupSubpath(entries, subpath)
	if !ok {
		return false
	}
	unspecifiedDefault := unspecifiedConditions == "set"
	target, ok := resolveConditions(entry.value, conditions, unspecifiedDefault)
	if !ok || target == "" {
		return false
	}
	if entry.isWildcard {
		target = strings.Replace(target, "*", captured, 1)
	}
	full, ok := pkgDir.Join(target)
	if !ok {
		return false
	}

	pat := r.candidatePattern(full.FileName())
	parent, _ := full.Parent()
	matches, err := dirmatch.ReadMatches(r.fsys, task, parent, "", true, pat)
	if err != nil {
		return false
	}
	for _, m := range matches {
		if m.Kind == dirmatch.KindFile {
			result.addSource(keyFor(originalPath), m.Path)
			return true
		}
	}
	return false
}

// applyInPackageAlias implements opts.InPackage (spec §4.F "in_package"):
// the nearest ancestor package.json's alias field (default "browser") or
// imports field may redirect a relative import elsewhere, or mark it
// ignored. Returns applied=false when no rule fired.
func (r *Resolver) applyInPackageAlias(task reactivefs.TaskHandle, lookupDir fspath.FsPath, path string, result *ResolveResult) (newPath string, ignored bool, applied bool) {
	pkgDir, pkg, ok := r.findNearestPackageJSON(task, lookupDir, result)
	if !ok {
		return "", false, false
	}
	rel, ok := relativeFromPackageRoot(pkgDir, lookupDir, path)
	if !ok {
		return "", false, false
	}
	for _, rule := range r.opts.InPackage {
		if rule.Kind != InPackageAliasField {
			continue
		}
		name := rule.Name
		if name == "" {
			name = "browser"
		}
		if name != "browser" || pkg.Browser == nil {
			continue
		}
		if entry, ok := lookupBrowserAlias(pkg.Browser, rel); ok {
			if entry.Ignore {
				return "", true, true
			}
			if entry.Target != "" {
				return entry.Target, false, true
			}
		}
	}
	return "", false, false
}

func lookupBrowserAlias(m map[string]browserEntry, rel string) (browserEntry, bool) {
	candidates := []string{rel, "./" + rel}
	for _, c := range candidates {
		if e, ok := m[c]; ok {
			return e, true
		}
	}
	return browserEntry{}, false
}

// relativeFromPackageRoot renders lookupDir.Join(path) as a path relative to
// pkgDir's parent, the form package.json's browser map keys are written
// against ("./foo" or "foo").
func relativeFromPackageRoot(pkgDir, lookupDir fspath.FsPath, path string) (string, bool) {
	full, ok := lookupDir.Join(path)
	if !ok {
		return "", false
	}
	root, ok := pkgDir.Parent()
	if !ok {
		return "", false
	}
	if !full.IsInsideOrEqual(root) {
		return "", false
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(full.Path, root.Path), "/")
	return rel, true
}

func (r *Resolver) findNearestPackageJSON(task reactivefs.TaskHandle, dir fspath.FsPath, result *ResolveResult) (fspath.FsPath, *PackageJSON, bool) {
	for {
		pkgPath, ok := dir.Join("package.json")
		if ok {
			if content, err := r.fsys.Read(pkgPath, task); err == nil && content.IsPresent() {
				if pkg, perr := ParsePackageJSON(content.File.Content); perr == nil {
					if result != nil {
						result.addAffecting(pkgPath)
					}
					return pkgPath, pkg, true
				}
			}
		}
		parent, ok := dir.Parent()
		if !ok {
			return fspath.FsPath{}, nil, false
		}
		dir = parent
	}
}

// resolvePackageInternal resolves a "#foo" specifier (spec §4.F
// "PackageInternal") against the nearest package.json's imports field.
func (r *Resolver) resolvePackageInternal(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool) ResolveResult {
	var result ResolveResult
	pkgDir, pkg, ok := r.findNearestPackageJSON(task, lookupDir, &result)
	if !ok || pkg.Imports == nil {
		result.addError(keyFor("#"+req.Internal), "no enclosing package.json declares an \"imports\" field")
		return result
	}
	root, _ := pkgDir.Parent()
	subpath := "#" + req.Internal

	for _, rule := range r.opts.InPackage {
		if rule.Kind != InPackageImportsField {
			continue
		}
		if r.handleExportsImportsField(task, root, pkg.Imports, subpath, rule.Conditions, rule.UnspecifiedConditions, subpath, &result) {
			return result
		}
	}
	result.addError(keyFor(subpath), "could not resolve package-internal import \""+subpath+"\"")
	return result
}

// resolveModule resolves a bare module specifier (spec §4.F "Module"):
// optionally prefer a relative interpretation, attempt a package
// self-reference, then walk opts.Modules looking for the package.
func (r *Resolver) resolveModule(task reactivefs.TaskHandle, lookupDir fspath.FsPath, req Request, visited map[string]bool) ResolveResult {
	var result ResolveResult

	if r.opts.PreferRelative {
		relReq := Request{Kind: RequestRelative, Path: "./" + req.Module, Query: req.Query, Fragment: req.Fragment}
		relResult := r.resolveRelative(task, lookupDir, relReq, false)
		if !relResult.IsUnresolvable() {
			return relResult
		}
	}

	pkgName, subpath := splitModuleSpecifier(req.Module)

	if pkgDir, pkg, ok := r.findNearestPackageJSON(task, lookupDir, &result); ok && pkg.Name == pkgName {
		root, _ := pkgDir.Parent()
		if r.resolveIntoPackage(task, root, pkg, subpath, req.Module, &result) {
			return result
		}
	}

	for _, mod := range r.opts.Modules {
		if ok := r.tryModuleRoot(task, lookupDir, mod, pkgName, subpath, req.Module, &result); ok {
			return result
		}
	}

	if len(result.Primary) == 0 {
		result.addError(keyFor(req.Module), "could not resolve module \""+req.Module+"\"")
	}
	return result
}

// splitModuleSpecifier splits "lodash/merge" into ("lodash", "./merge") and
// "@scope/pkg/sub" into ("@scope/pkg", "./sub"), per Node's scoped-package
// convention.
func splitModuleSpecifier(module string) (pkgName, subpath string) {
	segs := strings.Split(module, "/")
	if len(segs) == 0 {
		return module, "."
	}
	n := 1
	if strings.HasPrefix(segs[0], "@") && len(segs) > 1 {
		n = 2
	}
	if len(segs) <= n {
		return module, "."
	}
	return strings.Join(segs[:n], "/"), "./" + strings.Join(segs[n:], "/")
}

func (r *Resolver) tryModuleRoot(task reactivefs.TaskHandle, lookupDir fspath.FsPath, mod config.ModuleRoot, pkgName, subpath, originalModule string, result *ResolveResult) bool {
	switch mod.Kind {
	case config.ModuleRootNested:
		dir := lookupDir
		for {
			for _, name := range mod.Names {
				base, ok := dir.Join(name)
				if !ok {
					continue
				}
				pkgDir, ok := base.Join(pkgName)
				if !ok {
					continue
				}
				if r.resolveAtModuleDir(task, pkgDir, subpath, originalModule, result) {
					return true
				}
			}
			parent, ok := dir.Parent()
			if !ok {
				return false
			}
			dir = parent
		}
	case config.ModuleRootPath:
		base := fspath.Root(lookupDir.Fs)
		dir, ok := base.Join(mod.Dir)
		if !ok {
			return false
		}
		pkgDir, ok := dir.Join(pkgName)
		if !ok {
			return false
		}
		return r.resolveAtModuleDir(task, pkgDir, subpath, originalModule, result)
	}
	return false
}

func (r *Resolver) resolveAtModuleDir(task reactivefs.TaskHandle, pkgDir fspath.FsPath, subpath, originalModule string, result *ResolveResult) bool {
	pkgJSONPath, ok := pkgDir.Join("package.json")
	if !ok {
		return false
	}
	content, err := r.fsys.Read(pkgJSONPath, task)
	if err != nil || !content.IsPresent() {
		if subpath == "." {
			return r.resolveIntoFolder(task, pkgDir, originalModule, result)
		}
		return false
	}
	result.addAffecting(pkgJSONPath)
	pkg, perr := ParsePackageJSON(content.File.Content)
	if perr != nil {
		return false
	}
	return r.resolveIntoPackage(task, pkgDir, pkg, subpath, originalModule, result)
}
