package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jsreactor/engine/internal/config"
	"github.com/jsreactor/engine/internal/effect"
	"github.com/jsreactor/engine/internal/evaluator"
	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/jsast"
	"github.com/jsreactor/engine/internal/reactivefs"
	"github.com/jsreactor/engine/internal/resolver"
)

var analyzeExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
var analyzeSkipDirs = map[string]bool{"node_modules": true, ".git": true}
var analyzeConcurrency int

// analyzeCmd runs the full partial-evaluation pipeline (spec §4.H-J) over
// every JS/TS source file under --root: jsast.Parse lowers each file's
// syntax tree, effect.Analyze extracts its Call/New/MemberCall/FreeVar
// effects, and evaluator.Link reduces the well-known ones to resolver
// requests, which are then resolved against the same reactive FS.
//
// Files are parsed and linked concurrently via a bounded conc.Pool, the
// same "bounded fan-out over independent units of work" shape
// internal/fs's ioSemaphore applies to raw disk reads, one layer up: each
// file's pipeline run is independent, so there is no reason to serialize
// the CPU-bound tree-sitter parse and partial-evaluation work across them.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract and resolve every require/import/URL/Worker reference under --root",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fsys := reactivefs.New(0, rootDir, rawfs.RealFS())
		r := resolver.New(fsys, opts)

		var files []fspath.FsPath
		if err := walkSourceFiles(fsys, fspath.Root(0), func(p fspath.FsPath) error {
			files = append(files, p)
			return nil
		}); err != nil {
			return err
		}

		var mu sync.Mutex
		p := pool.New().WithMaxGoroutines(analyzeConcurrency)
		for _, f := range files {
			f := f
			p.Go(func() {
				out := analyzeFile(fsys, r, f)
				if out == "" {
					return
				}
				mu.Lock()
				fmt.Print(out)
				mu.Unlock()
			})
		}
		p.Wait()
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 8, "max files analyzed in parallel")
}

func walkSourceFiles(fsys *reactivefs.FS, dir fspath.FsPath, visit func(fspath.FsPath) error) error {
	listing, err := fsys.ReadDir(dir, nil)
	if err != nil {
		return err
	}
	if !listing.Present {
		return nil
	}
	for _, name := range listing.Names {
		child, ok := dir.Join(name)
		if !ok {
			continue
		}
		switch listing.Kinds[name] {
		case reactivefs.EntryDirectory:
			if analyzeSkipDirs[name] {
				continue
			}
			if err := walkSourceFiles(fsys, child, visit); err != nil {
				return err
			}
		case reactivefs.EntryFile:
			if hasSourceExtension(name) {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hasSourceExtension(name string) bool {
	for _, ext := range analyzeExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// analyzeFile runs one file through the pipeline and returns its report as
// a single string, rather than printing directly, so concurrent callers in
// the analyze pool can serialize output without interleaving lines from
// different files.
func analyzeFile(fsys *reactivefs.FS, r *resolver.Resolver, p fspath.FsPath) string {
	content, err := fsys.Read(p, nil)
	if err != nil || !content.IsPresent() {
		return ""
	}
	program, err := jsast.Parse(content.Content)
	if err != nil {
		return fmt.Sprintf("%s: parse error: %v\n", p.Path, err)
	}

	graph := effect.Analyze(program)
	refs, diags := evaluator.Link(graph)

	lookupDir, ok := p.Parent()
	if !ok {
		lookupDir = p
	}

	var b strings.Builder
	for _, ref := range refs {
		result := r.Resolve(nil, lookupDir, ref.Request)
		label := ref.Kind.String()
		if ref.InTry {
			label += " (in try)"
		}
		fmt.Fprintf(&b, "%s: %s\n", p.Path, label)
		b.WriteString(formatResolveResult(result))
	}
	for _, d := range diags {
		fmt.Fprintf(&b, "%s: diagnostic: %s\n", p.Path, d.Message)
	}
	return b.String()
}
