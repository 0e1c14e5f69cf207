package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jsreactor/engine/internal/config"
	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/fspath"
	"github.com/jsreactor/engine/internal/reactivefs"
	"github.com/jsreactor/engine/internal/resolver"
)

var resolveFrom string

var resolveCmd = &cobra.Command{
	Use:   "resolve <specifier>",
	Short: "Resolve one module specifier the way the reactive resolver would",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		fsys := reactivefs.New(0, rootDir, rawfs.RealFS())
		lookupDir, ok := fspath.Root(0).Join(resolveFrom)
		if !ok {
			return fmt.Errorf("--from %q escapes the project root", resolveFrom)
		}

		r := resolver.New(fsys, opts)
		req := resolver.ParseRequest(args[0], 0)
		result := r.Resolve(nil, lookupDir, req)
		printResolveResult(result)
		return nil
	},
}

func printResolveResult(result resolver.ResolveResult) {
	fmt.Print(formatResolveResult(result))
}

func formatResolveResult(result resolver.ResolveResult) string {
	var b strings.Builder
	for _, entry := range result.Primary {
		switch entry.Item.Kind {
		case resolver.ItemSource:
			fmt.Fprintln(&b, "source:", entry.Item.Source.Path)
		case resolver.ItemExternal:
			fmt.Fprintln(&b, "external:", entry.Item.ExternalName)
		case resolver.ItemIgnore:
			fmt.Fprintln(&b, "ignored")
		case resolver.ItemError:
			fmt.Fprintln(&b, "error:", entry.Item.ErrorMessage)
		case resolver.ItemEmpty:
			fmt.Fprintln(&b, "empty")
		case resolver.ItemCustom:
			fmt.Fprintln(&b, "custom")
		}
	}
	for _, src := range result.AffectingSources {
		fmt.Fprintln(&b, "affecting:", src.Path)
	}
	return b.String()
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFrom, "from", ".", "directory (relative to --root) the specifier is resolved from")
}
