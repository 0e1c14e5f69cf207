// Package main implements enginectl, the CLI surface for the reactive build
// engine (spec §6). It replaces the teacher's cmd/esbuild bundler CLI:
// instead of a one-shot bundle command, it exposes resolve/analyze/watch
// subcommands over the same reactive FS, resolver, and partial-evaluation
// pipeline the rest of this module implements.
//
// Grounded on philjestin-philtographer's cmd/root.go: a persistent --config
// flag, a PHILTOGRAPHER_-style env prefix (here ENGINECTL_), and viper
// merging config file + env + flags before any subcommand runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var rootDir string

var rootCmd = &cobra.Command{
	Use:   "enginectl",
	Short: "Inspect and drive the reactive JS/TS build engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(".")
			viper.SetConfigName("enginectl.config")
		}
		viper.SetEnvPrefix("ENGINECTL")
		viper.AutomaticEnv()
		if err := viper.ReadInConfig(); err == nil {
			fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./enginectl.config.{json,yaml,toml})")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root the engine's reactive FS is rooted at")
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
}
