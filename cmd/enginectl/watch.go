package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	rawfs "github.com/jsreactor/engine/internal/fs"
	"github.com/jsreactor/engine/internal/reactivefs"
	"github.com/jsreactor/engine/internal/watcher"
)

// watchCmd starts an internal/watcher.Watcher over --root and blocks until
// interrupted, mirroring philjestin-philtographer's cmd/watch.go but driving
// this engine's reactive invalidation instead of rebuilding a code graph
// on its own ad hoc fsnotify loop.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch --root and invalidate the reactive FS as files change",
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys := reactivefs.New(0, rootDir, rawfs.RealFS())
		w := watcher.New(fsys)
		if err := w.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Stop()

		fmt.Fprintln(os.Stderr, "watching", rootDir)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}
