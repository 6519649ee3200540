package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	kberrors "github.com/normakb/normakb/internal/errors"
	"github.com/normakb/normakb/internal/output"
	"github.com/normakb/normakb/internal/watcher"
)

// newUpdateCmd creates the incremental update command.
func newUpdateCmd(a *app) *cobra.Command {
	var (
		watch    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Incrementally rebuild new or changed documents",
		Long: `Update hashes each document in the processed directory against the
version tracker and rebuilds only those whose content changed.

With --watch it keeps running, rebuilding on file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			comps, err := newComponents(a)
			if err != nil {
				return err
			}
			defer comps.close()

			if err := updatePass(cmd.Context(), a, comps, out, nil); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			w, err := watcher.New(a.cfg.Paths.ProcessedDir, debounce, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out.Printf("watching %s for changes (Ctrl-C to stop)", a.cfg.Paths.ProcessedDir)
			for {
				select {
				case <-ctx.Done():
					return nil
				case batch, ok := <-w.Events():
					if !ok {
						return nil
					}
					if err := updatePass(ctx, a, comps, out, batch); err != nil {
						// Keep watching: a failed build leaves the
						// previous index published.
						out.Errorf("update failed: %v", err)
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and update on file changes")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounceWindow, "event coalescing window in watch mode")

	return cmd
}

// updatePass rebuilds the documents whose content hash changed.
// When only is non-nil, consideration is limited to those paths.
func updatePass(ctx context.Context, a *app, comps *components,
	out *output.Writer, only []string) error {

	paths := only
	if paths == nil {
		var err error
		paths, err = listDocuments(a.cfg.Paths.ProcessedDir)
		if err != nil {
			return err
		}
	}

	updated := 0
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		docID := docIDFromPath(path)
		needs, err := comps.tracker.NeedsUpdate(ctx, docID, text)
		if err != nil {
			return err
		}
		if !needs {
			out.Dimf("%s unchanged", docID)
			continue
		}

		if err := rebuildOne(ctx, comps, out, path, "", ""); err != nil {
			if kberrors.GetCode(err) == kberrors.ErrCodeBuildInProgress {
				out.Warningf("%s: build already in progress, skipping", docID)
				continue
			}
			return err
		}
		updated++
	}

	if updated == 0 && only == nil {
		out.Printf("all documents up to date")
	}
	return nil
}
