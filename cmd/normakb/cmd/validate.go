package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/normakb/normakb/internal/index"
	"github.com/normakb/normakb/internal/output"
)

// newValidateCmd creates the index consistency check command.
func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check consistency between the chunk store and the published indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			comps, err := newComponents(a)
			if err != nil {
				return err
			}
			defer comps.close()

			snap := comps.snapshots.Current()
			if snap == nil {
				out.Warningf("no index published yet, nothing to validate")
				return nil
			}

			validator := index.NewValidator(comps.chunks, a.cfg.Chunking.TokenBudget)
			result, err := validator.Validate(cmd.Context(), snap)
			if err != nil {
				return err
			}

			if result.OK() {
				out.Successf("index %s consistent: %d chunks checked in %s",
					snap.BuildID, result.Checked, result.Duration.Round(timeRound))
				return nil
			}

			for _, inc := range result.Inconsistencies {
				out.Errorf("[%s] chunk %s: %s", inc.Type, inc.ChunkID, inc.Details)
			}
			return fmt.Errorf("index %s has %d inconsistencies",
				snap.BuildID, len(result.Inconsistencies))
		},
	}
}
