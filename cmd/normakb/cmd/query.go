package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/normakb/normakb/internal/output"
	"github.com/normakb/normakb/internal/retrieve"
)

// newQueryCmd creates the retrieval command.
func newQueryCmd(a *app) *cobra.Command {
	var (
		maxTokens   int
		showContent bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Retrieve the chunks relevant to a question, under a token ceiling",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			comps, err := newComponents(a)
			if err != nil {
				return err
			}
			defer comps.close()

			query := strings.Join(args, " ")
			result, err := comps.engine.Retrieve(cmd.Context(), query,
				retrieve.Options{MaxTokens: maxTokens})
			if err != nil {
				return err
			}

			if result.NoMatch {
				out.Warningf("no match found for %q", query)
				return nil
			}

			out.Successf("%d of %d candidate chunks, %d tokens",
				len(result.Matches), result.MatchCount, result.TotalTokens)
			if result.Truncated {
				out.Warningf("result truncated by the token ceiling")
			}

			for _, m := range result.Matches {
				out.Printf("%s  score=%d  tokens=%d", m.ChunkID, m.Score, m.Entry.Tokens)
				out.Dimf("%s  pages %v", m.Entry.Title, m.Entry.Pages)
				if showContent {
					out.Printf("%s", m.Content)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "context token ceiling (default from config)")
	cmd.Flags().BoolVar(&showContent, "content", false, "print full chunk content")

	return cmd
}
