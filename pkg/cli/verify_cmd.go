package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"osident/internal/domain"
)

type verifyResult struct {
	Runs        int                  `json:"runs" yaml:"runs"`
	Consistent  bool                 `json:"consistent" yaml:"consistent"`
	LiveBlocks  int64                `json:"live_blocks" yaml:"live_blocks"`
	TotalBlocks int64                `json:"total_blocks" yaml:"total_blocks"`
	Identity    *domain.UserIdentity `json:"identity" yaml:"identity"`
}

func newVerifyCmd(a *app) *cobra.Command {
	var runs int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Resolve concurrently several times and check the snapshots agree",
		Long: "verify runs independent resolutions in parallel, bypassing the cache, " +
			"and fails unless every snapshot is equal and no native buffer is left allocated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}

			results := make([]*domain.UserIdentity, runs)
			g, ctx := errgroup.WithContext(cmd.Context())
			for i := range results {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					id, err := a.resolver.Resolve()
					if err != nil {
						return fmt.Errorf("resolution %d: %w", i, err)
					}
					results[i] = id
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, id := range results[1:] {
				if !results[0].Equal(id) {
					return fmt.Errorf("resolution %d differs from resolution 0: %s vs %s", i+1, id, results[0])
				}
			}
			if live := a.tracker.Live(); live != 0 {
				return fmt.Errorf("%d native buffers still allocated after %d resolutions", live, runs)
			}

			res := verifyResult{
				Runs:        runs,
				Consistent:  true,
				LiveBlocks:  a.tracker.Live(),
				TotalBlocks: a.tracker.Total(),
				Identity:    results[0],
			}
			a.logger.Info("verify passed", "runs", runs, "blocks", res.TotalBlocks)
			return a.render(cmd.OutOrStdout(), res, func() [][2]string {
				return [][2]string{
					{"RUNS", fmt.Sprint(res.Runs)},
					{"CONSISTENT", fmt.Sprint(res.Consistent)},
					{"BLOCKS ALLOCATED", fmt.Sprint(res.TotalBlocks)},
					{"BLOCKS LIVE", fmt.Sprint(res.LiveBlocks)},
				}
			})
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 4, "Number of concurrent resolutions")

	return cmd
}
