package cli

import (
	"NeoSync/internal/config"

	"github.com/spf13/cobra"
)

func reconcileCommand(opts *rootOptions) *cobra.Command {
	var threshold float64
	var topK int
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "NEO 条目与 APOD 关联：先按日期精确关联，再按名称相似度模糊匹配",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override := func(cfg *config.Config) {
				if cmd.Flags().Changed("threshold") {
					cfg.Resolve.Threshold = threshold
				}
				if cmd.Flags().Changed("top-k") {
					cfg.Resolve.TopK = topK
				}
			}
			return withApp(cmd, opts, override, func(app *App) error {
				ctx := cmd.Context()
				link, err := app.Resolution.LinkByDate(ctx)
				if err != nil {
					return err
				}
				fuzzy, err := app.Resolution.FuzzyMatch(ctx, app.Cfg.Resolve.Threshold, app.Cfg.Resolve.TopK)
				if err != nil {
					return err
				}
				summary, err := app.Resolution.JoinSummary(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"exact":   link,
					"fuzzy":   fuzzy,
					"summary": summary,
				})
			})
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "覆盖 resolve.threshold，取值 [0,1)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "覆盖 resolve.top_k")
	return cmd
}
