package cli

import (
	"github.com/spf13/cobra"
)

// Report 汇总所有统计视图
type Report struct {
	ByDay        interface{} `json:"approaches_by_day"`
	Velocity     interface{} `json:"velocity_vs_distance"`
	Size         interface{} `json:"size_distribution"`
	ApodKeywords interface{} `json:"apod_keywords"`
	Distribution interface{} `json:"data_distribution"`
	Summary      interface{} `json:"summary_stats"`
	Join         interface{} `json:"join_summary"`
	Totals       interface{} `json:"totals"`
}

func reportCommand(opts *rootOptions) *cobra.Command {
	var closest int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "输出统计视图（JSON）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, nil, func(app *App) error {
				ctx := cmd.Context()
				var (
					out Report
					err error
				)
				if out.ByDay, err = app.Report.ApproachesByDay(ctx); err != nil {
					return err
				}
				if out.Velocity, err = app.Report.VelocityVsDistance(ctx, closest); err != nil {
					return err
				}
				if out.Size, err = app.Report.SizeDistribution(ctx); err != nil {
					return err
				}
				if out.ApodKeywords, err = app.Report.ApodKeywords(ctx); err != nil {
					return err
				}
				if out.Distribution, err = app.Report.DataDistribution(ctx); err != nil {
					return err
				}
				if out.Summary, err = app.Report.SummaryStats(ctx); err != nil {
					return err
				}
				if out.Join, err = app.Resolution.JoinSummary(ctx); err != nil {
					return err
				}
				if out.Totals, err = app.Report.Totals(ctx); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().IntVar(&closest, "closest", 10, "速度-距离视图中输出的最近掠过条数")
	return cmd
}
