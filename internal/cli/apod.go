package cli

import (
	"errors"
	"fmt"

	"NeoSync/internal/model"

	"github.com/spf13/cobra"
)

func apodCommand(opts *rootOptions) *cobra.Command {
	var date, start, end string
	var neoDates bool
	cmd := &cobra.Command{
		Use:   "apod",
		Short: "拉取 APOD：--date 单日，--start/--end 区间，--neo-dates 覆盖所有日汇总日期",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			if date != "" {
				modes++
			}
			if start != "" || end != "" {
				modes++
			}
			if neoDates {
				modes++
			}
			if modes != 1 {
				return errors.New("--date、--start/--end、--neo-dates 必须且只能指定一种")
			}

			return withApp(cmd, opts, nil, func(app *App) error {
				ctx := cmd.Context()
				switch {
				case date != "":
					d, err := model.ParseDate(date)
					if err != nil {
						return fmt.Errorf("--date 格式错误: %w", err)
					}
					created, err := app.Apod.SyncDate(ctx, d)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"date": date, "created": created})
				case neoDates:
					res, err := app.Apod.SyncForNeoDates(ctx)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), res)
				default:
					from, to, err := parseRange(start, end)
					if err != nil {
						return err
					}
					res, err := app.Apod.SyncRange(ctx, from, to)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), res)
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "单日 YYYY-MM-DD")
	cmd.Flags().StringVar(&start, "start", "", "区间开始")
	cmd.Flags().StringVar(&end, "end", "", "区间结束（含）")
	cmd.Flags().BoolVar(&neoDates, "neo-dates", false, "覆盖所有 NEO 日汇总的日期区间")
	return cmd
}
