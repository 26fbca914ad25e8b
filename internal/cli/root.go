package cli

import (
	"NeoSync/internal/config"

	"github.com/spf13/cobra"
)

// RootCommand 创建根命令 neosync
func RootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neosync",
		Short:         "NASA NeoWs / APOD 增量入库与关联",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config", "./config", "config.yaml 所在目录")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "覆盖 log.level")

	rootCmd.AddCommand(
		ingestCommand(opts),
		ingestRangeCommand(opts),
		apodCommand(opts),
		reconcileCommand(opts),
		reportCommand(opts),
		serveCommand(opts),
	)
	return rootCmd
}

// withApp 组装依赖后执行 fn，结束时释放连接；日志写到 stderr，stdout 只输出结果
func withApp(cmd *cobra.Command, opts *rootOptions, override func(cfg *config.Config), fn func(app *App) error) error {
	app, err := newApp(opts, cmd.ErrOrStderr(), override)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
