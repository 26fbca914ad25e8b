package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"NeoSync/internal/api"
	"NeoSync/internal/config"

	"github.com/spf13/cobra"
)

func serveCommand(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 查询/触发接口",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override := func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.Server.Port = port
				}
			}
			return withApp(cmd, opts, override, func(app *App) error {
				return serve(cmd.Context(), app)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "覆盖 server.port")
	return cmd
}

func serve(ctx context.Context, app *App) error {
	r := api.NewRouter(app.Cfg.Server.Mode, api.Handlers{
		Sync:       api.NewSyncHandler(app.Ingest, app.Apod, app.Resolution, app.Cfg, app.Logger),
		Resolution: api.NewResolutionHandler(app.Resolution, app.Cursor, app.Summaries, app.Runs, app.Logger),
		Report:     api.NewReportHandler(app.Report, app.Resolution, app.Logger),
		Registry:   app.Registry,
	})
	app.Logger.Infof("Gin运行模式: %s", app.Cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Infof("服务启动成功，端口：%d", app.Cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Logger.Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	return nil
}
