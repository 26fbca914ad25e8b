package cli

import (
	"fmt"
	"io"
	"net/http"

	"NeoSync/internal/adapter/nasa"
	"NeoSync/internal/config"
	"NeoSync/internal/database"
	"NeoSync/internal/metrics"
	"NeoSync/internal/repository"
	"NeoSync/internal/service"
	"NeoSync/internal/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// rootOptions 全局参数
type rootOptions struct {
	configDir string
	logLevel  string

	// httpClient 非空时替换 NASA 客户端的底层 http.Client
	httpClient *http.Client
}

// App 一次命令执行所需的全部依赖
type App struct {
	Cfg      *config.Config
	Logger   *logrus.Logger
	DB       *gorm.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Summaries repository.SummaryRepository
	Runs      repository.RunRepository

	Cursor     *service.CursorService
	Ingest     *service.IngestService
	Apod       *service.ApodSyncService
	Resolution *service.ResolutionService
	Report     *service.ReportService
}

// newApp 加载配置并组装依赖。凭证缺失时在任何网络/存储操作之前返回 ErrAPIKeyNotFound
// override 在校验前修改配置（命令行参数优先于配置文件）
func newApp(opts *rootOptions, logOut io.Writer, override func(cfg *config.Config)) (*App, error) {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveAPIKey(); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 2. 初始化日志
	log := logger.New(cfg.Log)
	if logOut != nil {
		log.SetOutput(logOut)
	}
	log.Info("配置文件加载成功")

	// 3. 数据库连接 + 表结构迁移
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("数据库表结构迁移失败: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("数据库表结构检查完成（不存在则已创建）")

	// 4. 指标
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	// 5. NASA 客户端 + 业务服务
	clientOpts := []nasa.Option{nasa.WithMetrics(m)}
	if opts.httpClient != nil {
		clientOpts = append(clientOpts, nasa.WithHTTPClient(opts.httpClient))
	}
	client := nasa.NewClient(&cfg.Nasa, log, clientOpts...)

	asteroids := repository.NewAsteroidRepository(db)
	summaries := repository.NewSummaryRepository(db)
	apods := repository.NewApodRepository(db)
	matches := repository.NewMatchRepository(db)
	runs := repository.NewRunRepository(db)
	reports := repository.NewReportRepository(db)

	cursor, err := service.NewCursorService(asteroids, cfg.Ingest)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	return &App{
		Cfg:        cfg,
		Logger:     log,
		DB:         db,
		Registry:   registry,
		Metrics:    m,
		Summaries:  summaries,
		Runs:       runs,
		Cursor:     cursor,
		Ingest:     service.NewIngestService(client, asteroids, summaries, runs, cursor, cfg.Ingest, m, log),
		Apod:       service.NewApodSyncService(client, apods, summaries, runs, m, log),
		Resolution: service.NewResolutionService(summaries, apods, matches, runs, m, log),
		Report:     service.NewReportService(reports, summaries, apods),
	}, nil
}

func (a *App) Close() {
	if err := database.Close(a.DB); err != nil {
		a.Logger.WithError(err).Warn("关闭数据库连接失败")
	}
}
