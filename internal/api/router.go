package api

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖
type Handlers struct {
	Sync       *SyncHandler
	Resolution *ResolutionHandler
	Report     *ReportHandler
	Registry   *prometheus.Registry
}

// NewRouter 注册全部路由；mode 为 gin 运行模式
func NewRouter(mode string, h Handlers) *gin.Engine {
	gin.SetMode(mode)
	r := gin.Default()

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	if h.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Registry, promhttp.HandlerOpts{})))
	}

	r.POST("/sync/neo", h.Sync.SyncNeo)
	r.POST("/sync/neo/range", h.Sync.SyncNeoRange)
	r.POST("/sync/apod", h.Sync.SyncApod)
	r.POST("/reconcile", h.Sync.Reconcile)

	apiGroup := r.Group("/api")
	apiGroup.GET("/pairs", h.Resolution.ListPairs)
	apiGroup.GET("/items/:id/apod", h.Resolution.GetItemApod)
	apiGroup.GET("/apods/:id/items", h.Resolution.GetApodItems)
	apiGroup.GET("/summaries", h.Resolution.ListSummaries)
	apiGroup.GET("/cursor", h.Resolution.GetCursor)
	apiGroup.GET("/runs", h.Resolution.ListRuns)

	stats := apiGroup.Group("/stats")
	stats.GET("/by-day", h.Report.ByDay)
	stats.GET("/size", h.Report.Size)
	stats.GET("/velocity", h.Report.Velocity)
	stats.GET("/apod-keywords", h.Report.ApodKeywords)
	stats.GET("/distribution", h.Report.Distribution)
	stats.GET("/summary", h.Report.Summary)
	stats.GET("/join", h.Report.Join)
	stats.GET("/totals", h.Report.Totals)
	return r
}
