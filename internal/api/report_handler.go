package api

import (
	"net/http"
	"strconv"

	"NeoSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportHandler 统计视图
type ReportHandler struct {
	reportService     *service.ReportService
	resolutionService *service.ResolutionService
	logger            *logrus.Logger
}

func NewReportHandler(reportService *service.ReportService, resolutionService *service.ResolutionService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, resolutionService: resolutionService, logger: logger}
}

func (h *ReportHandler) respond(c *gin.Context, name string, v interface{}, err error) {
	if err != nil {
		h.logger.WithError(err).WithField("view", name).Error("统计查询失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /api/stats/by-day
func (h *ReportHandler) ByDay(c *gin.Context) {
	v, err := h.reportService.ApproachesByDay(c.Request.Context())
	h.respond(c, "by-day", v, err)
}

// GET /api/stats/size
func (h *ReportHandler) Size(c *gin.Context) {
	v, err := h.reportService.SizeDistribution(c.Request.Context())
	h.respond(c, "size", v, err)
}

// GET /api/stats/velocity?closest=10
func (h *ReportHandler) Velocity(c *gin.Context) {
	closest, _ := strconv.Atoi(c.DefaultQuery("closest", "10"))
	v, err := h.reportService.VelocityVsDistance(c.Request.Context(), closest)
	h.respond(c, "velocity", v, err)
}

// GET /api/stats/apod-keywords
func (h *ReportHandler) ApodKeywords(c *gin.Context) {
	v, err := h.reportService.ApodKeywords(c.Request.Context())
	h.respond(c, "apod-keywords", v, err)
}

// GET /api/stats/distribution
func (h *ReportHandler) Distribution(c *gin.Context) {
	v, err := h.reportService.DataDistribution(c.Request.Context())
	h.respond(c, "distribution", v, err)
}

// GET /api/stats/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	v, err := h.reportService.SummaryStats(c.Request.Context())
	h.respond(c, "summary", v, err)
}

// GET /api/stats/join
func (h *ReportHandler) Join(c *gin.Context) {
	v, err := h.resolutionService.JoinSummary(c.Request.Context())
	h.respond(c, "join", v, err)
}

// GET /api/stats/totals
func (h *ReportHandler) Totals(c *gin.Context) {
	v, err := h.reportService.Totals(c.Request.Context())
	h.respond(c, "totals", v, err)
}
