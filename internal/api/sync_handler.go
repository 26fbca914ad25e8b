package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"NeoSync/internal/config"
	"NeoSync/internal/model"
	"NeoSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	ingestService     *service.IngestService
	apodService       *service.ApodSyncService
	resolutionService *service.ResolutionService
	resolveCfg        config.ResolveConfig
	logger            *logrus.Logger
}

func NewSyncHandler(
	ingestService *service.IngestService,
	apodService *service.ApodSyncService,
	resolutionService *service.ResolutionService,
	cfg *config.Config,
	logger *logrus.Logger,
) *SyncHandler {
	return &SyncHandler{
		ingestService:     ingestService,
		apodService:       apodService,
		resolutionService: resolutionService,
		resolveCfg:        cfg.Resolve,
		logger:            logger,
	}
}

// SyncNeo 按游标窗口增量拉取
// POST /sync/neo
func (h *SyncHandler) SyncNeo(c *gin.Context) {
	res, err := h.ingestService.Run(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("NEO增量拉取失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncNeoRange 逐日拉取指定区间
// POST /sync/neo/range?start=2025-01-01&end=2025-01-07
func (h *SyncHandler) SyncNeoRange(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	res, err := h.ingestService.IngestRange(c.Request.Context(), start, end)
	if err != nil {
		h.logger.WithError(err).Error("NEO区间拉取失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncApod 三种方式：?date= 单日；?start=&end= 区间；?neo_dates=true 覆盖所有日汇总日期
// POST /sync/apod
func (h *SyncHandler) SyncApod(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("date 格式错误: %s", raw)})
			return
		}
		created, err := h.apodService.SyncDate(ctx, d)
		if err != nil {
			h.logger.WithError(err).WithField("date", raw).Error("APOD单日拉取失败")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": raw, "created": created})
		return
	}

	var (
		res *service.ApodSyncResult
		err error
	)
	if c.Query("neo_dates") == "true" {
		res, err = h.apodService.SyncForNeoDates(ctx)
	} else {
		start, end, ok := dateRange(c)
		if !ok {
			return
		}
		res, err = h.apodService.SyncRange(ctx, start, end)
	}
	if err != nil {
		h.logger.WithError(err).Error("APOD拉取失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Reconcile 先按日期精确关联，再做模糊匹配
// POST /reconcile?threshold=0.15&top_k=3
func (h *SyncHandler) Reconcile(c *gin.Context) {
	threshold := h.resolveCfg.Threshold
	topK := h.resolveCfg.TopK
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold 必须为数字"})
			return
		}
		threshold = v
	}
	if raw := c.Query("top_k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_k 必须为整数"})
			return
		}
		topK = v
	}

	ctx := c.Request.Context()
	link, err := h.resolutionService.LinkByDate(ctx)
	if err != nil {
		h.logger.WithError(err).Error("按日期关联失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	fuzzy, err := h.resolutionService.FuzzyMatch(ctx, threshold, topK)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidMatchParams) {
			status = http.StatusBadRequest
		}
		h.logger.WithError(err).Error("模糊匹配失败")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exact": link, "fuzzy": fuzzy})
}

// dateRange 解析 start/end 查询参数，失败时已写入 400
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := model.ParseDate(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start 必须为 YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	end, err := model.ParseDate(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end 必须为 YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end 早于 start"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
