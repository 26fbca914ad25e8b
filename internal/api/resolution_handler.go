package api

import (
	"errors"
	"net/http"
	"strconv"

	"NeoSync/internal/model"
	"NeoSync/internal/repository"
	"NeoSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ResolutionHandler 关联结果查询接口
type ResolutionHandler struct {
	resolutionService *service.ResolutionService
	cursorService     *service.CursorService
	summaryRepo       repository.SummaryRepository
	runRepo           repository.RunRepository
	logger            *logrus.Logger
}

func NewResolutionHandler(
	resolutionService *service.ResolutionService,
	cursorService *service.CursorService,
	summaryRepo repository.SummaryRepository,
	runRepo repository.RunRepository,
	logger *logrus.Logger,
) *ResolutionHandler {
	return &ResolutionHandler{
		resolutionService: resolutionService,
		cursorService:     cursorService,
		summaryRepo:       summaryRepo,
		runRepo:           runRepo,
		logger:            logger,
	}
}

// ListPairs 统一关联视图
// GET /api/pairs?type=exact|fuzzy
func (h *ResolutionHandler) ListPairs(c *gin.Context) {
	matchType := model.MatchType(c.Query("type"))
	switch matchType {
	case "", model.MatchExact, model.MatchFuzzy:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type 只能为 exact 或 fuzzy"})
		return
	}
	pairs, err := h.resolutionService.ResolvedPairs(c.Request.Context(), matchType)
	if err != nil {
		h.logger.WithError(err).Error("ListPairs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(pairs), "list": pairs})
}

// GetItemApod 条目最相关的 APOD
// GET /api/items/:id/apod
func (h *ResolutionHandler) GetItemApod(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pair, err := h.resolutionService.ApodForItem(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "条目不存在"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetItemApod failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if pair == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "该条目暂无关联APOD"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// GetApodItems APOD 关联的条目
// GET /api/apods/:id/items
func (h *ResolutionHandler) GetApodItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	pairs, err := h.resolutionService.ItemsForApod(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "APOD不存在"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetApodItems failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(pairs), "list": pairs})
}

// ListSummaries 日汇总（含精确关联的 apod_id）
// GET /api/summaries
func (h *ResolutionHandler) ListSummaries(c *gin.Context) {
	list, err := h.summaryRepo.ListSummaries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListSummaries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(list), "list": list})
}

// GetCursor 下一次增量拉取的窗口
// GET /api/cursor
func (h *ResolutionHandler) GetCursor(c *gin.Context) {
	w, err := h.cursorService.NextWindow(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("GetCursor failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": model.FormatDate(w.Start), "end": model.FormatDate(w.End)})
}

// ListRuns 最近的运行记录
// GET /api/runs?limit=20
func (h *ResolutionHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	runs, err := h.runRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(runs), "list": runs})
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 必须为正整数"})
		return 0, false
	}
	return id, true
}
