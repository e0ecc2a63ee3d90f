package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/service"
)

// QueryController 查询控制器
type QueryController struct {
	queryService service.QueryService
	statsService service.StatisticsService
}

// NewQueryController 创建查询控制器
func NewQueryController(queryService service.QueryService, statsService service.StatisticsService) *QueryController {
	return &QueryController{
		queryService: queryService,
		statsService: statsService,
	}
}

// ListFiches 列出可见评估单
// 支持按类型、状态、作者和创建时间过滤;结果始终在操作者可见范围内
func (c *QueryController) ListFiches(ctx *gin.Context) {
	query := &service.FicheQuery{
		Type:     ctx.Query("type"),
		Status:   ctx.Query("status"),
		AuthorID: ctx.Query("author_id"),
	}

	if createdAfter := ctx.Query("created_after"); createdAfter != "" {
		t, err := time.Parse(time.RFC3339, createdAfter)
		if err != nil {
			Error(ctx, http.StatusBadRequest, "invalid query parameters", "created_after must be RFC3339")
			return
		}
		query.CreatedAfter = &t
	}

	fiches, err := c.queryService.ListFiches(ctx.Request.Context(), query)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiches)
}

// ListVersions 列出评估单的版本快照
func (c *QueryController) ListVersions(ctx *gin.Context) {
	versions, err := c.queryService.ListVersions(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, versions)
}

// ListJournal 列出评估单的动作日志
func (c *QueryController) ListJournal(ctx *gin.Context) {
	entries, err := c.queryService.ListJournal(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, entries)
}

// GetStatistics 获取评估单统计信息
func (c *QueryController) GetStatistics(ctx *gin.Context) {
	stats, err := c.statsService.GetStatistics(ctx.Request.Context())
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, stats)
}
