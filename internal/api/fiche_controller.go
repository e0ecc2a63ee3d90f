package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/service"
	"github.com/mautops/fiche-gin/internal/utils"
	"github.com/mautops/fiche-gin/internal/workflow"
)

// FicheController 评估单控制器
type FicheController struct {
	ficheService service.FicheService
}

// NewFicheController 创建评估单控制器
func NewFicheController(ficheService service.FicheService) *FicheController {
	return &FicheController{
		ficheService: ficheService,
	}
}

// validateFicheID 验证评估单 ID 并返回错误响应(如果无效)
func (c *FicheController) validateFicheID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateFicheID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid fiche ID", err.Error())
		return false
	}
	return true
}

// Create 创建评估单
func (c *FicheController) Create(ctx *gin.Context) {
	var req service.CreateFicheRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	fiche, err := c.ficheService.Create(ctx.Request.Context(), &req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Created(ctx, fiche)
}

// Get 获取评估单详情
func (c *FicheController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	fiche, err := c.ficheService.Get(ctx.Request.Context(), id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiche)
}

// UpdateContent 更新评估单内容
func (c *FicheController) UpdateContent(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	var req service.UpdateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	fiche, err := c.ficheService.UpdateContent(ctx.Request.Context(), id, &req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiche)
}

// Submit 提交评估单进入审批流程
func (c *FicheController) Submit(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	fiche, err := c.ficheService.Submit(ctx.Request.Context(), id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiche)
}

// Approve 审批通过当前阶段
func (c *FicheController) Approve(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	fiche, err := c.ficheService.Approve(ctx.Request.Context(), id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiche)
}

// Reject 拒绝评估单
func (c *FicheController) Reject(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	var req service.RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	fiche, err := c.ficheService.Reject(ctx.Request.Context(), id, &req)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, fiche)
}

// Comment 添加评论
func (c *FicheController) Comment(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.ficheService.Comment(ctx.Request.Context(), id, &req); err != nil {
		RespondError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Actions 列出操作者对评估单允许的操作
func (c *FicheController) Actions(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateFicheID(ctx, id) {
		return
	}

	actions, err := c.ficheService.AllowedActions(ctx.Request.Context(), id)
	if err != nil {
		RespondError(ctx, err)
		return
	}

	if actions == nil {
		actions = []workflow.Action{}
	}
	Success(ctx, actions)
}

// Reasons 列出可用的拒绝原因
func (c *FicheController) Reasons(ctx *gin.Context) {
	Success(ctx, workflow.RefusalReasons())
}
