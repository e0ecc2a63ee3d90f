package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/service"
)

// AlertController 告警控制器
type AlertController struct {
	alertService service.AlertService
}

// NewAlertController 创建告警控制器
func NewAlertController(alertService service.AlertService) *AlertController {
	return &AlertController{
		alertService: alertService,
	}
}

// List 列出操作者可见范围内的告警
// 告警按需计算,不持久化
func (c *AlertController) List(ctx *gin.Context) {
	alerts, err := c.alertService.ListAlerts(ctx.Request.Context(), time.Now())
	if err != nil {
		RespondError(ctx, err)
		return
	}

	if alerts == nil {
		alerts = []service.Alert{}
	}
	Success(ctx, alerts)
}
