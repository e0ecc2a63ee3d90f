package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/auth"
	"github.com/mautops/fiche-gin/internal/config"
	"github.com/mautops/fiche-gin/internal/notify"
	"gorm.io/gorm"
)

// Controllers 路由所需的控制器集合
type Controllers struct {
	Fiche *FicheController
	Query *QueryController
	Alert *AlertController
}

// SetupRoutes 配置路由
// hub 为 nil 时不注册 WebSocket 路由
func SetupRoutes(cfg *config.Config, db *gorm.DB, hub *notify.Hub, controllers *Controllers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(&cfg.CORS))
	router.Use(RateLimitMiddleware(&cfg.Server))

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", MetricsHandler)

	// WebSocket 路由
	if hub != nil {
		router.GET("/ws/fiches", auth.IdentityMiddleware(), notify.Handler(hub))
	}

	// API v1 路由组,全部要求身份
	v1 := router.Group("/api/v1")
	v1.Use(auth.IdentityMiddleware())
	{
		// 评估单管理路由
		fiches := v1.Group("/fiches")
		{
			fiches.POST("", controllers.Fiche.Create)
			fiches.GET("", controllers.Query.ListFiches)

			// 通用路由（必须在具体路径路由之前）
			fiches.GET("/:id", controllers.Fiche.Get)
			fiches.PUT("/:id/content", controllers.Fiche.UpdateContent)

			// 工作流操作路由
			fiches.POST("/:id/submit", controllers.Fiche.Submit)
			fiches.POST("/:id/approve", controllers.Fiche.Approve)
			fiches.POST("/:id/reject", controllers.Fiche.Reject)
			fiches.POST("/:id/comments", controllers.Fiche.Comment)

			// 只读子资源路由
			fiches.GET("/:id/actions", controllers.Fiche.Actions)
			fiches.GET("/:id/versions", controllers.Query.ListVersions)
			fiches.GET("/:id/journal", controllers.Query.ListJournal)
		}

		// 告警路由
		v1.GET("/alerts", controllers.Alert.List)

		// 统计路由
		v1.GET("/statistics", controllers.Query.GetStatistics)

		// 拒绝原因枚举
		v1.GET("/reasons", controllers.Fiche.Reasons)
	}

	// 自定义 NoRoute 处理器,返回 JSON 格式的 404
	// 必须在所有业务路由注册之后设置,确保未匹配的路由返回 JSON 而不是 HTML
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return router
}
