package container

import (
	"fmt"
	"time"

	"github.com/mautops/fiche-gin/internal/config"
	"github.com/mautops/fiche-gin/internal/database"
	"github.com/mautops/fiche-gin/internal/metrics"
	"github.com/mautops/fiche-gin/internal/notify"
	"github.com/mautops/fiche-gin/internal/service"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务和通知中心
type Container struct {
	db            *gorm.DB
	hub           *notify.Hub
	ficheService  service.FicheService
	queryService  service.QueryService
	statsService  service.StatisticsService
	alertService  service.AlertService
	metricsWorker *metrics.Collector
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化通知中心
	hub := notify.NewHub()
	go hub.Run()

	// 3. 初始化服务
	ficheService := service.NewFicheService(db, hub)
	queryService := service.NewQueryService(db)
	statsService := service.NewStatisticsService(db)
	alertService := service.NewAlertService(db, cfg.Alert)

	// 4. 初始化指标收集器
	metricsWorker := metrics.NewCollector(db, 30*time.Second)
	metricsWorker.Start()

	return &Container{
		db:            db,
		hub:           hub,
		ficheService:  ficheService,
		queryService:  queryService,
		statsService:  statsService,
		alertService:  alertService,
		metricsWorker: metricsWorker,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub 获取通知中心
func (c *Container) Hub() *notify.Hub {
	return c.hub
}

// FicheService 获取评估单服务
func (c *Container) FicheService() service.FicheService {
	return c.ficheService
}

// QueryService 获取查询服务
func (c *Container) QueryService() service.QueryService {
	return c.queryService
}

// StatisticsService 获取统计服务
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statsService
}

// AlertService 获取告警服务
func (c *Container) AlertService() service.AlertService {
	return c.alertService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.metricsWorker != nil {
		c.metricsWorker.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
