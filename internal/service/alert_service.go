package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mautops/fiche-gin/internal/config"
	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/repository"
	"github.com/mautops/fiche-gin/internal/workflow"
	"gorm.io/gorm"
)

// 告警严重级别
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Alert 派生告警
// 按需从当前可见评估单集合重新计算,从不持久化;仅用于提示,不作为强制依据
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Count    int    `json:"count"`
}

// AlertService 告警服务接口
type AlertService interface {
	ListAlerts(ctx context.Context, now time.Time) ([]Alert, error)
	UpdateThresholds(cfg config.AlertConfig)
}

// alertService 告警服务实现
type alertService struct {
	db *gorm.DB
	mu sync.RWMutex
	th config.AlertConfig
}

// NewAlertService 创建告警服务
func NewAlertService(db *gorm.DB, th config.AlertConfig) AlertService {
	return &alertService{db: db, th: th}
}

// ListAlerts 计算操作者可见范围内的告警
// 读取为快照,结果允许滞后
func (s *alertService) ListAlerts(ctx context.Context, now time.Time) ([]Alert, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	visibility := workflow.VisibilityFor(actor)
	fiches, err := repository.NewFicheRepository(s.db).FindByFilter(&repository.FicheFilter{
		Visibility: &visibility,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fiches: %w", err)
	}

	s.mu.RLock()
	th := s.th
	s.mu.RUnlock()

	return ComputeAlerts(fiches, now, th), nil
}

// UpdateThresholds 更新告警阈值(配置热更新回调)
func (s *alertService) UpdateThresholds(cfg config.AlertConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.th = cfg
}

// ComputeAlerts 根据评估单集合和当前时间计算告警
// 纯函数,无隐藏状态;规则独立评估,同一评估单可计入多条告警
// 输出顺序固定: 审批停滞 → 待审批 → 逾期;计数为零的告警整条省略
func ComputeAlerts(fiches []*model.FicheModel, now time.Time, th config.AlertConfig) []Alert {
	var stale, pending, overdue int

	for _, fiche := range fiches {
		inReview := fiche.Status == string(workflow.StatusInReview)
		if inReview {
			pending++
			if now.Sub(fiche.UpdatedAt) > th.StaleAfter() {
				stale++
			}
		}
		if fiche.Status != string(workflow.StatusApproved) && now.Sub(fiche.CreatedAt) > th.OverdueAfter() {
			overdue++
		}
	}

	var alerts []Alert
	if stale > 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Fiches en validation depuis plus de %d jours", th.StaleAfterDays),
			Count:    stale,
		})
	}
	if pending > 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityMedium,
			Message:  "Fiches en attente de validation",
			Count:    pending,
		})
	}
	if overdue > 0 {
		alerts = append(alerts, Alert{
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Fiches en retard (plus de %d jours)", th.OverdueAfterDays),
			Count:    overdue,
		})
	}
	return alerts
}
