package service

import (
	"context"

	"github.com/mautops/fiche-gin/internal/repository"
	"github.com/mautops/fiche-gin/internal/workflow"
	"gorm.io/gorm"
)

// Statistics 评估单统计信息
type Statistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}

// StatisticsService 统计服务接口
// 统计范围按操作者可见性收敛,与列表一致
type StatisticsService interface {
	GetStatistics(ctx context.Context) (*Statistics, error)
}

// statisticsService 统计服务实现
type statisticsService struct {
	db *gorm.DB
}

// NewStatisticsService 创建统计服务
func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics 获取评估单数量统计
func (s *statisticsService) GetStatistics(ctx context.Context) (*Statistics, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	visibility := workflow.VisibilityFor(actor)
	fiches, err := repository.NewFicheRepository(s.db).FindByFilter(&repository.FicheFilter{
		Visibility: &visibility,
	})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Total:    int64(len(fiches)),
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}
	for _, fiche := range fiches {
		stats.ByStatus[fiche.Status]++
		stats.ByType[fiche.Type]++
	}
	return stats, nil
}
