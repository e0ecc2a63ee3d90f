package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/workflow"
	"gorm.io/gorm"
)

// FicheRepository 评估单仓储接口
type FicheRepository interface {
	Create(fiche *model.FicheModel) error
	FindByID(id string) (*model.FicheModel, error)
	FindByFilter(filter *FicheFilter) ([]*model.FicheModel, error)
	UpdateCAS(id string, expectedRevision int, updates map[string]interface{}) error
}

// FicheFilter 评估单查询过滤器
// Visibility 非 nil 时按角色可见性收敛结果集
type FicheFilter struct {
	Type         *string
	Status       *string
	AuthorID     *string
	CreatedAfter *time.Time
	Visibility   *workflow.Visibility
}

// ficheRepository 评估单仓储实现
type ficheRepository struct {
	db *gorm.DB
}

// NewFicheRepository 创建评估单仓储
func NewFicheRepository(db *gorm.DB) FicheRepository {
	return &ficheRepository{db: db}
}

// Create 保存新评估单
func (r *ficheRepository) Create(fiche *model.FicheModel) error {
	return r.db.Create(fiche).Error
}

// FindByID 根据 ID 查找评估单
func (r *ficheRepository) FindByID(id string) (*model.FicheModel, error) {
	var fiche model.FicheModel
	if err := r.db.Where("id = ?", id).First(&fiche).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return &fiche, nil
}

// FindByFilter 根据过滤器查找评估单
func (r *ficheRepository) FindByFilter(filter *FicheFilter) ([]*model.FicheModel, error) {
	var fiches []*model.FicheModel
	query := r.db.Model(&model.FicheModel{})

	if filter != nil {
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.AuthorID != nil {
			query = query.Where("author_id = ?", *filter.AuthorID)
		}
		if filter.CreatedAfter != nil {
			query = query.Where("created_at >= ?", *filter.CreatedAfter)
		}
		if filter.Visibility != nil && !filter.Visibility.All {
			v := filter.Visibility
			if v.Stage != "" {
				// 审批角色: 自己创建的,加上处于自己阶段的
				query = query.Where("author_id = ? OR (status = ? AND current_stage = ?)",
					v.AuthorID, string(workflow.StatusInReview), string(v.Stage))
			} else {
				query = query.Where("author_id = ?", v.AuthorID)
			}
		}
	}

	err := query.Order("created_at DESC").Find(&fiches).Error
	return fiches, err
}

// UpdateCAS 基于乐观锁的条件更新
// updates 必须包含递增后的 revision;影响行数为零时区分冲突与不存在
func (r *ficheRepository) UpdateCAS(id string, expectedRevision int, updates map[string]interface{}) error {
	result := r.db.Model(&model.FicheModel{}).
		Where("id = ? AND revision = ?", id, expectedRevision).
		UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 区分: 记录不存在还是版本过期
		var count int64
		if err := r.db.Model(&model.FicheModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
		}
		return fmt.Errorf("%w: fiche %s was modified concurrently", workflow.ErrConflict, id)
	}
	return nil
}
