package repository

import (
	"github.com/mautops/fiche-gin/internal/model"
	"gorm.io/gorm"
)

// JournalRepository 动作日志仓储接口
// 仅追加;条目永不修改或删除
type JournalRepository interface {
	Append(entry *model.JournalEntryModel) error
	FindByFiche(ficheID string) ([]*model.JournalEntryModel, error)
	FindByActor(actorID string) ([]*model.JournalEntryModel, error)
}

// journalRepository 动作日志仓储实现
type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository 创建动作日志仓储
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

// Append 追加日志条目
func (r *journalRepository) Append(entry *model.JournalEntryModel) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.db.Create(entry).Error
}

// FindByFiche 查找评估单的全部日志,按时间倒序,同时间按插入顺序倒序
func (r *journalRepository) FindByFiche(ficheID string) ([]*model.JournalEntryModel, error) {
	var entries []*model.JournalEntryModel
	err := r.db.Where("fiche_id = ?", ficheID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// FindByActor 查找某操作者的全部日志
func (r *journalRepository) FindByActor(actorID string) ([]*model.JournalEntryModel, error) {
	var entries []*model.JournalEntryModel
	err := r.db.Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}
