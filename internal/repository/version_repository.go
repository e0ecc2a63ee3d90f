package repository

import (
	"github.com/mautops/fiche-gin/internal/model"
	"gorm.io/gorm"
)

// VersionRepository 版本快照仓储接口
// 仅追加;快照永不修改或删除
type VersionRepository interface {
	Append(version *model.FicheVersionModel) error
	FindByFiche(ficheID string) ([]*model.FicheVersionModel, error)
}

// versionRepository 版本快照仓储实现
type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository 创建版本快照仓储
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

// Append 追加版本快照
func (r *versionRepository) Append(version *model.FicheVersionModel) error {
	if err := version.Validate(); err != nil {
		return err
	}
	return r.db.Create(version).Error
}

// FindByFiche 查找评估单的全部版本,按版本号倒序(用于展示)
func (r *versionRepository) FindByFiche(ficheID string) ([]*model.FicheVersionModel, error) {
	var versions []*model.FicheVersionModel
	err := r.db.Where("fiche_id = ?", ficheID).Order("version DESC").Find(&versions).Error
	return versions, err
}
