package model

import (
	"errors"
	"time"
)

// FicheVersionModel 版本快照数据模型
// 每次提交产生一条,内容与提交后的状态冻结其中,永不修改或删除
type FicheVersionModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	FicheID   string    `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_versions_fiche_version"`
	Version   int       `gorm:"type:int;not null;uniqueIndex:idx_versions_fiche_version"`
	Content   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(32);not null"` // 快照时刻的状态
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (FicheVersionModel) TableName() string {
	return "fiche_versions"
}

// Validate 验证版本快照模型
func (fvm *FicheVersionModel) Validate() error {
	if fvm.ID == "" {
		return errors.New("version ID is required")
	}
	if fvm.FicheID == "" {
		return errors.New("fiche ID is required")
	}
	if fvm.Version < 1 {
		return errors.New("version number must be at least 1")
	}
	if fvm.Status == "" {
		return errors.New("version status is required")
	}
	return nil
}
