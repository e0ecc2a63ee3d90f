package model

import (
	"errors"
	"time"

	"github.com/mautops/fiche-gin/internal/workflow"
)

// FicheModel 评估单数据模型
type FicheModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	Type         string    `gorm:"type:varchar(32);not null;index"` // 类型,创建后不可变
	Status       string    `gorm:"type:varchar(32);not null;index"` // 状态
	CurrentStage string    `gorm:"type:varchar(32);index"`          // 当前审批阶段,仅审批中有意义
	Content      string    `gorm:"type:text;not null"`
	AuthorID     string    `gorm:"type:varchar(64);not null;index"` // 作者 ID,不可变
	Version      int       `gorm:"type:int;not null;default:1"`     // 内容版本号,每次提交递增
	Revision     int       `gorm:"type:int;not null;default:1"`     // 乐观锁计数器,每次变更递增
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (FicheModel) TableName() string {
	return "fiches"
}

// Validate 验证评估单模型
func (fm *FicheModel) Validate() error {
	if fm.ID == "" {
		return errors.New("fiche ID is required")
	}
	if _, err := workflow.ParseFicheType(fm.Type); err != nil {
		return errors.New("fiche type is invalid")
	}
	if !workflow.ValidStatus(workflow.FicheStatus(fm.Status)) {
		return errors.New("fiche status is invalid")
	}
	if fm.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if fm.Version < 1 {
		return errors.New("fiche version must be at least 1")
	}
	return nil
}

// Snapshot 构造引擎决策用的状态快照
func (fm *FicheModel) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{
		ID:       fm.ID,
		Type:     workflow.FicheType(fm.Type),
		Status:   workflow.FicheStatus(fm.Status),
		Stage:    workflow.Stage(fm.CurrentStage),
		AuthorID: fm.AuthorID,
		Version:  fm.Version,
	}
}
