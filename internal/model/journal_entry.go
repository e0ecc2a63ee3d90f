package model

import (
	"errors"
	"time"
)

// JournalEntryModel 动作日志数据模型
// 仅追加,条目永不修改或删除;展示按时间倒序,同时间按插入顺序(自增主键)
type JournalEntryModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"` // 自增主键,兼作插入顺序
	FicheID    string    `gorm:"type:varchar(64);not null;index"`
	ActorID    string    `gorm:"type:varchar(64);not null;index"`
	ActorRole  string    `gorm:"type:varchar(32);not null"`
	ActionType string    `gorm:"type:varchar(32);not null;index"` // validation/refus/commentaire
	Comment    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// Validate 验证日志条目模型
func (jem *JournalEntryModel) Validate() error {
	if jem.FicheID == "" {
		return errors.New("fiche ID is required")
	}
	if jem.ActorID == "" {
		return errors.New("actor ID is required")
	}
	if jem.ActionType == "" {
		return errors.New("action type is required")
	}
	return nil
}
