package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/repository"
	"github.com/mautops/fiche-gin/internal/workflow"
	"gorm.io/gorm"
)

// FicheQuery 评估单列表查询参数
// 所有过滤条件在可见范围内生效,不能借助过滤器越权
type FicheQuery struct {
	Type         string
	Status       string
	AuthorID     string
	CreatedAfter *time.Time
}

// QueryService 查询服务接口
// 只读;列表按角色可见性收敛
type QueryService interface {
	ListFiches(ctx context.Context, query *FicheQuery) ([]*model.FicheModel, error)
	ListVersions(ctx context.Context, ficheID string) ([]*model.FicheVersionModel, error)
	ListJournal(ctx context.Context, ficheID string) ([]*model.JournalEntryModel, error)
}

// queryService 查询服务实现
type queryService struct {
	db *gorm.DB
}

// NewQueryService 创建查询服务
func NewQueryService(db *gorm.DB) QueryService {
	return &queryService{db: db}
}

// ListFiches 按过滤条件列出可见评估单
func (s *queryService) ListFiches(ctx context.Context, query *FicheQuery) ([]*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	visibility := workflow.VisibilityFor(actor)
	filter := &repository.FicheFilter{Visibility: &visibility}
	if query != nil {
		if query.Type != "" {
			if _, err := workflow.ParseFicheType(query.Type); err != nil {
				return nil, err
			}
			filter.Type = &query.Type
		}
		if query.Status != "" {
			if !workflow.ValidStatus(workflow.FicheStatus(query.Status)) {
				return nil, fmt.Errorf("%w: unknown status %q", workflow.ErrValidation, query.Status)
			}
			filter.Status = &query.Status
		}
		if query.AuthorID != "" {
			filter.AuthorID = &query.AuthorID
		}
		if query.CreatedAfter != nil {
			filter.CreatedAfter = query.CreatedAfter
		}
	}

	return repository.NewFicheRepository(s.db).FindByFilter(filter)
}

// ListVersions 列出评估单的版本快照,按版本号倒序
// 版本快照的可见性跟随评估单本身
func (s *queryService) ListVersions(ctx context.Context, ficheID string) ([]*model.FicheVersionModel, error) {
	if err := s.checkRead(ctx, ficheID); err != nil {
		return nil, err
	}
	return repository.NewVersionRepository(s.db).FindByFiche(ficheID)
}

// ListJournal 列出评估单的动作日志,最新在前
// 日志的可见性跟随评估单本身
func (s *queryService) ListJournal(ctx context.Context, ficheID string) ([]*model.JournalEntryModel, error) {
	if err := s.checkRead(ctx, ficheID); err != nil {
		return nil, err
	}
	return repository.NewJournalRepository(s.db).FindByFiche(ficheID)
}

// checkRead 校验操作者对评估单的读权限
func (s *queryService) checkRead(ctx context.Context, ficheID string) error {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	fiche, err := repository.NewFicheRepository(s.db).FindByID(ficheID)
	if err != nil {
		return err
	}
	if !workflow.Can(actor, fiche.Snapshot(), workflow.ActionRead) {
		return fmt.Errorf("%w: fiche %s is not visible to this actor", workflow.ErrForbidden, ficheID)
	}
	return nil
}
