package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mautops/fiche-gin/internal/metrics"
	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/repository"
	"github.com/mautops/fiche-gin/internal/utils"
	"github.com/mautops/fiche-gin/internal/workflow"
	"gorm.io/gorm"
)

// maxCommentLength 日志条目自由文本的长度上限
const maxCommentLength = 2000

// FicheService 评估单服务接口
// 五个工作流操作加内容编辑;每个变更操作遵循 读取-校验-事务提交 的单写者语义
type FicheService interface {
	Create(ctx context.Context, req *CreateFicheRequest) (*model.FicheModel, error)
	Get(ctx context.Context, id string) (*model.FicheModel, error)
	UpdateContent(ctx context.Context, id string, req *UpdateContentRequest) (*model.FicheModel, error)
	Submit(ctx context.Context, id string) (*model.FicheModel, error)
	Approve(ctx context.Context, id string) (*model.FicheModel, error)
	Reject(ctx context.Context, id string, req *RejectRequest) (*model.FicheModel, error)
	Comment(ctx context.Context, id string, req *CommentRequest) error
	AllowedActions(ctx context.Context, id string) ([]workflow.Action, error)
}

// CreateFicheRequest 创建评估单请求
type CreateFicheRequest struct {
	Type    string `json:"type" binding:"required"` // annuelle/projet/evaluation
	Content string `json:"content"`
}

// UpdateContentRequest 更新内容请求
type UpdateContentRequest struct {
	Content string `json:"content" binding:"required"`
}

// RejectRequest 拒绝请求
type RejectRequest struct {
	Reason  string `json:"reason" binding:"required"` // 必须属于封闭枚举
	Comment string `json:"comment"`                   // 附加说明(可选)
}

// CommentRequest 评论请求
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// FicheEvent 工作流事件,提交成功后广播
type FicheEvent struct {
	FicheID string `json:"fiche_id"`
	Action  string `json:"action"`
	Status  string `json:"status"`
	Stage   string `json:"stage,omitempty"`
	ActorID string `json:"actor_id"`
}

// Notifier 工作流事件通知接口
type Notifier interface {
	Publish(event *FicheEvent)
}

// ficheService 评估单服务实现
type ficheService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewFicheService 创建评估单服务
// notifier 可以为 nil,此时不广播事件
func NewFicheService(db *gorm.DB, notifier Notifier) FicheService {
	return &ficheService{
		db:       db,
		notifier: notifier,
	}
}

// Create 创建评估单
// 新建为草稿状态,版本号 1,无当前阶段;创建不写日志
func (s *ficheService) Create(ctx context.Context, req *CreateFicheRequest) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ficheType, err := workflow.ParseFicheType(req.Type)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	fiche := &model.FicheModel{
		ID:        uuid.New().String(),
		Type:      string(ficheType),
		Status:    string(workflow.StatusDraft),
		Content:   req.Content,
		AuthorID:  actor.ID,
		Version:   1,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fiche.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}

	if err := repository.NewFicheRepository(s.db).Create(fiche); err != nil {
		return nil, fmt.Errorf("failed to create fiche: %w", err)
	}

	metrics.RecordFicheCreated(string(ficheType))
	return fiche, nil
}

// Get 获取评估单详情
func (s *ficheService) Get(ctx context.Context, id string) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}
	if !workflow.Can(actor, fiche.Snapshot(), workflow.ActionRead) {
		return nil, fmt.Errorf("%w: fiche %s is not visible to this actor", workflow.ErrForbidden, id)
	}
	return fiche, nil
}

// UpdateContent 更新评估单内容
// 仅作者在草稿或已拒绝状态下可编辑;不递增版本号,版本快照在提交时产生
func (s *ficheService) UpdateContent(ctx context.Context, id string, req *UpdateContentRequest) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := workflow.EditContent(fiche.Snapshot(), actor); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewFicheRepository(tx).UpdateCAS(fiche.ID, fiche.Revision, map[string]interface{}{
			"content":    req.Content,
			"revision":   fiche.Revision + 1,
			"updated_at": now,
		})
	})
	if err != nil {
		return nil, err
	}

	fiche.Content = req.Content
	fiche.Revision++
	fiche.UpdatedAt = now
	return fiche, nil
}

// Submit 提交评估单进入审批流程
// 版本号递增并冻结一份版本快照,与状态变更同事务提交
func (s *ficheService) Submit(ctx context.Context, id string) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := workflow.Submit(fiche.Snapshot(), actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newVersion := fiche.Version + 1
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewFicheRepository(tx).UpdateCAS(fiche.ID, fiche.Revision, map[string]interface{}{
			"status":        string(transition.Status),
			"current_stage": string(transition.Stage),
			"version":       newVersion,
			"revision":      fiche.Revision + 1,
			"updated_at":    now,
		}); err != nil {
			return err
		}

		return repository.NewVersionRepository(tx).Append(&model.FicheVersionModel{
			ID:        uuid.New().String(),
			FicheID:   fiche.ID,
			Version:   newVersion,
			Content:   fiche.Content,
			Status:    string(transition.Status),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	fiche.Status = string(transition.Status)
	fiche.CurrentStage = string(transition.Stage)
	fiche.Version = newVersion
	fiche.Revision++
	fiche.UpdatedAt = now

	metrics.RecordWorkflowAction("submit")
	s.publish(fiche, "submit", actor)
	return fiche, nil
}

// Approve 审批通过当前阶段
// 最后阶段通过则评估单锁定,否则阶段前进;日志条目与状态变更同事务提交
func (s *ficheService) Approve(ctx context.Context, id string) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}

	transition, err := workflow.Approve(fiche.Snapshot(), actor)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.commitTransition(fiche, transition, actor, now); err != nil {
		return nil, err
	}

	fiche.Status = string(transition.Status)
	fiche.CurrentStage = string(transition.Stage)
	fiche.Revision++
	fiche.UpdatedAt = now

	metrics.RecordWorkflowAction("approve")
	s.publish(fiche, "approve", actor)
	return fiche, nil
}

// Reject 拒绝评估单
func (s *ficheService) Reject(ctx context.Context, id string, req *RejectRequest) (*model.FicheModel, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}

	// 附加说明可选;非空时入库前清理
	comment := strings.TrimSpace(req.Comment)
	if comment != "" {
		comment, err = utils.TrimAndValidate(comment, maxCommentLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}

	transition, err := workflow.Reject(fiche.Snapshot(), actor, workflow.RefusalReason(req.Reason), comment)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.commitTransition(fiche, transition, actor, now); err != nil {
		return nil, err
	}

	fiche.Status = string(transition.Status)
	fiche.CurrentStage = string(transition.Stage)
	fiche.Revision++
	fiche.UpdatedAt = now

	metrics.RecordWorkflowAction("reject")
	s.publish(fiche, "reject", actor)
	return fiche, nil
}

// Comment 添加评论
// 仅追加日志条目;递增 revision 以保持单写者串行化,但不改动 updated_at
func (s *ficheService) Comment(ctx context.Context, id string, req *CommentRequest) error {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return err
	}

	// 自由文本入库前清理
	text, err := utils.TrimAndValidate(req.Text, maxCommentLength)
	if err != nil {
		return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}

	transition, err := workflow.Comment(fiche.Snapshot(), actor, text)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewFicheRepository(tx).UpdateCAS(fiche.ID, fiche.Revision, map[string]interface{}{
			"revision": fiche.Revision + 1,
		}); err != nil {
			return err
		}
		return appendJournal(tx, fiche, transition.Journal, actor, now)
	})
	if err != nil {
		return err
	}

	metrics.RecordWorkflowAction("comment")
	s.publish(fiche, "comment", actor)
	return nil
}

// AllowedActions 返回操作者对评估单允许的操作列表
func (s *ficheService) AllowedActions(ctx context.Context, id string) ([]workflow.Action, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fiche, err := repository.NewFicheRepository(s.db).FindByID(id)
	if err != nil {
		return nil, err
	}
	return workflow.Allowed(actor, fiche.Snapshot()), nil
}

// commitTransition 在单个事务中提交状态变更和日志条目
func (s *ficheService) commitTransition(fiche *model.FicheModel, transition workflow.Transition, actor workflow.Actor, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewFicheRepository(tx).UpdateCAS(fiche.ID, fiche.Revision, map[string]interface{}{
			"status":        string(transition.Status),
			"current_stage": string(transition.Stage),
			"revision":      fiche.Revision + 1,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		return appendJournal(tx, fiche, transition.Journal, actor, now)
	})
}

// appendJournal 追加日志条目,draft 为 nil 时不写
func appendJournal(tx *gorm.DB, fiche *model.FicheModel, draft *workflow.EntryDraft, actor workflow.Actor, now time.Time) error {
	if draft == nil {
		return nil
	}
	return repository.NewJournalRepository(tx).Append(&model.JournalEntryModel{
		FicheID:    fiche.ID,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		ActionType: string(draft.Type),
		Comment:    draft.Comment,
		CreatedAt:  now,
	})
}

// publish 广播工作流事件
func (s *ficheService) publish(fiche *model.FicheModel, action string, actor workflow.Actor) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(&FicheEvent{
		FicheID: fiche.ID,
		Action:  action,
		Status:  fiche.Status,
		Stage:   fiche.CurrentStage,
		ActorID: actor.ID,
	})
}

// actorFromContext 从 context 中获取操作者身份(由认证中间件设置)
func actorFromContext(ctx context.Context) (workflow.Actor, error) {
	if ctx == nil {
		return workflow.Actor{}, fmt.Errorf("%w: missing actor identity", workflow.ErrForbidden)
	}
	userID, _ := ctx.Value("user_id").(string)
	roleStr, _ := ctx.Value("role").(string)
	if userID == "" {
		return workflow.Actor{}, fmt.Errorf("%w: missing actor identity", workflow.ErrForbidden)
	}
	role, err := workflow.ParseRole(roleStr)
	if err != nil {
		return workflow.Actor{}, fmt.Errorf("%w: unknown role %q", workflow.ErrForbidden, roleStr)
	}
	return workflow.Actor{ID: userID, Role: role}, nil
}
