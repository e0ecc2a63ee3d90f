package workflow

import (
	"fmt"
	"strings"
)

// Snapshot 决策所依据的评估单状态快照
// 引擎假设单写者语义:快照与提交之间的并发修改由存储层的乐观锁拦截
type Snapshot struct {
	ID       string
	Type     FicheType
	Status   FicheStatus
	Stage    Stage
	AuthorID string
	Version  int
}

// Actor 操作者身份
type Actor struct {
	ID   string
	Role Role
}

// EntryDraft 待写入的日志条目
type EntryDraft struct {
	Type    ActionType
	Comment string
}

// Transition 状态转换结果
// 由纯函数计算得出,服务层负责在单个事务中落库
type Transition struct {
	Status      FicheStatus
	Stage       Stage
	VersionBump bool        // 是否递增版本号并写入版本快照
	Journal     *EntryDraft // 需要追加的日志条目,nil 表示不写日志
}

// Submit 提交评估单进入审批流程
// 前置条件: 操作者是作者,状态为草稿或已拒绝
// 效果: 状态变为审批中,阶段重置为路径第一阶段,版本号递增并产生版本快照
// 提交不写日志(创作不是被审计的动作)
func Submit(s Snapshot, actor Actor) (Transition, error) {
	if actor.ID != s.AuthorID {
		return Transition{}, fmt.Errorf("%w: only the author can submit fiche %s", ErrForbidden, s.ID)
	}
	if s.Status != StatusDraft && s.Status != StatusRejected {
		return Transition{}, fmt.Errorf("%w: cannot submit fiche in status %s", ErrInvalidTransition, s.Status)
	}
	first := FirstStage(s.Type)
	if first == "" {
		return Transition{}, fmt.Errorf("%w: no review path for type %s", ErrValidation, s.Type)
	}
	return Transition{
		Status:      StatusInReview,
		Stage:       first,
		VersionBump: true,
	}, nil
}

// Approve 审批通过当前阶段
// 前置条件: 状态为审批中,操作者角色与当前阶段匹配
// 效果: 最后一个阶段通过则状态变为已通过(锁定),否则阶段前进
func Approve(s Snapshot, actor Actor) (Transition, error) {
	if s.Status != StatusInReview {
		return Transition{}, fmt.Errorf("%w: cannot approve fiche in status %s", ErrInvalidTransition, s.Status)
	}
	if RoleForStage(s.Stage) != actor.Role {
		return Transition{}, fmt.Errorf("%w: role %s cannot approve at stage %s", ErrForbidden, actor.Role, s.Stage)
	}

	journal := &EntryDraft{Type: ActionTypeValidation}
	if IsLastStage(s.Type, s.Stage) {
		return Transition{
			Status:  StatusApproved,
			Stage:   "",
			Journal: journal,
		}, nil
	}
	return Transition{
		Status:  StatusInReview,
		Stage:   NextStage(s.Type, s.Stage),
		Journal: journal,
	}, nil
}

// Reject 拒绝评估单
// 前置条件: 状态为审批中,操作者角色与当前阶段匹配,拒绝原因属于枚举
// 效果: 状态变为已拒绝,阶段清空,写入带原因的日志条目
func Reject(s Snapshot, actor Actor, reason RefusalReason, comment string) (Transition, error) {
	if s.Status != StatusInReview {
		return Transition{}, fmt.Errorf("%w: cannot reject fiche in status %s", ErrInvalidTransition, s.Status)
	}
	if RoleForStage(s.Stage) != actor.Role {
		return Transition{}, fmt.Errorf("%w: role %s cannot reject at stage %s", ErrForbidden, actor.Role, s.Stage)
	}
	if reason == "" {
		return Transition{}, fmt.Errorf("%w: refusal reason is required", ErrValidation)
	}
	if !ValidRefusalReason(reason) {
		return Transition{}, fmt.Errorf("%w: unknown refusal reason %q", ErrValidation, reason)
	}

	return Transition{
		Status: StatusRejected,
		Stage:  "",
		Journal: &EntryDraft{
			Type:    ActionTypeRefusal,
			Comment: FormatRefusalComment(reason, comment),
		},
	}, nil
}

// Comment 添加评论
// 前置条件: 角色允许在当前状态下评论,评论内容非空
// 效果: 仅追加日志条目,评估单字段不变
func Comment(s Snapshot, actor Actor, text string) (Transition, error) {
	if strings.TrimSpace(text) == "" {
		return Transition{}, fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	if !Can(actor, s, ActionComment) {
		return Transition{}, fmt.Errorf("%w: role %s cannot comment on fiche in status %s", ErrForbidden, actor.Role, s.Status)
	}
	return Transition{
		Status: s.Status,
		Stage:  s.Stage,
		Journal: &EntryDraft{
			Type:    ActionTypeComment,
			Comment: text,
		},
	}, nil
}

// EditContent 校验内容编辑的前置条件
// 只有作者可以编辑,且仅限草稿或已拒绝状态;已通过的评估单永久锁定
func EditContent(s Snapshot, actor Actor) error {
	if actor.ID != s.AuthorID {
		return fmt.Errorf("%w: only the author can edit fiche %s", ErrForbidden, s.ID)
	}
	if s.Status != StatusDraft && s.Status != StatusRejected {
		return fmt.Errorf("%w: cannot edit fiche in status %s", ErrInvalidTransition, s.Status)
	}
	return nil
}
