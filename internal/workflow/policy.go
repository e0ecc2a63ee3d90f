package workflow

// Action 操作者可对评估单执行的操作
type Action string

const (
	ActionRead    Action = "read"
	ActionEdit    Action = "edit"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionComment Action = "comment"
)

// Can 判断操作者是否允许对评估单执行某操作
// 纯查表逻辑,引擎的前置条件与查询层的可见性共用同一张表
func Can(actor Actor, s Snapshot, action Action) bool {
	switch action {
	case ActionRead:
		return canRead(actor, s)
	case ActionEdit, ActionSubmit:
		// 作者在草稿或已拒绝状态下可编辑和提交
		return actor.ID == s.AuthorID &&
			(s.Status == StatusDraft || s.Status == StatusRejected)
	case ActionApprove, ActionReject:
		// 审批角色在审批中状态下对匹配的阶段可通过/拒绝
		return s.Status == StatusInReview && RoleForStage(s.Stage) == actor.Role
	case ActionComment:
		// HR 教练和管理层在审批中或已通过状态下可评论
		if actor.Role != RoleHRCoach && actor.Role != RoleManagement {
			return false
		}
		return s.Status == StatusInReview || s.Status == StatusApproved
	default:
		return false
	}
}

// Allowed 返回操作者对评估单允许的全部操作
func Allowed(actor Actor, s Snapshot) []Action {
	all := []Action{ActionRead, ActionEdit, ActionSubmit, ActionApprove, ActionReject, ActionComment}
	var result []Action
	for _, action := range all {
		if Can(actor, s, action) {
			result = append(result, action)
		}
	}
	return result
}

// canRead 判断操作者是否可见评估单
func canRead(actor Actor, s Snapshot) bool {
	switch actor.Role {
	case RoleManagement:
		return true
	case RoleProjectReferent, RoleHRCoach:
		// 审批角色可见自己阶段的评估单,以及自己创建的
		return actor.ID == s.AuthorID ||
			(s.Status == StatusInReview && RoleForStage(s.Stage) == actor.Role)
	default:
		return actor.ID == s.AuthorID
	}
}

// Visibility 可见性范围
// 查询层据此构造过滤条件,与 canRead 保持一致,避免"可见"与"可操作"分叉
type Visibility struct {
	All      bool   // 管理层: 全部可见
	AuthorID string // 非空: 限定作者
	Stage    Stage  // 非空: 额外可见处于该阶段的评估单
}

// VisibilityFor 返回角色的可见性范围
func VisibilityFor(actor Actor) Visibility {
	switch actor.Role {
	case RoleManagement:
		return Visibility{All: true}
	case RoleProjectReferent:
		return Visibility{AuthorID: actor.ID, Stage: StageProjectReferent}
	case RoleHRCoach:
		return Visibility{AuthorID: actor.ID, Stage: StageHRCoach}
	default:
		return Visibility{AuthorID: actor.ID}
	}
}
