package workflow

import "fmt"

// FicheType 评估单类型
// 存储值沿用原系统的法语词汇,创建后不可变更
type FicheType string

const (
	TypeAnnual     FicheType = "annuelle"   // 年度评估
	TypeProject    FicheType = "projet"     // 项目评估
	TypeEvaluation FicheType = "evaluation" // 能力评估
)

// FicheStatus 评估单状态
type FicheStatus string

const (
	StatusDraft    FicheStatus = "brouillon"     // 草稿
	StatusInReview FicheStatus = "en_validation" // 审批中
	StatusApproved FicheStatus = "validee"       // 已通过(终态,锁定)
	StatusRejected FicheStatus = "refusee"       // 已拒绝(作者可修改后重新提交)
)

// Stage 审批阶段
type Stage string

const (
	StageAuthor          Stage = "employe"         // 作者阶段(提交前)
	StageProjectReferent Stage = "referent_projet" // 项目负责人审批
	StageHRCoach         Stage = "coach_rh"        // HR 教练审批
	StageManagement      Stage = "direction"       // 管理层审批
)

// Role 用户角色
// 审批角色与对应阶段同名,便于阶段匹配
type Role string

const (
	RoleEmployee        Role = "employe"
	RoleProjectReferent Role = "referent_projet"
	RoleHRCoach         Role = "coach_rh"
	RoleManagement      Role = "direction"
)

// ActionType 日志动作类型
type ActionType string

const (
	ActionTypeValidation ActionType = "validation"  // 审批通过
	ActionTypeRefusal    ActionType = "refus"       // 审批拒绝
	ActionTypeComment    ActionType = "commentaire" // 评论
)

// reviewPaths 各类型的审批路径(作者阶段之后的有序阶段列表)
var reviewPaths = map[FicheType][]Stage{
	TypeProject:    {StageProjectReferent, StageManagement},
	TypeAnnual:     {StageHRCoach, StageManagement},
	TypeEvaluation: {StageHRCoach},
}

// ReviewPath 返回类型对应的审批路径
// 返回的切片为副本,调用方可以安全修改
func ReviewPath(t FicheType) []Stage {
	path, ok := reviewPaths[t]
	if !ok {
		return nil
	}
	result := make([]Stage, len(path))
	copy(result, path)
	return result
}

// FirstStage 返回类型审批路径的第一个阶段
func FirstStage(t FicheType) Stage {
	path := reviewPaths[t]
	if len(path) == 0 {
		return ""
	}
	return path[0]
}

// NextStage 返回当前阶段之后的下一个阶段
// 如果当前阶段是最后一个阶段或不在路径中,返回空
func NextStage(t FicheType, current Stage) Stage {
	path := reviewPaths[t]
	for i, stage := range path {
		if stage == current && i+1 < len(path) {
			return path[i+1]
		}
	}
	return ""
}

// IsLastStage 判断当前阶段是否是审批路径的最后一个阶段
func IsLastStage(t FicheType, current Stage) bool {
	path := reviewPaths[t]
	return len(path) > 0 && path[len(path)-1] == current
}

// RoleForStage 返回负责某阶段审批的角色
func RoleForStage(s Stage) Role {
	switch s {
	case StageProjectReferent:
		return RoleProjectReferent
	case StageHRCoach:
		return RoleHRCoach
	case StageManagement:
		return RoleManagement
	default:
		return ""
	}
}

// ParseFicheType 解析评估单类型
func ParseFicheType(s string) (FicheType, error) {
	t := FicheType(s)
	if _, ok := reviewPaths[t]; !ok {
		return "", fmt.Errorf("%w: unknown fiche type %q", ErrValidation, s)
	}
	return t, nil
}

// ParseRole 解析用户角色
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleProjectReferent, RoleHRCoach, RoleManagement:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

// ValidStatus 判断状态值是否合法
func ValidStatus(s FicheStatus) bool {
	switch s {
	case StatusDraft, StatusInReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}
