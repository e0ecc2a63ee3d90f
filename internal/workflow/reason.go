package workflow

import "fmt"

// RefusalReason 拒绝原因
// 封闭枚举,来自原系统的固定列表,保证日志条目可分析
type RefusalReason string

const (
	ReasonIncomplete   RefusalReason = "Informations incomplètes"
	ReasonUnclearGoals RefusalReason = "Objectifs mal définis"
	ReasonNotAligned   RefusalReason = "Non aligné avec la stratégie"
	ReasonNeedsClarity RefusalReason = "Besoin de clarification"
	ReasonWrongFormat  RefusalReason = "Format incorrect"
	ReasonOther        RefusalReason = "Autre"
)

// refusalReasons 拒绝原因的有序列表(用于展示)
var refusalReasons = []RefusalReason{
	ReasonIncomplete,
	ReasonUnclearGoals,
	ReasonNotAligned,
	ReasonNeedsClarity,
	ReasonWrongFormat,
	ReasonOther,
}

// RefusalReasons 返回所有拒绝原因
func RefusalReasons() []RefusalReason {
	result := make([]RefusalReason, len(refusalReasons))
	copy(result, refusalReasons)
	return result
}

// ValidRefusalReason 判断拒绝原因是否属于枚举
func ValidRefusalReason(r RefusalReason) bool {
	for _, reason := range refusalReasons {
		if reason == r {
			return true
		}
	}
	return false
}

// FormatRefusalComment 格式化拒绝日志的评论内容
// 格式: "Motif : <原因>",附加评论另起段落 "Commentaire : <评论>"
func FormatRefusalComment(reason RefusalReason, comment string) string {
	result := fmt.Sprintf("Motif : %s", reason)
	if comment != "" {
		result += fmt.Sprintf("\n\nCommentaire : %s", comment)
	}
	return result
}
