package workflow

import "errors"

// 引擎错误类型
// 每个违反前置条件的调用都返回其中之一,绝不产生部分状态变更
var (
	// ErrForbidden 操作者的角色或身份不允许在当前状态下执行该操作
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition 当前状态不允许请求的状态转换
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrValidation 输入不合法(空评论、缺少拒绝原因等)
	ErrValidation = errors.New("validation failed")

	// ErrConflict 乐观并发冲突,调用方应重新读取后重试
	ErrConflict = errors.New("conflict")

	// ErrNotFound 引用的评估单不存在
	ErrNotFound = errors.New("fiche not found")
)
