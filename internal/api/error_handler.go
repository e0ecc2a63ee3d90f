package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/workflow"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 错误处理中间件
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// RespondError 按领域错误类型映射 HTTP 状态码
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		Error(c, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, workflow.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		Error(c, http.StatusConflict, "invalid transition", err.Error())
	case errors.Is(err, workflow.ErrConflict):
		Error(c, http.StatusConflict, "concurrent modification", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}
