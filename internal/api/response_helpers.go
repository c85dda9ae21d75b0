// internal/api/response_helpers.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/utils"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusOK, response)
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string) {
	response := &APIResponse{
		Success: false,
		Error: &APIError{
			Code:    errorCode,
			Message: message,
		},
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, errorCode, message string) {
	rh.Error(c, http.StatusNotFound, errorCode, message)
}

// InternalError 500错误响应
func (rh *ResponseHelper) InternalError(c *gin.Context, message string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message)
}

// HandleServiceError 把服务层错误映射为HTTP响应。
// 生成/提取失败的上游细节只记录日志，调用方收到通用消息，
// 避免泄露上游内部信息。
func (rh *ResponseHelper) HandleServiceError(c *gin.Context, err error) {
	logger := utils.GetLogger()

	switch {
	case apperrors.IsValidationError(err):
		rh.Error(c, http.StatusBadRequest, ErrorValidationFailed, err.Error())

	case apperrors.IsConfigurationError(err):
		logger.Errorf("配置错误: %v", err)
		rh.Error(c, http.StatusInternalServerError, ErrorConfigurationMissing, "API key not configured")

	case apperrors.IsGenerationError(err):
		logger.Errorf("生成错误: %v", err)
		rh.Error(c, http.StatusInternalServerError, ErrorGenerationFailed, "内容生成失败，请稍后重试")

	case apperrors.IsExtractionError(err):
		logger.Errorf("提取错误: %v", err)
		rh.Error(c, http.StatusInternalServerError, ErrorExtractionFailed, "内容生成失败，请稍后重试")

	case apperrors.IsNotFoundError(err):
		rh.Error(c, http.StatusNotFound, ErrorNotFound, err.Error())

	default:
		logger.Errorf("未预期的错误: %v", err)
		rh.InternalError(c, "服务器内部错误")
	}
}

// getRequestID 从上下文获取请求ID
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
