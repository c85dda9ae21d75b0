// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 内容生成服务的错误类型
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeConfiguration ErrorType = "configuration_error"
	ErrorTypeGeneration    ErrorType = "generation_error"
	ErrorTypeExtraction    ErrorType = "extraction_error"
	ErrorTypeCache         ErrorType = "cache_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeError         ErrorType = "processing_error"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError 创建验证错误（缺少必填字段）
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewConfigurationError 创建配置错误（缺少API密钥且未启用模拟模式）
func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

// NewGenerationError 创建生成错误（上游调用在重试后仍然失败）
func NewGenerationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeGeneration, message, originalError)
}

// NewExtractionError 创建提取错误（生成结果无法解析为文本）
func NewExtractionError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeExtraction, message, originalError)
}

// NewCacheError 创建缓存错误（本地持久化读写失败，仅内部记录）
func NewCacheError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeCache, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsConfigurationError 检查是否为配置错误
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfiguration)
}

// IsGenerationError 检查是否为生成错误
func IsGenerationError(err error) bool {
	return hasType(err, ErrorTypeGeneration)
}

// IsExtractionError 检查是否为提取错误
func IsExtractionError(err error) bool {
	return hasType(err, ErrorTypeExtraction)
}

// IsCacheError 检查是否为缓存错误
func IsCacheError(err error) bool {
	return hasType(err, ErrorTypeCache)
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

func hasType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeGeneration:
		return "GENERATION_ERROR"
	case ErrorTypeExtraction:
		return "EXTRACTION_ERROR"
	case ErrorTypeCache:
		return "CACHE_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，只更新消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	// 否则创建新的 AppError
	return NewAppError(errType, message, err)
}
