// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// 生成流程相关错误
	ErrorValidationFailed     = "VALIDATION_ERROR"
	ErrorConfigurationMissing = "CONFIGURATION_ERROR"
	ErrorGenerationFailed     = "GENERATION_ERROR"
	ErrorExtractionFailed     = "EXTRACTION_ERROR"

	// 缓存相关错误
	ErrorCacheEntryNotFound = "CACHE_ENTRY_NOT_FOUND"

	// 导出相关错误
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"

	// 进度相关错误
	ErrorTaskNotFound = "TASK_NOT_FOUND"
)
