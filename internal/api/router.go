// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Draftwell/ScriptForgeAI/internal/config"
	"github.com/Draftwell/ScriptForgeAI/internal/di"
	"github.com/Draftwell/ScriptForgeAI/internal/services"
	"github.com/Draftwell/ScriptForgeAI/internal/storage"
)

// SetupRouter 配置HTTP路由
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不再创建新实例
	contentService, ok := container.Get("content").(*services.ContentService)
	if !ok {
		return nil, fmt.Errorf("内容服务未正确初始化")
	}

	generationService, ok := container.Get("generation").(*services.GenerationService)
	if !ok {
		return nil, fmt.Errorf("生成服务未正确初始化")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("导出服务未正确初始化")
	}

	progressService, ok := container.Get("progress").(*services.ProgressService)
	if !ok {
		return nil, fmt.Errorf("进度服务未正确初始化")
	}

	cache, ok := container.Get("cache").(*storage.ResponseCache)
	if !ok {
		return nil, fmt.Errorf("响应缓存未正确初始化")
	}

	// 创建API处理器 - 只传递从容器获取的服务
	handler := NewHandler(contentService, generationService, exportService, progressService, cache)

	// 创建路由
	r := gin.Default()

	// 启用CORS（与原服务一致，对所有来源开放）
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Content-Length", "Accept-Encoding",
			"Authorization", "Accept", "Origin", "Cache-Control", "X-Request-ID",
		},
	}))

	r.Use(requestIDMiddleware())
	r.Use(requestLoggerMiddleware())

	// ===============================
	// 生成端点（与旧版HTTP契约兼容）
	// ===============================
	r.POST("/generate-script", handler.GenerateScript)
	r.POST("/generate-content", handler.GenerateContent)

	// WebSocket 进度推送
	r.GET("/ws/progress/:task_id", handler.ProgressWebSocket)

	// ===============================
	// 管理与辅助端点
	// ===============================
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", handler.Health)
		apiGroup.POST("/export", handler.ExportContent)
		apiGroup.DELETE("/cache", handler.DeleteCacheEntry)
	}

	return r, nil
}
