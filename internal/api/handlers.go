// internal/api/handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Draftwell/ScriptForgeAI/internal/models"
	"github.com/Draftwell/ScriptForgeAI/internal/services"
	"github.com/Draftwell/ScriptForgeAI/internal/storage"
)

// Handler 处理API请求
type Handler struct {
	ContentService    *services.ContentService    // 内容编排服务
	GenerationService *services.GenerationService // 生成能力客户端
	ExportService     *services.ExportService     // 导出服务
	ProgressService   *services.ProgressService   // 进度跟踪服务
	Cache             *storage.ResponseCache      // 响应缓存
	Response          *ResponseHelper             // 响应助手
}

// NewHandler 创建API处理器
func NewHandler(
	contentService *services.ContentService,
	generationService *services.GenerationService,
	exportService *services.ExportService,
	progressService *services.ProgressService,
	cache *storage.ResponseCache,
) *Handler {
	return &Handler{
		ContentService:    contentService,
		GenerationService: generationService,
		ExportService:     exportService,
		ProgressService:   progressService,
		Cache:             cache,
		Response:          NewResponseHelper(),
	}
}

// ExportRequest 导出请求结构
type ExportRequest struct {
	Script      string `json:"script"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	Format      string `json:"format"`
}

// GenerateScript 单资产端点（兼容旧客户端），只返回脚本
func (h *Handler) GenerateScript(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求体不是合法的JSON")
		return
	}

	doc, err := h.ContentService.GenerateScript(c.Request.Context(), &req)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, gin.H{"script": doc.Render()})
}

// GenerateContent 多资产端点：一次返回脚本、描述和标签
func (h *Handler) GenerateContent(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求体不是合法的JSON")
		return
	}

	pkg, err := h.ContentService.GenerateContent(c.Request.Context(), &req)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, pkg)
}

// Health 服务健康状态
func (h *Handler) Health(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":      "ok",
		"provider":    h.GenerationService.ProviderName(),
		"ready":       h.GenerationService.IsReady(),
		"ready_state": h.GenerationService.ReadyState(),
	})
}

// ExportContent 把生成好的内容导出为指定格式
func (h *Handler) ExportContent(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求体不是合法的JSON")
		return
	}

	result, err := h.ExportService.Export(&models.ContentPackage{
		Script:      req.Script,
		Description: req.Description,
		Tags:        req.Tags,
	}, req.Format)
	if err != nil {
		h.Response.HandleServiceError(c, err)
		return
	}

	h.Response.Success(c, result)
}

// DeleteCacheEntry 手动删除一个缓存条目。
// 缓存条目没有过期机制，会一直保留到被手动删除。
func (h *Handler) DeleteCacheEntry(c *gin.Context) {
	topic := c.Query("topic")
	keyword := c.Query("keyword")

	if topic == "" || keyword == "" {
		h.Response.BadRequest(c, "topic和keyword为必填参数")
		return
	}

	if err := h.Cache.Delete(topic, keyword); err != nil {
		h.Response.NotFound(c, ErrorCacheEntryNotFound, "缓存条目不存在")
		return
	}

	h.Response.Success(c, gin.H{"deleted": storage.CacheKey(topic, keyword)}, "缓存条目已删除")
}
