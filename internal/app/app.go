// internal/app/app.go
package app

import (
	"fmt"

	"github.com/Draftwell/ScriptForgeAI/internal/config"
	"github.com/Draftwell/ScriptForgeAI/internal/di"
	"github.com/Draftwell/ScriptForgeAI/internal/llm"
	"github.com/Draftwell/ScriptForgeAI/internal/services"
	"github.com/Draftwell/ScriptForgeAI/internal/storage"
	"github.com/Draftwell/ScriptForgeAI/internal/utils"

	// 注册LLM提供者
	_ "github.com/Draftwell/ScriptForgeAI/internal/llm/providers/deepseek"
	_ "github.com/Draftwell/ScriptForgeAI/internal/llm/providers/openai"
	_ "github.com/Draftwell/ScriptForgeAI/internal/llm/providers/openrouter"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
func InitServices(cfg *config.Config) error {
	container := di.GetContainer()
	logger := utils.GetLogger()

	// 1. 响应缓存
	cache, err := storage.NewResponseCache(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("初始化响应缓存失败: %w", err)
	}
	container.Register("cache", cache)

	// 2. 格式化服务
	formatter := services.NewFormatterService()
	container.Register("formatter", formatter)

	// 3. 生成服务（无凭据时注册未就绪的后备实例）
	generation := buildGenerationService(cfg, logger)
	container.Register("generation", generation)

	// 4. 进度与导出服务
	progress := services.NewProgressService()
	container.Register("progress", progress)

	export := services.NewExportService()
	container.Register("export", export)

	// 5. 内容编排服务
	content := services.NewContentService(
		generation, cache, formatter, progress,
		cfg.UseMockResponse, cfg.HasCredential())
	container.Register("content", content)

	return nil
}

func buildGenerationService(cfg *config.Config, logger *utils.Logger) *services.GenerationService {
	if !cfg.HasCredential() {
		if !cfg.UseMockResponse {
			logger.Warnf("未设置API密钥且未启用模拟模式，多资产生成将不可用")
		}
		return services.NewEmptyGenerationService()
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig())
	if err != nil {
		logger.Errorf("初始化LLM提供者失败 (%s): %v", cfg.LLMProvider, err)
		return services.NewEmptyGenerationService()
	}

	return services.NewGenerationService(provider, cfg.DefaultModel, llm.DefaultRetryPolicy())
}
