// internal/services/content_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/models"
	"github.com/Draftwell/ScriptForgeAI/internal/storage"
	"github.com/Draftwell/ScriptForgeAI/internal/utils"
)

// TextGenerator 生成能力抽象，便于测试中注入假实现
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*models.CompletionEnvelope, error)
	IsReady() bool
}

// ContentService 按请求编排整个生成流程：
// 构建提示词 → 查缓存 → 未命中时调用生成能力（或模拟模式替身）
// → 规范化 → 写回缓存 → 返回。
type ContentService struct {
	generator TextGenerator
	cache     *storage.ResponseCache
	formatter *FormatterService
	progress  *ProgressService

	useMock       bool
	hasCredential bool

	logger *utils.Logger
}

// NewContentService 创建内容服务
func NewContentService(
	generator TextGenerator,
	cache *storage.ResponseCache,
	formatter *FormatterService,
	progress *ProgressService,
	useMock bool,
	hasCredential bool,
) *ContentService {
	return &ContentService{
		generator:     generator,
		cache:         cache,
		formatter:     formatter,
		progress:      progress,
		useMock:       useMock,
		hasCredential: hasCredential,
		logger:        utils.GetLogger(),
	}
}

// GenerateScript 单资产流程（兼容旧端点）。
// 此处有意不校验字段：缺失的字段作为空串进入提示词，这是接受的输入
// 而不是错误。
func (s *ContentService) GenerateScript(ctx context.Context, req *models.GenerationRequest) (*models.NormalizedDocument, error) {
	prompt := ScriptPrompt(req.TopicTitle, req.SEOKeyword, req.CreatorInfo)

	var raw json.RawMessage

	entry := s.cache.Get(req.TopicTitle, req.SEOKeyword)
	switch {
	case entry != nil && entry.IsStructured():
		s.logger.Infof("使用缓存的脚本响应")
		raw = entry.Structured.Script
	case entry != nil:
		s.logger.Infof("使用旧版格式的缓存响应")
		raw = entry.Legacy
	case s.useMock:
		s.logger.Infof("使用模拟响应，不调用生成API")
		raw = rawString(mockScriptContent(req.TopicTitle, req.SEOKeyword))
	default:
		s.logger.Infof("调用生成API生成脚本")
		envelope, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}
		raw = envelope.Raw()

		// 缓存写入失败绝不让整个请求失败
		s.cache.PutLegacy(req.TopicTitle, req.SEOKeyword, raw)
	}

	text, err := ExtractText(raw)
	if err != nil {
		return nil, err
	}

	return s.formatter.Normalize(text), nil
}

// GenerateContent 多资产流程：一次生成脚本、描述和标签。
// 三次上游调用严格串行；任何一次失败整个请求失败，不做部分持久化。
func (s *ContentService) GenerateContent(ctx context.Context, req *models.GenerationRequest) (*models.ContentPackage, error) {
	if req.TopicTitle == "" || req.SEOKeyword == "" {
		return nil, apperrors.NewValidationError("topic title和seo keyword为必填项", nil)
	}

	if !s.hasCredential && !s.useMock {
		return nil, apperrors.NewConfigurationError("未配置API密钥", nil)
	}

	tracker := s.trackerFor(req.TaskID)

	scriptPrompt := ScriptPrompt(req.TopicTitle, req.SEOKeyword, req.CreatorInfo)
	descriptionPrompt := DescriptionPrompt(req.TopicTitle, req.SEOKeyword, req.CreatorInfo)
	tagsPrompt := TagsPrompt(req.TopicTitle, req.SEOKeyword)

	var scriptRaw, descriptionRaw, tagsRaw json.RawMessage

	entry := s.cache.Get(req.TopicTitle, req.SEOKeyword)
	switch {
	case entry != nil && entry.IsStructured():
		// 缺失的字段按空内容处理
		s.logger.Infof("使用结构化缓存响应")
		scriptRaw = entry.Structured.Script
		descriptionRaw = entry.Structured.Description
		tagsRaw = entry.Structured.Tags

	case s.useMock:
		// 模拟模式：脚本来自固定模板，描述和标签沿用各自的提示词文本
		s.logger.Infof("使用模拟响应，不调用生成API")
		scriptRaw = rawString(mockScriptContent(req.TopicTitle, req.SEOKeyword))
		descriptionRaw = rawString(descriptionPrompt)
		tagsRaw = rawString(tagsPrompt)

	default:
		// 旧版缓存条目不含三种资产，在多资产流程中视为未命中
		stages := []struct {
			name     string
			progress int
			prompt   string
			target   *json.RawMessage
		}{
			{"脚本", 10, scriptPrompt, &scriptRaw},
			{"描述", 40, descriptionPrompt, &descriptionRaw},
			{"标签", 70, tagsPrompt, &tagsRaw},
		}

		for _, stage := range stages {
			s.logger.Infof("调用生成API生成%s", stage.name)
			if tracker != nil {
				tracker.Update(stage.progress, fmt.Sprintf("正在生成%s...", stage.name))
			}

			envelope, err := s.generator.Generate(ctx, stage.prompt)
			if err != nil {
				if tracker != nil {
					tracker.Fail(fmt.Sprintf("生成%s失败", stage.name))
				}
				return nil, err
			}
			*stage.target = envelope.Raw()
		}

		s.cache.PutStructured(req.TopicTitle, req.SEOKeyword, &storage.StructuredContent{
			Script:      scriptRaw,
			Description: descriptionRaw,
			Tags:        tagsRaw,
		})
	}

	pkg, err := s.assemblePackage(scriptRaw, descriptionRaw, tagsRaw)
	if err != nil {
		if tracker != nil {
			tracker.Fail("解析生成结果失败")
		}
		return nil, err
	}

	if tracker != nil {
		tracker.Complete("生成完成")
	}
	return pkg, nil
}

// assemblePackage 对三种资产分别提取并独立规范化
func (s *ContentService) assemblePackage(scriptRaw, descriptionRaw, tagsRaw json.RawMessage) (*models.ContentPackage, error) {
	scriptText, err := ExtractText(scriptRaw)
	if err != nil {
		return nil, err
	}
	descriptionText, err := ExtractText(descriptionRaw)
	if err != nil {
		return nil, err
	}
	tagsText, err := ExtractText(tagsRaw)
	if err != nil {
		return nil, err
	}

	return &models.ContentPackage{
		Script:      s.formatter.Normalize(scriptText).Render(),
		Description: s.formatter.Normalize(descriptionText).Render(),
		Tags:        s.formatter.Normalize(tagsText).Render(),
	}, nil
}

// trackerFor 按需创建进度跟踪器；没有taskId或进度服务时返回nil
func (s *ContentService) trackerFor(taskID string) *ProgressTracker {
	if taskID == "" || s.progress == nil {
		return nil
	}
	return s.progress.CreateTracker(taskID)
}

// ExtractText 从原始生成负载中提取文本。
// 负载可以是chat-completions信封（取 choices[0].message.content），
// 也可以是裸字符串；空负载提取为空串。
func ExtractText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var envelope models.CompletionEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Choices) > 0 {
		return envelope.Choices[0].Message.Content, nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}

	return "", apperrors.NewExtractionError("无法从生成结果中提取文本", nil)
}

// rawString 把一段文本包装为原始JSON负载
func rawString(text string) json.RawMessage {
	data, _ := json.Marshal(text)
	return data
}

// mockScriptContent 模拟模式下的固定脚本模板，
// 带示意性时间戳，供无凭据的本地开发使用。
func mockScriptContent(topicTitle, seoKeyword string) string {
	return fmt.Sprintf(`
# %[1]s

## Introduction [00:00]
Hey everyone, welcome back to the channel! Today we're diving deep into %[1]s, a topic that's been getting a lot of attention lately. If you're interested in %[2]s, you're in the right place.

## What is %[2]s? [01:30]
%[2]s is revolutionizing how we think about education and AI. Let's break down what makes it special.

## Key Features [03:45]
- Natural language processing capabilities
- Adaptive learning algorithms
- Personalized educational content
- Interactive teaching methods

## Real-world Applications [06:20]
Many educators are already implementing %[2]s in their classrooms with impressive results.

## Conclusion [08:15]
As we've seen, %[1]s represents a significant advancement in educational technology. Don't forget to like and subscribe for more content on %[2]s and related topics!

## Call to Action
What do you think about %[1]s? Let me know in the comments below!
`, topicTitle, seoKeyword)
}
