// internal/services/content_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/models"
	"github.com/Draftwell/ScriptForgeAI/internal/storage"
)

// fakeGenerator 可编程的生成能力桩，记录调用次数
type fakeGenerator struct {
	calls     int
	failAt    int // 第几次调用返回错误，0表示从不失败
	responses []string
}

func (g *fakeGenerator) IsReady() bool { return true }

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (*models.CompletionEnvelope, error) {
	g.calls++
	if g.failAt > 0 && g.calls == g.failAt {
		return nil, apperrors.NewGenerationError("调用生成API失败", errors.New("boom"))
	}

	text := fmt.Sprintf("response %d.", g.calls)
	if len(g.responses) >= g.calls {
		text = g.responses[g.calls-1]
	}
	return models.NewTextEnvelope(text), nil
}

func newTestContentService(t *testing.T, generator TextGenerator, useMock, hasCredential bool) (*ContentService, *storage.ResponseCache) {
	t.Helper()

	cache, err := storage.NewResponseCache(t.TempDir())
	require.NoError(t, err)

	service := NewContentService(generator, cache, NewFormatterService(), NewProgressService(), useMock, hasCredential)
	return service, cache
}

func TestGenerateContent_MissingFieldsIsValidationError(t *testing.T) {
	generator := &fakeGenerator{}
	service, _ := newTestContentService(t, generator, false, true)

	_, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "AI in Classrooms",
		// SEOKeyword 缺失
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	// 校验失败时不发起任何网络调用
	assert.Equal(t, 0, generator.calls)
}

func TestGenerateContent_NoCredentialIsConfigurationError(t *testing.T) {
	generator := &fakeGenerator{}
	service, _ := newTestContentService(t, generator, false, false)

	_, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "AI in Classrooms",
		SEOKeyword: "AI education tools",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Equal(t, 0, generator.calls)
}

func TestGenerateContent_MockMode(t *testing.T) {
	generator := &fakeGenerator{}
	service, cache := newTestContentService(t, generator, true, false)

	pkg, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "AI in Classrooms",
		SEOKeyword: "AI education tools",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, generator.calls)

	// 脚本来自固定模板，时间戳已被规范化剥除
	assert.Contains(t, pkg.Script, "## What is AI education tools?")
	assert.NotContains(t, pkg.Script, "[00:00")

	// 模拟模式下描述和标签沿用各自的提示词文本
	assert.NotEmpty(t, pkg.Description)
	assert.Contains(t, pkg.Description, "AI education tools")
	assert.NotEmpty(t, pkg.Tags)
	assert.Contains(t, pkg.Tags, "15-20")

	// 模拟结果不持久化
	assert.Nil(t, cache.Get("AI in Classrooms", "AI education tools"))
}

func TestGenerateContent_LiveFlowPersistsStructuredEntry(t *testing.T) {
	generator := &fakeGenerator{responses: []string{"the script.", "the description.", "tag1, tag2."}}
	service, cache := newTestContentService(t, generator, false, true)

	req := &models.GenerationRequest{TopicTitle: "Topic", SEOKeyword: "keyword"}

	pkg, err := service.GenerateContent(context.Background(), req)
	require.NoError(t, err)

	// 三次严格串行调用：脚本、描述、标签
	assert.Equal(t, 3, generator.calls)
	assert.Equal(t, "the script.", pkg.Script)
	assert.Equal(t, "the description.", pkg.Description)
	assert.Equal(t, "tag1, tag2.", pkg.Tags)

	entry := cache.Get("Topic", "keyword")
	require.NotNil(t, entry)
	assert.True(t, entry.IsStructured())

	// 第二次请求命中缓存，不再调用生成能力
	pkg2, err := service.GenerateContent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, generator.calls)
	assert.Equal(t, pkg.Script, pkg2.Script)
}

func TestGenerateContent_MidFlightFailureLeavesNoPartialEntry(t *testing.T) {
	generator := &fakeGenerator{failAt: 2}
	service, cache := newTestContentService(t, generator, false, true)

	_, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "Topic",
		SEOKeyword: "keyword",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))
	assert.Equal(t, 2, generator.calls)

	// 任何一次调用失败都不做部分持久化
	assert.Nil(t, cache.Get("Topic", "keyword"))
}

func TestGenerateContent_LegacyEntryIsTreatedAsMiss(t *testing.T) {
	generator := &fakeGenerator{responses: []string{"fresh script.", "fresh description.", "fresh tags."}}
	service, cache := newTestContentService(t, generator, false, true)

	legacy := models.NewTextEnvelope("old legacy script.")
	cache.PutLegacy("Topic", "keyword", legacy.Raw())

	pkg, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "Topic",
		SEOKeyword: "keyword",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, generator.calls)
	assert.Equal(t, "fresh script.", pkg.Script)

	// 旧版条目被结构化条目覆盖
	entry := cache.Get("Topic", "keyword")
	require.NotNil(t, entry)
	assert.True(t, entry.IsStructured())
}

func TestGenerateContent_StructuredEntryMissingFieldsDefaultToEmpty(t *testing.T) {
	generator := &fakeGenerator{}
	service, cache := newTestContentService(t, generator, false, true)

	cache.PutStructured("Topic", "keyword", &storage.StructuredContent{
		Script: models.NewTextEnvelope("cached script.").Raw(),
		// Description 和 Tags 缺失
	})

	pkg, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "Topic",
		SEOKeyword: "keyword",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, generator.calls)
	assert.Equal(t, "cached script.", pkg.Script)
	assert.Empty(t, pkg.Description)
	assert.Empty(t, pkg.Tags)
}

func TestGenerateScript_DoesNotValidateFields(t *testing.T) {
	// 单资产流程保持旧版宽松行为：空字段进入提示词而不是报错
	generator := &fakeGenerator{responses: []string{"some script."}}
	service, _ := newTestContentService(t, generator, false, true)

	doc, err := service.GenerateScript(context.Background(), &models.GenerationRequest{})

	require.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, "some script.", doc.Render())
}

func TestGenerateScript_PersistsLegacyEntry(t *testing.T) {
	generator := &fakeGenerator{responses: []string{"generated script."}}
	service, cache := newTestContentService(t, generator, false, true)

	req := &models.GenerationRequest{TopicTitle: "Topic", SEOKeyword: "keyword"}

	_, err := service.GenerateScript(context.Background(), req)
	require.NoError(t, err)

	entry := cache.Get("Topic", "keyword")
	require.NotNil(t, entry)
	assert.False(t, entry.IsStructured())

	// 后续请求直接使用旧版缓存
	doc, err := service.GenerateScript(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, "generated script.", doc.Render())
}

func TestGenerateScript_UsesScriptFieldOfStructuredEntry(t *testing.T) {
	generator := &fakeGenerator{}
	service, cache := newTestContentService(t, generator, false, true)

	cache.PutStructured("Topic", "keyword", &storage.StructuredContent{
		Script: models.NewTextEnvelope("structured script.").Raw(),
	})

	doc, err := service.GenerateScript(context.Background(), &models.GenerationRequest{
		TopicTitle: "Topic",
		SEOKeyword: "keyword",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, generator.calls)
	assert.Equal(t, "structured script.", doc.Render())
}

func TestGenerateScript_MockMode(t *testing.T) {
	generator := &fakeGenerator{}
	service, _ := newTestContentService(t, generator, true, false)

	doc, err := service.GenerateScript(context.Background(), &models.GenerationRequest{
		TopicTitle: "AI in Classrooms",
		SEOKeyword: "AI education tools",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, generator.calls)
	assert.Contains(t, doc.Render(), "# AI in Classrooms")
}

func TestExtractText(t *testing.T) {
	// chat-completions信封
	text, err := ExtractText(models.NewTextEnvelope("hello").Raw())
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	// 裸字符串负载
	text, err = ExtractText([]byte(`"plain text"`))
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)

	// 空负载提取为空串
	text, err = ExtractText(nil)
	require.NoError(t, err)
	assert.Empty(t, text)

	// 无法识别的形状是提取错误
	_, err = ExtractText([]byte(`{"unexpected":"shape"}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsExtractionError(err))
}

func TestGenerateContent_ReportsProgress(t *testing.T) {
	generator := &fakeGenerator{}
	service, _ := newTestContentService(t, generator, false, true)

	_, err := service.GenerateContent(context.Background(), &models.GenerationRequest{
		TopicTitle: "Topic",
		SEOKeyword: "keyword",
		TaskID:     "task-1",
	})
	require.NoError(t, err)

	tracker, exists := service.progress.GetTracker("task-1")
	require.True(t, exists)
	assert.Equal(t, "completed", tracker.Status)
	assert.Equal(t, 100, tracker.Progress)
}
