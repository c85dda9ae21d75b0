// internal/services/generation_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/llm"
)

// fakeProvider 可编程的提供者桩：按顺序返回预设结果
type fakeProvider struct {
	calls   int
	results []fakeResult
}

type fakeResult struct {
	text string
	err  error
}

func (p *fakeProvider) Initialize(config map[string]string) error { return nil }
func (p *fakeProvider) GetName() string                           { return "fake" }
func (p *fakeProvider) GetSupportedModels() []string              { return nil }

func (p *fakeProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	result := p.results[p.calls]
	p.calls++
	if result.err != nil {
		return nil, result.err
	}
	return &llm.CompletionResponse{Text: result.text, ModelName: req.Model}, nil
}

// testPolicy 返回记录休眠调用的策略，避免测试真实等待
func testPolicy(sleeps *[]time.Duration) llm.RetryPolicy {
	policy := llm.DefaultRetryPolicy()
	policy.Sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return policy
}

func TestGenerate_RepeatedTimeoutExhaustsRetries(t *testing.T) {
	var sleeps []time.Duration
	provider := &fakeProvider{results: []fakeResult{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
	}}

	service := NewGenerationService(provider, "test-model", testPolicy(&sleeps))

	_, err := service.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))

	// maxRetries=2 意味着总共恰好3次尝试
	assert.Equal(t, 3, provider.calls)

	// 线性退避：第1次重试等2秒，第2次等4秒
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeps)
}

func TestGenerate_TimeoutOnceThenSucceeds(t *testing.T) {
	var sleeps []time.Duration
	provider := &fakeProvider{results: []fakeResult{
		{err: context.DeadlineExceeded},
		{text: "generated content"},
	}}

	service := NewGenerationService(provider, "test-model", testPolicy(&sleeps))

	envelope, err := service.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeps)
	require.Len(t, envelope.Choices, 1)
	assert.Equal(t, "generated content", envelope.Choices[0].Message.Content)
}

func TestGenerate_UpstreamErrorIsNotRetried(t *testing.T) {
	var sleeps []time.Duration
	provider := &fakeProvider{results: []fakeResult{
		{err: &llm.APIError{StatusCode: 500, Body: "internal error"}},
	}}

	service := NewGenerationService(provider, "test-model", testPolicy(&sleeps))

	_, err := service.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationError(err))

	// 非超时失败立即终止，不重试
	assert.Equal(t, 1, provider.calls)
	assert.Empty(t, sleeps)
}

func TestGenerate_NotReadyReturnsConfigurationError(t *testing.T) {
	service := NewEmptyGenerationService()

	_, err := service.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, llm.IsTimeout(context.DeadlineExceeded))
	assert.False(t, llm.IsTimeout(nil))
	assert.False(t, llm.IsTimeout(assert.AnError))
	assert.False(t, llm.IsTimeout(&llm.APIError{StatusCode: 429}))
}
