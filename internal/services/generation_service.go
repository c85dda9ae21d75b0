// internal/services/generation_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/llm"
	"github.com/Draftwell/ScriptForgeAI/internal/models"
	"github.com/Draftwell/ScriptForgeAI/internal/utils"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1500
	defaultCallTimeout = 60 * time.Second
)

// GenerationService 封装对生成能力的调用：每次尝试一个网络请求，
// 仅在超时时按策略重试。超时作用于单次尝试，不作用于整个请求。
type GenerationService struct {
	provider    llm.Provider
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	policy      llm.RetryPolicy
	logger      *utils.Logger

	isReady    bool
	readyState string
}

// NewGenerationService 创建生成服务
func NewGenerationService(provider llm.Provider, model string, policy llm.RetryPolicy) *GenerationService {
	return &GenerationService{
		provider:    provider,
		model:       model,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		timeout:     defaultCallTimeout,
		policy:      policy,
		logger:      utils.GetLogger(),
		isReady:     provider != nil,
		readyState:  "Ready",
	}
}

// NewEmptyGenerationService 创建一个未就绪的生成服务作为后备方案
func NewEmptyGenerationService() *GenerationService {
	return &GenerationService{
		policy:     llm.DefaultRetryPolicy(),
		logger:     utils.GetLogger(),
		isReady:    false,
		readyState: "API key not configured",
	}
}

// IsReady 返回服务是否已就绪
func (s *GenerationService) IsReady() bool {
	return s.isReady
}

// ReadyState 返回就绪状态描述
func (s *GenerationService) ReadyState() string {
	return s.readyState
}

// ProviderName 返回当前提供者名称
func (s *GenerationService) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetName()
}

// Generate 用给定提示词调用生成能力。
// 只有超时会被重试；其它任何失败立即以 GenerationError 返回，
// 上游状态码和响应体只记录日志，不向调用方泄露。
func (s *GenerationService) Generate(ctx context.Context, prompt string) (*models.CompletionEnvelope, error) {
	if !s.isReady {
		return nil, apperrors.NewConfigurationError("生成服务未就绪: "+s.readyState, nil)
	}

	totalAttempts := s.policy.MaxRetries + 1
	var lastErr error

	for attempt := 0; ; attempt++ {
		s.logger.Infof("调用生成API (尝试 %d/%d)", attempt+1, totalAttempts)

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.provider.CompleteText(attemptCtx, llm.CompletionRequest{
			Prompt:      prompt,
			Model:       s.model,
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		})
		cancel()

		if err == nil {
			return &models.CompletionEnvelope{
				Model: resp.ModelName,
				Choices: []models.EnvelopeChoice{
					{
						Message:      models.EnvelopeMessage{Role: "assistant", Content: resp.Text},
						FinishReason: resp.FinishReason,
					},
				},
			}, nil
		}

		if !s.policy.Retryable(err) {
			var apiErr *llm.APIError
			if errors.As(err, &apiErr) {
				s.logger.Errorf("上游响应状态: %d", apiErr.StatusCode)
				s.logger.Errorf("上游响应体: %s", apiErr.Body)
			} else {
				s.logger.Errorf("生成API请求错误: %v", err)
			}
			return nil, apperrors.NewGenerationError("调用生成API失败", err)
		}

		lastErr = err
		if attempt >= s.policy.MaxRetries {
			break
		}

		wait := s.policy.Backoff(attempt + 1)
		s.logger.Warnf("请求超时，%v后重试...", wait)
		s.policy.Sleep(wait)
	}

	return nil, apperrors.NewGenerationError(
		fmt.Sprintf("生成API在%d次尝试后仍然失败", totalAttempts), lastErr)
}
