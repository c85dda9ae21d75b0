// internal/llm/providers/openai/openai.go
package openai

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Draftwell/ScriptForgeAI/internal/llm"
)

func init() {
	llm.Register("openai", func() llm.Provider {
		return &Provider{
			recommendedModels: []string{
				"gpt-4o",
				"gpt-4o-mini",
				"gpt-4.1",
			},
		}
	})
}

// Provider 基于官方 openai-go SDK 的提供者实现。
// 配合自定义 base_url 也可用于其它OpenAI兼容服务。
type Provider struct {
	opts              []option.RequestOption
	defaultModel      string
	recommendedModels []string
	initialized       bool
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("openai api密钥未提供")
	}

	p.opts = []option.RequestOption{option.WithAPIKey(apiKey)}

	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		p.opts = append(p.opts, option.WithBaseURL(baseURL))
	}

	if model, exists := config["default_model"]; exists && model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = "gpt-4o-mini"
	}

	p.initialized = true
	return nil
}

func (p *Provider) GetName() string {
	return "OpenAI"
}

func (p *Provider) GetSupportedModels() []string {
	return p.recommendedModels
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if !p.initialized {
		return nil, errors.New("openai提供者未初始化")
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	client := openai.NewClient(p.opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai响应中没有choices")
	}

	return &llm.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   int(resp.Usage.TotalTokens),
		ModelName:    model,
		ProviderName: "openai",
	}, nil
}
