// internal/models/content.go
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// GenerationRequest 内容生成请求
// TopicTitle 和 SEOKeyword 在多资产流程中必填；CreatorInfo 可为空。
type GenerationRequest struct {
	TopicTitle  string `json:"topicTitle"`
	SEOKeyword  string `json:"seoKeyword"`
	CreatorInfo string `json:"creatorInfo,omitempty"`
	TaskID      string `json:"taskId,omitempty"` // 可选，用于进度推送
}

// BlockType 规范化文档中块的类型
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
)

// ContentBlock 规范化文档中的一个块。
// Text 为最终呈现文本，标题块保留markdown标记（如 "## Introduction"）。
type ContentBlock struct {
	Type  BlockType `json:"type"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text"`
}

// NormalizedDocument 规范化后的文档：有序的标题/段落块序列
type NormalizedDocument struct {
	Blocks []ContentBlock `json:"blocks"`
}

// Render 将文档序列化为空行分隔的文本
func (d *NormalizedDocument) Render() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, block := range d.Blocks {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n\n")
}

// IsEmpty 返回文档是否没有任何块
func (d *NormalizedDocument) IsEmpty() bool {
	return len(d.Blocks) == 0
}

// EnvelopeMessage 上游chat-completions响应中的消息
type EnvelopeMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// EnvelopeChoice 上游chat-completions响应中的候选
type EnvelopeChoice struct {
	Message      EnvelopeMessage `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// CompletionEnvelope 上游生成能力的原始响应形状。
// 提取步骤只依赖 choices[0].message.content。
type CompletionEnvelope struct {
	ID      string           `json:"id,omitempty"`
	Model   string           `json:"model,omitempty"`
	Choices []EnvelopeChoice `json:"choices"`
}

// NewTextEnvelope 用一段文本构造响应信封
func NewTextEnvelope(content string) *CompletionEnvelope {
	return &CompletionEnvelope{
		Choices: []EnvelopeChoice{
			{Message: EnvelopeMessage{Role: "assistant", Content: content}},
		},
	}
}

// Raw 将信封序列化为原始负载
func (e *CompletionEnvelope) Raw() json.RawMessage {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// ContentPackage 一次多资产请求的完整结果
type ContentPackage struct {
	Script      string `json:"script"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

// ExportResult 导出结果
type ExportResult struct {
	Format      string    `json:"format"`
	Content     string    `json:"content"`
	FileName    string    `json:"file_name,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
