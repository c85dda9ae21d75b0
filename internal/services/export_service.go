// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	apperrors "github.com/Draftwell/ScriptForgeAI/internal/errors"
	"github.com/Draftwell/ScriptForgeAI/internal/models"
)

// ExportService 把生成好的内容包渲染为可下载的格式
type ExportService struct{}

// NewExportService 创建导出服务
func NewExportService() *ExportService {
	return &ExportService{}
}

var supportedExportFormats = []string{"json", "markdown", "html"}

// Export 按指定格式渲染内容包
func (s *ExportService) Export(pkg *models.ContentPackage, format string) (*models.ExportResult, error) {
	if pkg == nil {
		return nil, apperrors.NewValidationError("导出内容不能为空", nil)
	}

	format = strings.ToLower(format)
	if !contains(supportedExportFormats, format) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("不支持的导出格式: %s，支持的格式: %v", format, supportedExportFormats), nil)
	}

	var content string
	var err error

	switch format {
	case "json":
		content, err = renderJSON(pkg)
	case "markdown":
		content = renderMarkdown(pkg)
	case "html":
		content, err = renderHTML(pkg)
	}
	if err != nil {
		return nil, fmt.Errorf("格式化导出内容失败: %w", err)
	}

	now := time.Now()
	return &models.ExportResult{
		Format:      format,
		Content:     content,
		FileName:    fmt.Sprintf("content_%s.%s", now.Format("20060102_150405"), fileExtension(format)),
		GeneratedAt: now,
	}, nil
}

func renderJSON(pkg *models.ContentPackage) (string, error) {
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func renderMarkdown(pkg *models.ContentPackage) string {
	var sb strings.Builder
	sb.WriteString(pkg.Script)
	if pkg.Description != "" {
		sb.WriteString("\n\n## Description\n\n")
		sb.WriteString(pkg.Description)
	}
	if pkg.Tags != "" {
		sb.WriteString("\n\n## Tags\n\n")
		sb.WriteString(pkg.Tags)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderHTML(pkg *models.ContentPackage) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(renderMarkdown(pkg)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func fileExtension(format string) string {
	if format == "markdown" {
		return "md"
	}
	return format
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
