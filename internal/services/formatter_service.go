// internal/services/formatter_service.go
package services

import (
	"regexp"
	"strings"

	"github.com/Draftwell/ScriptForgeAI/internal/models"
)

// FormatterService 把原始生成文本重塑为干净的标题/段落文档。
// 转换是全函数且确定性的：畸形输入只会得到更少或更空的块，绝不报错。
type FormatterService struct{}

// NewFormatterService 创建格式化服务
func NewFormatterService() *FormatterService {
	return &FormatterService{}
}

var (
	// 视觉提示与镜头指示行整行丢弃
	visualCueRe = regexp.MustCompile(`(?i)\[visual[^\]]*\]`)
	cameraCueRe = regexp.MustCompile(`(?i)\[camera[^\]]*\]`)

	// 时间区间标记，如 [00:00 - 01:15]
	timingRe = regexp.MustCompile(`\[\d{2}:\d{2}[^\]]*\]`)

	// 其余残留的方括号内容
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)

	// 形如 "1. Introduction" 的编号行
	numberedRe = regexp.MustCompile(`^\d+\.\s`)
)

// Normalize 将原始文本转换为规范化文档。
//
// 逐行状态机：一个段落累加器加一个输出块序列。句末标点触发段落
// 边界的启发式规则刻意保持简单，可能过度或不足分段，行为由测试钉死。
func (s *FormatterService) Normalize(raw string) *models.NormalizedDocument {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	var blocks []models.ContentBlock
	var currentParagraph []string

	flushParagraph := func() {
		if len(currentParagraph) == 0 {
			return
		}
		blocks = append(blocks, models.ContentBlock{
			Type: models.BlockParagraph,
			Text: strings.Join(currentParagraph, " "),
		})
		currentParagraph = nil
	}

	for _, line := range lines {
		// 跳过视觉提示和镜头指示行
		if visualCueRe.MatchString(line) || cameraCueRe.MatchString(line) {
			continue
		}

		// 去掉时间标记和其余方括号内容
		line = timingRe.ReplaceAllString(line, "")
		line = bracketRe.ReplaceAllString(line, "")

		trimmed := strings.TrimSpace(line)

		// 清理后为空的行直接跳过，不冲刷进行中的段落
		if trimmed == "" {
			continue
		}

		// 标题行原样作为独立块
		if strings.HasPrefix(trimmed, "#") {
			flushParagraph()
			blocks = append(blocks, models.ContentBlock{
				Type:  models.BlockHeading,
				Level: headingLevel(trimmed),
				Text:  trimmed,
			})
			continue
		}

		// 编号行（如 "1. Introduction"）提升为二级标题
		if numberedRe.MatchString(trimmed) {
			flushParagraph()
			_, headingText, _ := strings.Cut(trimmed, ".")
			blocks = append(blocks, models.ContentBlock{
				Type:  models.BlockHeading,
				Level: 2,
				Text:  "## " + strings.TrimSpace(headingText),
			})
			continue
		}

		currentParagraph = append(currentParagraph, trimmed)

		// 句末标点视为段落结束
		if len(trimmed) > 2 && endsWithTerminator(trimmed) {
			flushParagraph()
		}
	}

	flushParagraph()

	return &models.NormalizedDocument{Blocks: blocks}
}

// headingLevel 统计行首的 '#' 个数
func headingLevel(line string) int {
	level := 0
	for _, r := range line {
		if r != '#' {
			break
		}
		level++
	}
	return level
}

func endsWithTerminator(line string) bool {
	return strings.HasSuffix(line, ".") ||
		strings.HasSuffix(line, "?") ||
		strings.HasSuffix(line, "!")
}
