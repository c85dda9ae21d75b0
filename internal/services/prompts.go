// internal/services/prompts.go
package services

import (
	"fmt"
	"strings"
)

// 提示词构建：把 (topic, keyword, creatorInfo) 映射为三种提示词的纯函数。
// 无状态、无I/O、对任意输入都有定义。

// ScriptPrompt 构建视频脚本的生成提示词。
// 脚本遵循固定的六段式叙事结构，并要求生成器避免时间标记和镜头指示。
func ScriptPrompt(topicTitle, seoKeyword, creatorInfo string) string {
	creatorContext := ""
	if creatorInfo != "" {
		creatorContext = fmt.Sprintf(`
The script should be written for a creator with the following background/expertise:
%s

Make sure to incorporate the creator's expertise and background in the introduction to establish credibility.
`, creatorInfo)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a comprehensive YouTube script for a video with the title: %q.\n\n", topicTitle))
	sb.WriteString(fmt.Sprintf("The script should be optimized for the SEO keyword: %q.\n", seoKeyword))
	sb.WriteString(creatorContext)
	sb.WriteString(`
Please structure the script following this specific storytelling flow:

1. Introduction (Who are you) - Establish credibility and introduce yourself
2. Why should the viewer care - Explain the importance of the topic and why viewers should watch till the end
3. Hook - Capture attention with an intriguing statement or question
4. Value proposition - Explain what viewers will learn or gain from the video
5. Main content - Deliver on your promises with clear, actionable information
6. End value - Summarize key takeaways and provide a clear call to action

Important formatting requirements:
- Do NOT include any timing information (like [00:15])
- Do NOT include any visual cues or camera directions
- Format the script as clean paragraphs separated by blank lines
- Use markdown headings (# for title, ## for sections)
- Keep the content conversational and engaging
- Make sure paragraphs are properly separated
- Do not include any host names or speaker indicators
`)
	sb.WriteString(fmt.Sprintf("\nOptimize the script for YouTube's algorithm by naturally incorporating the SEO keyword %q throughout.\n", seoKeyword))

	return sb.String()
}

// DescriptionPrompt 构建视频描述的生成提示词
func DescriptionPrompt(topicTitle, seoKeyword, creatorInfo string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create an SEO-optimized YouTube description for a video with the title: %q.\n\n", topicTitle))
	sb.WriteString("The description should:\n")
	sb.WriteString(fmt.Sprintf("1. Include the main keyword %q in the first 1-2 sentences\n", seoKeyword))
	sb.WriteString(`2. Be 150-200 words long
3. Include a brief summary of what viewers will learn
4. Include 2-3 relevant hashtags at the end
5. Include a call to action (like, subscribe, comment)
6. Include timestamps for at least 3-4 key sections of the video
`)
	sb.WriteString(fmt.Sprintf("\nCreator information to incorporate if relevant:\n%s\n", creatorInfo))

	return sb.String()
}

// TagsPrompt 构建视频标签列表的生成提示词
func TagsPrompt(topicTitle, seoKeyword string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate a list of 15-20 relevant YouTube tags for a video with the title: %q and main keyword %q.\n\n", topicTitle, seoKeyword))
	sb.WriteString(`The tags should:
1. Include the main keyword and variations
2. Include related terms and phrases
3. Include both short-tail and long-tail keywords
4. Be formatted as a comma-separated list
5. Each tag should be 1-5 words long

Please provide only the list of tags without any additional text or explanations.
`)

	return sb.String()
}
