package summarize

import "fmt"

// Style selects how thorough the generated summary is.
const (
	StyleBrief    = "brief"
	StyleDetailed = "detailed"
)

const briefPromptEN = `Please summarize the following video content concisely:

1. Summarize the core content in 2-3 sentences
2. List 3-5 key points
3. Extract 1-2 core insights

Video transcript:
%s

Please output in the following format:

## 📝 Content Summary
[Brief summary]

## 🎯 Key Points
- Point 1
- Point 2
- Point 3

## 💡 Core Insights
[Deep insights]
`

const detailedPromptEN = `Please summarize the following video content in detail:

1. Summarize the core content in 3-5 sentences
2. List all important points (5-10 items)
3. Create a timeline summary if possible
4. Provide in-depth analysis and insights

Video transcript:
%s

Please output in the following format:

## 📝 Content Summary
[Detailed summary]

## 🎯 Key Points
- Point 1
- Point 2
- Point 3
[More points...]

## ⏱ Timeline
- 00:00 - Topic 1
- 05:30 - Topic 2
[More timestamps...]

## 💡 Core Insights
[In-depth analysis]

## 🔍 Additional Notes
[Other important information]
`

const briefPromptZH = `请简明扼要地总结以下视频内容：

1. 用2-3句话概括核心内容
2. 列出3-5个关键要点
3. 提取1-2条核心见解

视频文字稿：
%s

请按以下格式输出：

## 📝 内容概要
[简要总结]

## 🎯 关键要点
- 要点1
- 要点2
- 要点3

## 💡 核心见解
[深度洞察]
`

const detailedPromptZH = `请详细总结以下视频内容：

1. 用3-5句话概括核心内容
2. 列出所有重要要点（5-10条）
3. 如果可能，创建时间线总结
4. 提供深入的分析和见解

视频文字稿：
%s

请按以下格式输出：

## 📝 内容概要
[详细总结]

## 🎯 关键要点
- 要点1
- 要点2
- 要点3
[更多要点...]

## ⏱ 时间线
- 00:00 - 主题1
- 05:30 - 主题2
[更多时间戳...]

## 💡 核心见解
[深入分析]

## 🔍 补充说明
[其他重要信息]
`

// BuildPrompt renders the summarization prompt for a transcript. Unknown
// styles fall back to detailed; any language other than "zh" gets the
// English prompt.
func BuildPrompt(transcript, style, language string) string {
	if language == "zh" {
		if style == StyleBrief {
			return fmt.Sprintf(briefPromptZH, transcript)
		}
		return fmt.Sprintf(detailedPromptZH, transcript)
	}
	if style == StyleBrief {
		return fmt.Sprintf(briefPromptEN, transcript)
	}
	return fmt.Sprintf(detailedPromptEN, transcript)
}
