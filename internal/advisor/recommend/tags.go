// internal/advisor/recommend/tags.go
package recommend

import "strings"

type tagKeywords struct {
	tag      string
	keywords []string
}

// Ordered: the first matching scenario wins.
var scenarioKeywords = []tagKeywords{
	{"知识问答", []string{"知识库", "问答", "rag", "检索"}},
	{"自动化工作流", []string{"agent", "流程", "自动化", "编排"}},
	{"决策辅助", []string{"分析", "策略", "决策", "roi"}},
	{"客服对话", []string{"客服", "对话", "聊天", "机器人"}},
	{"代码辅助", []string{"代码", "编程", "review", "debug"}},
	{"多模态", []string{"图文", "多模态", "视频", "语音"}},
	{"数据分析", []string{"报表", "数据", "指标", "洞察"}},
}

var extraCanonical = []string{"内容生成", "文档处理", "图像处理", "语音处理"}

var tagAliases = map[string]string{
	"企业知识管理": "知识问答",
	"智能客服":   "客服对话",
	"数据分析洞察": "数据分析",
	"商业分析":   "决策辅助",
}

const (
	defaultScenario = "决策辅助"
	maxTags         = 3
)

var canonicalScenarios = func() map[string]struct{} {
	set := make(map[string]struct{}, len(scenarioKeywords)+len(extraCanonical))
	for _, k := range scenarioKeywords {
		set[k.tag] = struct{}{}
	}
	for _, t := range extraCanonical {
		set[t] = struct{}{}
	}
	return set
}()

// CanonicalTag maps a free-form tag onto a known scenario, or returns "".
func CanonicalTag(tag string) string {
	clean := strings.TrimSpace(tag)
	if clean == "" {
		return ""
	}
	if _, ok := canonicalScenarios[clean]; ok {
		return clean
	}
	if alias, ok := tagAliases[clean]; ok {
		return alias
	}
	lowered := strings.ToLower(clean)
	for _, k := range scenarioKeywords {
		if containsAny(lowered, k.keywords) {
			return k.tag
		}
	}
	return ""
}

// FallbackTags infers scenarios from free text. Never empty.
func FallbackTags(text string) []string {
	lowered := strings.ToLower(text)
	var tags []string
	for _, k := range scenarioKeywords {
		if containsAny(lowered, k.keywords) {
			tags = append(tags, k.tag)
		}
	}
	if len(tags) == 0 {
		return []string{defaultScenario}
	}
	return tags
}

// CanonicalTags canonicalises and dedupes tags, keeping at most three.
// When nothing survives it falls back to tags inferred from fallbackText.
func CanonicalTags(tags []string, fallbackText string) []string {
	out := make([]string, 0, maxTags)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		c := CanonicalTag(t)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == maxTags {
			break
		}
	}
	if len(out) == 0 {
		return FallbackTags(fallbackText)
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
