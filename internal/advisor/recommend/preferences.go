// Package recommend ranks catalog models and articles against a company profile.
package recommend

import "ai-advisor/internal/models"

// FeedProfile is the subset of a user profile that drives ranking.
type FeedProfile struct {
	CompanyIndustry    string
	CompanyScale       string
	PreferredScenarios []string
}

// ProfileFrom builds a FeedProfile from a stored profile, putting the
// given explicit scenarios ahead of the profile's own.
func ProfileFrom(p models.UserProfile, explicit ...string) FeedProfile {
	preferred := make([]string, 0, len(explicit)+len(p.PreferredScenarios))
	preferred = append(preferred, explicit...)
	preferred = append(preferred, p.PreferredScenarios...)
	return FeedProfile{
		CompanyIndustry:    p.CompanyIndustry,
		CompanyScale:       p.CompanyScale,
		PreferredScenarios: preferred,
	}
}

var industryScenarioHints = map[string][]string{
	"企业服务（SaaS）": {"决策辅助", "自动化工作流", "知识问答"},
	"制造业":        {"图像处理", "数据分析", "自动化工作流"},
	"医疗健康":       {"知识问答", "文档处理", "决策辅助"},
	"教育培训":       {"内容生成", "知识问答", "文档处理"},
}

var scaleScenarioHints = map[string][]string{
	"初创（<20人）":      {"自动化工作流", "内容生成"},
	"小型（20-100人）":   {"自动化工作流", "客服对话"},
	"中型（100-500人）":  {"决策辅助", "知识问答"},
	"大型（500-2000人）": {"客服对话", "数据分析"},
	"超大型（>2000人）":   {"自动化工作流", "数据分析"},
}

// IndustryHints returns the scenarios associated with an industry label, or nil.
func IndustryHints(industry string) []string {
	return industryScenarioHints[industry]
}

// ScaleHints returns the scenarios associated with a scale label, or nil.
func ScaleHints(scale string) []string {
	return scaleScenarioHints[scale]
}

// DerivePreferredScenarios merges explicit preferences with the industry
// and scale hints, keeping first occurrence order.
func DerivePreferredScenarios(profile FeedProfile) []string {
	all := make([]string, 0, len(profile.PreferredScenarios)+5)
	all = append(all, profile.PreferredScenarios...)
	all = append(all, IndustryHints(profile.CompanyIndustry)...)
	all = append(all, ScaleHints(profile.CompanyScale)...)
	return uniq(all)
}

func uniq(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
