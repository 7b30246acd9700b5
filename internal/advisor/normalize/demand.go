// internal/advisor/normalize/demand.go
package normalize

import "ai-advisor/internal/models"

const (
	DefaultFollowUpQuestion = "请补充行业、团队规模、当前痛点和希望达成的目标。"
	// Unspecified stands in for an industry or scale the model did not resolve.
	Unspecified = "未明确"
)

var (
	industryKeys  = []string{"industry", "company_industry", "industry_name"}
	scaleKeys     = []string{"scale", "company_scale"}
	painPointKeys = []string{"pain_points", "painPoints", "pain", "challenges"}
	goalKeys      = []string{"goals", "goal"}
)

// NormalizeDemand reads a DemandAnalysis from a parsed payload. Any object
// succeeds; pain points and goals may come back empty.
func NormalizeDemand(payload interface{}) Result[models.DemandAnalysis] {
	record, isObj := asObject(payload)
	if !isObj {
		return fail[models.DemandAnalysis]("demand payload is not an object")
	}

	if follow, _ := record["need_follow_up"].(bool); follow {
		question := firstString(record, "follow_up_question")
		if question == "" {
			question = DefaultFollowUpQuestion
		}
		return ok(models.DemandAnalysis{NeedFollowUp: true, FollowUpQuestion: question})
	}

	source := record
	if nested, hasDemand := asObject(record["demand"]); hasDemand {
		source = nested
	}

	demand := models.StructuredDemand{
		Industry:   orUnspecified(firstString(source, industryKeys...)),
		Scale:      orUnspecified(firstString(source, scaleKeys...)),
		PainPoints: listFrom(source, painPointKeys),
		Goals:      listFrom(source, goalKeys),
	}
	return ok(models.DemandAnalysis{Demand: &demand})
}

func listFrom(obj map[string]interface{}, keys []string) []string {
	v, found := firstPresent(obj, keys...)
	if !found {
		return []string{}
	}
	return stringList(v)
}

func orUnspecified(s string) string {
	if s == "" {
		return Unspecified
	}
	return s
}
