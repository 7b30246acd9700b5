// internal/advisor/normalize/solutions.go
package normalize

import "ai-advisor/internal/models"

const MaxSolutions = 3

var (
	solutionListKeys = []string{"solutions", "solution", "plans"}
	titleKeys        = []string{"title", "name", "plan_name"}
	architectureKeys = []string{"architecture", "plan", "solution"}
	costKeys         = []string{"estimated_monthly_cost", "monthly_cost", "estimated_cost"}
	roiKeys          = []string{"roi_hypothesis", "roi", "roi_assumption"}
)

// NormalizeSolutions extracts up to three valid solutions. Invalid entries
// are dropped; the result fails only when none survive.
func NormalizeSolutions(payload interface{}) Result[[]models.Solution] {
	record, isObj := asObject(payload)
	if !isObj {
		return fail[[]models.Solution]("solution payload is not an object")
	}

	raw, _ := firstPresent(record, solutionListKeys...)
	list, isList := raw.([]interface{})
	if !isList || len(list) == 0 {
		return fail[[]models.Solution]("solutions list is missing or empty")
	}

	out := make([]models.Solution, 0, MaxSolutions)
	for _, item := range list {
		s, valid := solutionFrom(item)
		if !valid {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSolutions {
			break
		}
	}

	if len(out) == 0 {
		return fail[[]models.Solution]("no valid solution entries")
	}
	return ok(out)
}

func solutionFrom(item interface{}) (models.Solution, bool) {
	row, isObj := asObject(item)
	if !isObj {
		return models.Solution{}, false
	}

	title := firstString(row, titleKeys...)
	architecture := firstString(row, architectureKeys...)
	roi := firstString(row, roiKeys...)

	rawCost, _ := firstPresent(row, costKeys...)
	cost, costOK := toNumber(rawCost)

	if title == "" || architecture == "" || !costOK || roi == "" {
		return models.Solution{}, false
	}

	return models.Solution{
		Title:                title,
		Architecture:         architecture,
		EstimatedMonthlyCost: cost,
		ROIHypothesis:        roi,
		Risks:                stringList(row["risks"]),
	}, true
}
