// internal/advisor/recommend/score.go
package recommend

import "ai-advisor/internal/models"

const (
	baseScore          = 30
	preferredMatchStep = 20
	preferredMatchCap  = 40
	industryMatchBonus = 25
	providerBonus      = 5
	scenarioStep       = 8
	scenarioCap        = 10
	comboBonus         = 5
	maxScore           = 100
)

// ScoreModel scores one candidate for an industry and a preference list.
// The result is always within [0,100].
func ScoreModel(model models.CandidateModel, industry string, preferred []string) int {
	scenarios := make(map[string]struct{}, len(model.BusinessScenarios))
	for _, s := range model.BusinessScenarios {
		scenarios[s] = struct{}{}
	}

	preferredMatches := 0
	for _, p := range preferred {
		if _, ok := scenarios[p]; ok {
			preferredMatches++
		}
	}

	industryMatch := false
	for _, hint := range IndustryHints(industry) {
		if _, ok := scenarios[hint]; ok {
			industryMatch = true
			break
		}
	}

	score := baseScore
	score += min(preferredMatchCap, preferredMatches*preferredMatchStep)
	if industryMatch {
		score += industryMatchBonus
	}
	if model.Provider != "" {
		score += providerBonus
	}
	score += min(scenarioCap, len(scenarios)*scenarioStep)
	score += costBonus(model.CostInput, model.CostOutput)
	if preferredMatches > 0 && industryMatch {
		score += comboBonus
	}
	return min(score, maxScore)
}

// costBonus rewards cheap models. Unknown or non-positive costs get the floor.
func costBonus(input, output *float64) int {
	if input == nil || output == nil || *input <= 0 || *output <= 0 {
		return 3
	}
	switch total := *input + *output; {
	case total <= 8:
		return 10
	case total <= 20:
		return 6
	default:
		return 3
	}
}
