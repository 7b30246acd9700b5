// internal/advisor/normalize/ranking.go
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"ai-advisor/internal/models"
)

var (
	ErrRankingShape      = errors.New("ranking payload must be an object with a models array")
	ErrRankingGroup      = errors.New("invalid ranking group")
	ErrRankingScore      = errors.New("missing ranking score")
	ErrRankingText       = errors.New("missing ranking text")
	ErrRankingDuplicate  = errors.New("duplicate ranking id")
	ErrRankingIncomplete = errors.New("ranking does not cover every candidate")
)

var rankingTextKeys = []string{"best_for", "fit_team", "budget_tier", "rollout_difficulty", "avoid_when"}

// NormalizeModelRanking validates an LLM ranking against the candidate set.
// Unknown ids are skipped; every other defect rejects the whole ranking.
func NormalizeModelRanking(payload interface{}, known map[string]models.CandidateModel) ([]models.ModelRanking, error) {
	record, isObj := asObject(payload)
	if !isObj {
		return nil, ErrRankingShape
	}
	list, isList := record["models"].([]interface{})
	if !isList {
		return nil, ErrRankingShape
	}

	seen := make(map[string]struct{}, len(known))
	out := make([]models.ModelRanking, 0, len(known))

	for _, item := range list {
		row, isRow := asObject(item)
		if !isRow {
			continue
		}
		id := firstString(row, "id")
		if _, isKnown := known[id]; !isKnown {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrRankingDuplicate, id)
		}
		seen[id] = struct{}{}

		ranking, err := rankingFrom(id, row)
		if err != nil {
			return nil, err
		}
		out = append(out, ranking)
	}

	for id := range known {
		if _, covered := seen[id]; !covered {
			return nil, fmt.Errorf("%w: missing %s", ErrRankingIncomplete, id)
		}
	}
	if len(out) != len(known) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrRankingIncomplete, len(out), len(known))
	}
	return out, nil
}

func rankingFrom(id string, row map[string]interface{}) (models.ModelRanking, error) {
	group := firstString(row, "group")
	if group != models.GroupFeatured && group != models.GroupPractical {
		return models.ModelRanking{}, fmt.Errorf("%w: %q for %s", ErrRankingGroup, group, id)
	}

	scores := [3]int{}
	for i, key := range []string{"capability_score", "delivery_score", "composite_score"} {
		v, valid := toNumber(row[key])
		if _, isStr := row[key].(string); isStr || !valid {
			return models.ModelRanking{}, fmt.Errorf("%w: %s for %s", ErrRankingScore, key, id)
		}
		scores[i] = clampScore(v)
	}

	texts := [5]string{}
	for i, key := range rankingTextKeys {
		s, _ := row[key].(string)
		if texts[i] = strings.TrimSpace(s); texts[i] == "" {
			return models.ModelRanking{}, fmt.Errorf("%w: %s for %s", ErrRankingText, key, id)
		}
	}

	return models.ModelRanking{
		ID:                id,
		Group:             group,
		CapabilityScore:   scores[0],
		DeliveryScore:     scores[1],
		CompositeScore:    scores[2],
		BestFor:           texts[0],
		FitTeam:           texts[1],
		BudgetTier:        texts[2],
		RolloutDifficulty: texts[3],
		AvoidWhen:         texts[4],
	}, nil
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
