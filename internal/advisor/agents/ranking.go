// internal/advisor/agents/ranking.go
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-advisor/internal/advisor/ark"
	"ai-advisor/internal/advisor/normalize"
	"ai-advisor/internal/advisor/recommend"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const (
	rankingTemperature  = 0.2
	rankingSystemPrompt = "你是企业AI顾问的模型选型Agent。严格返回JSON对象，字段必须为 models 数组，每项包含 id, group, capability_score, delivery_score, composite_score, best_for, fit_team, budget_tier, rollout_difficulty, avoid_when。" +
		"group 只能是 featured 或 practical；三个分数为0到100的整数；必须覆盖全部候选模型且每个 id 只出现一次。不要输出额外文本。"
)

// RankingAgent groups and annotates heuristically ranked models.
type RankingAgent struct {
	client ark.ChatCompleter
	model  string
	logger logger.Logger
}

func NewRankingAgent(client ark.ChatCompleter, model string, log logger.Logger) *RankingAgent {
	return &RankingAgent{
		client: client,
		model:  model,
		logger: log.WithFields(map[string]interface{}{"agent": "ranking"}),
	}
}

type rankingCandidate struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Provider          string   `json:"provider"`
	Description       string   `json:"description"`
	BusinessScenarios []string `json:"business_scenarios"`
	CostInput         *float64 `json:"cost_input"`
	CostOutput        *float64 `json:"cost_output"`
	HeuristicScore    int      `json:"heuristic_score"`
}

// Rank returns one annotation per candidate, or an error. Partial rankings
// are never returned.
func (a *RankingAgent) Rank(ctx context.Context, profile recommend.FeedProfile, ranked []models.RankedModel) ([]models.ModelRanking, error) {
	if !ark.Available(a.client) || a.model == "" {
		return nil, apperrors.NewConfigurationError("ranking agent has no LLM client")
	}
	if len(ranked) == 0 {
		return []models.ModelRanking{}, nil
	}

	known := make(map[string]models.CandidateModel, len(ranked))
	candidates := make([]rankingCandidate, 0, len(ranked))
	for _, m := range ranked {
		known[m.ID] = m.CandidateModel
		candidates = append(candidates, rankingCandidate{
			ID:                m.ID,
			Name:              m.Name,
			Provider:          m.Provider,
			Description:       m.Description,
			BusinessScenarios: m.BusinessScenarios,
			CostInput:         m.CostInput,
			CostOutput:        m.CostOutput,
			HeuristicScore:    m.Score,
		})
	}
	candidateJSON, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("encode ranking candidates: %w", err)
	}

	user := fmt.Sprintf("企业画像：行业=%s；规模=%s；偏好场景=%s\n候选模型：%s",
		profile.CompanyIndustry, profile.CompanyScale,
		strings.Join(recommend.DerivePreferredScenarios(profile), "、"), candidateJSON)

	payload, err := ark.RequestStructuredJSON(ctx, a.client, a.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: rankingSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}, rankingTemperature)
	if err != nil {
		return nil, err
	}

	out, err := normalize.NormalizeModelRanking(payload, known)
	if err != nil {
		metrics.NormalizationFailures.WithLabelValues("ranking").Inc()
		return nil, apperrors.NewNormalizationError(err.Error())
	}

	a.logger.Info("models ranked", map[string]interface{}{"count": len(out)})
	return out, nil
}
