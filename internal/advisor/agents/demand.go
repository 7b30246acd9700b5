// Package agents holds the LLM backed demand, solution and ranking agents.
package agents

import (
	"context"

	"ai-advisor/internal/advisor/ark"
	"ai-advisor/internal/advisor/normalize"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const (
	demandTemperature  = 0.2
	demandSystemPrompt = "你是企业AI顾问的需求理解Agent。严格返回JSON对象，字段必须包含 need_follow_up, follow_up_question, demand(industry, scale, pain_points, goals)。不要返回额外说明。" +
		"优先基于已有信息给出可执行的初步方案；只有在行业、痛点、目标等关键信息完全缺失时，need_follow_up 才为 true。"
)

// DemandAgent turns a free text business description into a DemandAnalysis.
type DemandAgent struct {
	client ark.ChatCompleter
	model  string
	logger logger.Logger
}

func NewDemandAgent(client ark.ChatCompleter, model string, log logger.Logger) *DemandAgent {
	return &DemandAgent{
		client: client,
		model:  model,
		logger: log.WithFields(map[string]interface{}{"agent": models.AgentDemand}),
	}
}

// Analyze never falls back to rules: an unconfigured client or an
// unusable payload is an error for this turn.
func (a *DemandAgent) Analyze(ctx context.Context, userInput string) (models.DemandAnalysis, error) {
	if !ark.Available(a.client) || a.model == "" {
		return models.DemandAnalysis{}, apperrors.NewConfigurationError("demand agent has no LLM client")
	}

	payload, err := ark.RequestStructuredJSON(ctx, a.client, a.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: demandSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "用户输入：" + userInput},
	}, demandTemperature)
	if err != nil {
		return models.DemandAnalysis{}, err
	}

	res := normalize.NormalizeDemand(payload)
	if !res.OK {
		metrics.NormalizationFailures.WithLabelValues("demand").Inc()
		a.logger.Warn("demand payload rejected", map[string]interface{}{"reason": res.Reason})
		return models.DemandAnalysis{}, apperrors.NewNormalizationError(res.Reason)
	}

	if res.Value.NeedFollowUp {
		a.logger.Info("demand needs follow up", nil)
	} else {
		a.logger.Info("demand analyzed", map[string]interface{}{
			"industry":   res.Value.Demand.Industry,
			"painPoints": len(res.Value.Demand.PainPoints),
			"goals":      len(res.Value.Demand.Goals),
		})
	}
	return res.Value, nil
}
