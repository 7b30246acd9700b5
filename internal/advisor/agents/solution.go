// internal/advisor/agents/solution.go
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-advisor/internal/advisor/ark"
	"ai-advisor/internal/advisor/normalize"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const (
	solutionTemperature  = 0.3
	repairTemperature    = 0.2
	solutionSystemPrompt = "你是企业AI顾问的方案设计Agent。严格返回JSON对象，字段必须为 solutions 数组，每项包含 title, architecture, estimated_monthly_cost, roi_hypothesis, risks。不要输出额外文本。"
	repairSystemPrompt   = "你是JSON修复助手。只输出JSON对象，字段必须为 solutions 数组，每项必须包含 title, architecture, estimated_monthly_cost, roi_hypothesis, risks。"
)

type BuildInput struct {
	RawUserInput string
	Industry     string
	PainPoints   []string
	Goals        []string
}

// SolutionAgent designs up to three solutions for a structured demand.
type SolutionAgent struct {
	client ark.ChatCompleter
	model  string
	logger logger.Logger
}

func NewSolutionAgent(client ark.ChatCompleter, model string, log logger.Logger) *SolutionAgent {
	return &SolutionAgent{
		client: client,
		model:  model,
		logger: log.WithFields(map[string]interface{}{"agent": models.AgentSolution}),
	}
}

// Build makes one design call and, if its payload does not normalize, one
// repair call that reshapes the payload. There is no further fallback.
func (a *SolutionAgent) Build(ctx context.Context, in BuildInput) ([]models.Solution, error) {
	if !ark.Available(a.client) || a.model == "" {
		return nil, apperrors.NewConfigurationError("solution agent has no LLM client")
	}

	payload, err := ark.RequestStructuredJSON(ctx, a.client, a.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: solutionSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: solutionUserPrompt(in)},
	}, solutionTemperature)
	if err != nil {
		return nil, err
	}

	res := normalize.NormalizeSolutions(payload)
	if res.OK {
		a.logger.Info("solutions built", map[string]interface{}{"count": len(res.Value)})
		return res.Value, nil
	}

	metrics.NormalizationFailures.WithLabelValues("solution").Inc()
	a.logger.Warn("solution payload rejected, requesting repair", map[string]interface{}{"reason": res.Reason})

	previous, err := json.Marshal(payload)
	if err != nil {
		previous = []byte("null")
	}
	repaired, err := ark.RequestStructuredJSON(ctx, a.client, a.model, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: repairSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("请把下列对象修正为指定结构，不要解释：%s\n补充上下文：%s", previous, in.RawUserInput)},
	}, repairTemperature)
	if err != nil {
		return nil, err
	}

	res = normalize.NormalizeSolutions(repaired)
	if !res.OK {
		metrics.NormalizationFailures.WithLabelValues("solution_repair").Inc()
		return nil, apperrors.NewNormalizationError("invalid solution payload: " + res.Reason)
	}

	a.logger.Info("solutions built after repair", map[string]interface{}{"count": len(res.Value)})
	return res.Value, nil
}

func solutionUserPrompt(in BuildInput) string {
	return fmt.Sprintf("用户原始需求：%s\n结构化信息：行业=%s；痛点=%s；目标=%s",
		in.RawUserInput, in.Industry, strings.Join(in.PainPoints, "、"), strings.Join(in.Goals, "、"))
}
