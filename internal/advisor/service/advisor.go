// Package service composes the agents and the repository into the advisor's
// chat, feed and dashboard operations.
package service

import (
	"context"
	"strings"
	"time"

	"ai-advisor/internal/advisor/agents"
	"ai-advisor/internal/advisor/normalize"
	"ai-advisor/internal/advisor/repository"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/common/observability"
	"ai-advisor/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultChatTitle       = "AI顾问会话"
	DefaultIndustry        = "其他"
	SolutionSummary        = "基于你的业务场景，我为你生成了可落地方案。"
	EventSolutionGenerated = "solution.generated"
)

type DemandAnalyzer interface {
	Analyze(ctx context.Context, userInput string) (models.DemandAnalysis, error)
}

type SolutionBuilder interface {
	Build(ctx context.Context, in agents.BuildInput) ([]models.Solution, error)
}

// EventPublisher delivers domain events, e.g. to an SNS topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload interface{}) error
}

type ChatInput struct {
	Message           string `json:"message"`
	ConversationID    string `json:"conversation_id,omitempty"`
	ConversationTitle string `json:"conversation_title,omitempty"`
}

// SolutionEvent is published after solutions are persisted.
type SolutionEvent struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	SolutionCount  int       `json:"solution_count"`
	Industry       string    `json:"industry"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// AdvisorService runs one chat turn: demand analysis, then either a
// follow-up question or a set of solutions.
type AdvisorService struct {
	repo      repository.Repository
	demand    DemandAnalyzer
	solution  SolutionBuilder
	publisher EventPublisher
	obs       *observability.Observability
	logger    logger.Logger
}

type AdvisorOption func(*AdvisorService)

func WithPublisher(p EventPublisher) AdvisorOption {
	return func(s *AdvisorService) { s.publisher = p }
}

func WithObservability(o *observability.Observability) AdvisorOption {
	return func(s *AdvisorService) { s.obs = o }
}

func NewAdvisorService(repo repository.Repository, demand DemandAnalyzer, solution SolutionBuilder, log logger.Logger, opts ...AdvisorOption) *AdvisorService {
	s := &AdvisorService{
		repo:     repo,
		demand:   demand,
		solution: solution,
		logger:   log.WithFields(map[string]interface{}{"component": "advisor-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage persists the user message before any agent call. A failed
// agent call leaves no assistant message behind.
func (s *AdvisorService) HandleMessage(ctx context.Context, in ChatInput) (result models.ChatResult, err error) {
	ctx, span := observability.StartSpan(ctx, "advisor.handle_message")
	defer func() {
		turn := result.Type
		if err != nil {
			turn = "error"
		}
		metrics.ChatTurns.WithLabelValues(turn).Inc()
		s.obs.RecordTurn(ctx, turn)
		observability.EndSpan(span, err)
	}()

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return models.ChatResult{}, apperrors.NewValidationError("message is required")
	}

	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		title := strings.TrimSpace(in.ConversationTitle)
		if title == "" {
			title = DefaultChatTitle
		}
		conv, err := s.repo.AppendConversation(ctx, title)
		if err != nil {
			return models.ChatResult{}, err
		}
		conversationID = conv.ID
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))
	log := s.logger.WithFields(map[string]interface{}{"conversationId": conversationID})

	if err := s.repo.PersistMessage(ctx, models.Message{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        message,
		AgentType:      models.AgentDemand,
	}); err != nil {
		return models.ChatResult{}, err
	}

	analysis, err := s.demand.Analyze(ctx, message)
	if err != nil {
		log.Warn("demand analysis failed", map[string]interface{}{"error": err})
		return models.ChatResult{}, err
	}

	if analysis.NeedFollowUp {
		if err := s.repo.PersistMessage(ctx, models.Message{
			ConversationID: conversationID,
			Role:           models.RoleAssistant,
			Content:        analysis.FollowUpQuestion,
			AgentType:      models.AgentDemand,
		}); err != nil {
			return models.ChatResult{}, err
		}
		log.Info("follow up requested", nil)
		return models.ChatResult{
			Type:           models.ChatResultFollowUp,
			Content:        analysis.FollowUpQuestion,
			ConversationID: conversationID,
		}, nil
	}

	demand := models.StructuredDemand{}
	if analysis.Demand != nil {
		demand = *analysis.Demand
	}
	industry := ResolveIndustry(demand.Industry)

	solutions, err := s.solution.Build(ctx, agents.BuildInput{
		RawUserInput: message,
		Industry:     industry,
		PainPoints:   demand.PainPoints,
		Goals:        demand.Goals,
	})
	if err != nil {
		log.Warn("solution build failed", map[string]interface{}{"error": err})
		return models.ChatResult{}, err
	}

	if err := s.repo.PersistMessage(ctx, models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        SolutionSummary,
		AgentType:      models.AgentSolution,
	}); err != nil {
		return models.ChatResult{}, err
	}

	title := ""
	if len(solutions) > 0 {
		title = solutions[0].Title
	}
	if err := s.repo.PersistSolution(ctx, models.SolutionRecord{
		ConversationID: conversationID,
		Title:          title,
		Content:        solutions,
	}); err != nil {
		return models.ChatResult{}, err
	}

	s.publish(ctx, log, SolutionEvent{
		ConversationID: conversationID,
		Title:          title,
		SolutionCount:  len(solutions),
		Industry:       industry,
		GeneratedAt:    time.Now().UTC(),
	})

	log.Info("solutions generated", map[string]interface{}{"count": len(solutions)})
	return models.ChatResult{
		Type:           models.ChatResultSolution,
		Content:        solutions,
		ConversationID: conversationID,
	}, nil
}

func (s *AdvisorService) publish(ctx context.Context, log logger.Logger, event SolutionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, EventSolutionGenerated, event); err != nil {
		log.Warn("solution event not published", map[string]interface{}{"error": err})
	}
}

// ResolveIndustry maps an empty or unresolved industry onto DefaultIndustry.
func ResolveIndustry(industry string) string {
	if industry == "" || industry == normalize.Unspecified {
		return DefaultIndustry
	}
	return industry
}
