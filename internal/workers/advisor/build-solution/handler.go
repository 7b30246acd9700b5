// internal/workers/advisor/build-solution/handler.go
package buildsolution

import (
	"context"
	"encoding/json"
	"strings"

	"ai-advisor/internal/advisor/agents"
	"ai-advisor/internal/advisor/service"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/validation"
	"ai-advisor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "advisor-build-solution"
)

type Builder interface {
	Build(ctx context.Context, in agents.BuildInput) ([]models.Solution, error)
}

type Handler struct {
	config  *Config
	builder Builder
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, builder Builder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		builder: builder,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}

	return h.completeJob(client, job, output)
}

func parseInput(job entities.Job) (*Input, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &vars); err != nil {
		return nil, apperrors.NewValidationError("job variables are not a JSON object")
	}
	if result := validation.BuildSolutionJob.ValidateValue(vars); !result.Valid {
		return nil, apperrors.NewValidationError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewValidationError("parse input: " + err.Error())
	}
	return &input, nil
}

// Execute designs solutions for an already analysed demand. An unresolved
// industry is sent to the agent as the default industry.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required")
	}
	industry := service.ResolveIndustry(input.Demand.Industry)

	solutions, err := h.builder.Build(ctx, agents.BuildInput{
		RawUserInput: message,
		Industry:     industry,
		PainPoints:   input.Demand.PainPoints,
		Goals:        input.Demand.Goals,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("solutions built", map[string]interface{}{
		"industry": industry,
		"count":    len(solutions),
	})
	return &Output{Solutions: solutions, Industry: industry}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}
