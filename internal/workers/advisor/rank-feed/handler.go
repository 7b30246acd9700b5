// internal/workers/advisor/rank-feed/handler.go
package rankfeed

import (
	"context"
	"encoding/json"

	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/validation"
	"ai-advisor/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "advisor-rank-feed"
)

type FeedProvider interface {
	GetFeed(ctx context.Context, profile models.UserProfile) (models.Feed, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context) (models.UserProfile, error)
}

type Handler struct {
	config   *Config
	feed     FeedProvider
	profiles ProfileSource
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, feed FeedProvider, profiles ProfileSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		feed:     feed,
		profiles: profiles,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
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
	if result := validation.RankFeedJob.ValidateValue(vars); !result.Valid {
		return nil, apperrors.NewValidationError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewValidationError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var profile models.UserProfile
	if input.Profile != nil {
		profile = *input.Profile
	} else {
		stored, err := h.profiles.GetProfile(ctx)
		if err != nil {
			return nil, err
		}
		profile = stored
	}

	feed, err := h.feed.GetFeed(ctx, profile)
	if err != nil {
		return nil, err
	}

	h.logger.Info("feed ranked", map[string]interface{}{
		"industry": profile.CompanyIndustry,
		"models":   len(feed.Models),
		"articles": len(feed.Articles),
	})
	return &Output{Feed: feed}, nil
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
