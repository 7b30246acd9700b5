// Package app wires configuration into the advisor's repositories, agents
// and services. Both binaries build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"ai-advisor/internal/advisor/agents"
	"ai-advisor/internal/advisor/ark"
	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/advisor/service"
	"ai-advisor/internal/common/aws"
	"ai-advisor/internal/common/config"
	"ai-advisor/internal/common/database"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/observability"
)

type Options struct {
	// InMemory serves the demo catalog instead of connecting to Postgres.
	InMemory bool
	// ConnectRetries bounds the attempts per backing service.
	ConnectRetries int
	Observability  *observability.Observability
}

type App struct {
	Config    *config.Config
	Repo      repository.Repository
	LLM       *ark.Client
	Demand    *agents.DemandAgent
	Solution  *agents.SolutionAgent
	Ranking   *agents.RankingAgent
	Advisor   *service.AdvisorService
	Feed      *service.FeedService
	Dashboard *service.Dashboard
	// Mailer is nil unless SES delivery is enabled.
	Mailer *aws.SESClient
	Checks map[string]func(context.Context) error

	closers []func() error
	logger  logger.Logger
}

func Build(ctx context.Context, cfg *config.Config, opts Options, log logger.Logger) (*App, error) {
	if opts.ConnectRetries <= 0 {
		opts.ConnectRetries = 10
	}
	a := &App{
		Config: cfg,
		Checks: map[string]func(context.Context) error{},
		logger: log,
	}

	repo, err := a.buildRepository(ctx, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repo = repo

	a.LLM = ark.NewClient(ark.ConfigFrom(cfg.APIs.Ark), nil, log)
	if a.LLM == nil {
		log.Warn("ark api key missing, advisor turns will fail with a configuration error", nil)
	}
	model := a.LLM.Model()
	a.Demand = agents.NewDemandAgent(a.LLM, model, log)
	a.Solution = agents.NewSolutionAgent(a.LLM, model, log)

	var ranker service.ModelRanker
	if cfg.Feed.LLMRanking && a.LLM != nil {
		a.Ranking = agents.NewRankingAgent(a.LLM, model, log)
		ranker = a.Ranking
	}
	a.Feed = service.NewFeedService(repo, ranker, service.FeedOptions{
		FetchLimit:     cfg.Feed.FetchLimit,
		TopN:           cfg.Feed.TopN,
		RankingTimeout: config.GetDuration(cfg.Feed.RankingTimeout),
	}, log)
	a.Dashboard = service.NewDashboard(repo, a.Feed)

	advisorOpts := []service.AdvisorOption{service.WithObservability(opts.Observability)}
	if cfg.Notifications.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.SNS.TopicARN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("sns: %w", err)
		}
		advisorOpts = append(advisorOpts, service.WithPublisher(sns))
	}
	a.Advisor = service.NewAdvisorService(repo, a.Demand, a.Solution, log, advisorOpts...)

	if cfg.Notifications.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.SES.FromEmail)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("ses: %w", err)
		}
		a.Mailer = ses
	}

	return a, nil
}

// buildRepository layers Postgres, the optional Elasticsearch article index
// and the optional Redis cache, in that order.
func (a *App) buildRepository(ctx context.Context, opts Options) (repository.Repository, error) {
	cfg := a.Config
	if opts.InMemory {
		a.logger.Info("using in-memory demo repository", nil)
		return repository.NewMemoryRepository(repository.DemoSeed(cfg.App.DemoUserEmail)), nil
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pg.Close)
	if err := RetryWithBackoff(ctx, func() error { return pg.Ping(ctx) }, opts.ConnectRetries, 2*time.Second, a.logger, "PostgreSQL connection"); err != nil {
		return nil, err
	}
	a.Checks["postgres"] = pg.Ping
	a.logger.Info("PostgreSQL connected", nil)

	var repo repository.Repository = repository.NewPostgresRepository(pg.DB, cfg.App.DemoUserEmail, a.logger)

	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, err
		}
		if err := RetryWithBackoff(ctx, func() error { return es.Ping(ctx) }, opts.ConnectRetries, 2*time.Second, a.logger, "Elasticsearch connection"); err != nil {
			return nil, err
		}
		a.Checks["elasticsearch"] = es.Ping
		repo = repository.WithArticleSource(repo,
			repository.NewElasticsearchArticles(es.Client, cfg.Database.Elasticsearch.ArticleIndex, a.logger))
		a.logger.Info("Elasticsearch article index enabled", map[string]interface{}{
			"index": cfg.Database.Elasticsearch.ArticleIndex,
		})
	}

	if cfg.Database.Redis.Enabled() {
		rdb := database.NewRedis(cfg.Database.Redis)
		a.closers = append(a.closers, rdb.Close)
		if err := RetryWithBackoff(ctx, func() error { return rdb.Ping(ctx) }, opts.ConnectRetries, 2*time.Second, a.logger, "Redis connection"); err != nil {
			return nil, err
		}
		a.Checks["redis"] = rdb.Ping
		ttl := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
		repo = repository.NewCachedRepository(repo, rdb.Client, ttl, a.logger)
		a.logger.Info("Redis cache enabled", map[string]interface{}{"ttlSeconds": cfg.Database.Redis.CacheTTL})
	}

	return repo, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// RetryWithBackoff runs operation until it succeeds, doubling the delay
// after each failure.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s cancelled: %w", operationName, ctx.Err())
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
