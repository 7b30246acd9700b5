// internal/advisor/service/feed.go
package service

import (
	"context"
	"strconv"
	"time"

	"ai-advisor/internal/advisor/recommend"
	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/common/metrics"
	"ai-advisor/internal/common/observability"
	"ai-advisor/internal/models"

	"golang.org/x/sync/errgroup"
)

// DefaultExplicitScenarios lead every feed profile's preferences.
var DefaultExplicitScenarios = []string{"决策辅助", "自动化工作流", "知识问答"}

const DefaultTopN = 8

type ModelRanker interface {
	Rank(ctx context.Context, profile recommend.FeedProfile, ranked []models.RankedModel) ([]models.ModelRanking, error)
}

type FeedOptions struct {
	FetchLimit     int
	TopN           int
	RankingTimeout time.Duration
}

// FeedService builds the personalised model and article feed.
type FeedService struct {
	repo   repository.Repository
	ranker ModelRanker
	opts   FeedOptions
	logger logger.Logger
}

// NewFeedService takes an optional ranker; nil serves the heuristic feed only.
func NewFeedService(repo repository.Repository, ranker ModelRanker, opts FeedOptions, log logger.Logger) *FeedService {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = repository.DefaultFetchLimit
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	return &FeedService{
		repo:   repo,
		ranker: ranker,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "feed-service"}),
	}
}

func (s *FeedService) GetFeed(ctx context.Context, profile models.UserProfile) (models.Feed, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "advisor.get_feed")

	var (
		candidates []models.CandidateModel
		articles   []models.CandidateArticle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.repo.ListModels(gctx, s.opts.FetchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = s.repo.ListArticles(gctx, s.opts.FetchLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.EndSpan(span, err)
		return models.Feed{}, err
	}

	fp := recommend.ProfileFrom(profile, DefaultExplicitScenarios...)
	ranked := recommend.RankModels(candidates, fp)
	ranked = ranked[:min(len(ranked), s.opts.TopN)]
	rankedArticles := recommend.RankArticles(articles, fp)
	rankedArticles = rankedArticles[:min(len(rankedArticles), s.opts.TopN)]

	feedModels := make([]models.FeedModel, len(ranked))
	for i, m := range ranked {
		feedModels[i] = models.FeedModel{RankedModel: m}
	}
	annotated := s.annotate(ctx, fp, ranked, feedModels)

	metrics.FeedDuration.WithLabelValues(strconv.FormatBool(annotated)).Observe(time.Since(start).Seconds())
	observability.EndSpan(span, nil)

	return models.Feed{
		Query: models.FeedQuery{
			Industry: profile.CompanyIndustry,
			Scale:    profile.CompanyScale,
			Limit:    s.opts.FetchLimit,
		},
		Models:   feedModels,
		Articles: rankedArticles,
	}, nil
}

// annotate attaches LLM rankings in place. Any ranking error leaves every
// model unannotated.
func (s *FeedService) annotate(ctx context.Context, fp recommend.FeedProfile, ranked []models.RankedModel, out []models.FeedModel) bool {
	if s.ranker == nil || len(ranked) == 0 {
		return false
	}
	if s.opts.RankingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RankingTimeout)
		defer cancel()
	}

	rankings, err := s.ranker.Rank(ctx, fp, ranked)
	if err != nil {
		s.logger.Warn("model ranking skipped", map[string]interface{}{"error": err})
		return false
	}

	byID := make(map[string]models.ModelRanking, len(rankings))
	for _, r := range rankings {
		byID[r.ID] = r
	}
	for i := range out {
		if r, found := byID[out[i].ID]; found {
			out[i].Ranking = &r
		}
	}
	return true
}
