// internal/advisor/service/dashboard.go
package service

import (
	"context"

	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/models"

	"golang.org/x/sync/errgroup"
)

// Dashboard gathers everything the home screen shows in one call.
type Dashboard struct {
	repo repository.Repository
	feed *FeedService
}

func NewDashboard(repo repository.Repository, feed *FeedService) *Dashboard {
	return &Dashboard{repo: repo, feed: feed}
}

func (d *Dashboard) Load(ctx context.Context) (models.DashboardData, error) {
	profile, err := d.repo.GetProfile(ctx)
	if err != nil {
		return models.DashboardData{}, err
	}

	var (
		feed          models.Feed
		conversations []models.Conversation
		favorites     models.Favorites
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feed, err = d.feed.GetFeed(gctx, profile)
		return err
	})
	g.Go(func() error {
		var err error
		conversations, err = d.repo.GetConversations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		favorites, err = d.repo.GetFavorites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardData{}, err
	}

	return models.DashboardData{
		Profile:       profile,
		Models:        feed.Models,
		Articles:      feed.Articles,
		Conversations: conversations,
		Favorites:     favorites,
	}, nil
}
