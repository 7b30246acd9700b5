// Package repository persists profiles, catalog entries, favorites and
// conversations for the advisor.
package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"ai-advisor/internal/models"
)

const (
	// DefaultFetchLimit bounds catalog reads for the feed.
	DefaultFetchLimit = 20
	// ConversationLimit is the number of recent conversations listed.
	ConversationLimit = 30

	DefaultConversationTitle = "未命名对话"
	UnknownModelName         = "Unknown Model"
	UnknownProvider          = "Unknown"
)

// Repository is the advisor's storage collaborator. Lookups by id return
// nil, nil when the row does not exist.
type Repository interface {
	GetProfile(ctx context.Context) (models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)

	ListModels(ctx context.Context, limit int) ([]models.CandidateModel, error)
	ListArticles(ctx context.Context, limit int) ([]models.CandidateArticle, error)
	GetModelByID(ctx context.Context, id string) (*models.ModelDetail, error)
	GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error)

	GetFavorites(ctx context.Context) (models.Favorites, error)
	AddFavorite(ctx context.Context, target models.FavoriteTarget) (models.Favorites, error)
	RemoveFavorite(ctx context.Context, target models.FavoriteTarget) (models.Favorites, error)

	GetConversations(ctx context.Context) ([]models.Conversation, error)
	AppendConversation(ctx context.Context, title string) (models.Conversation, error)
	PersistMessage(ctx context.Context, msg models.Message) error
	PersistSolution(ctx context.Context, record models.SolutionRecord) error
}

// ArticleSource serves articles from somewhere other than the main store.
type ArticleSource interface {
	ListArticles(ctx context.Context, limit int) ([]models.CandidateArticle, error)
	GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error)
}

type articleOverlay struct {
	Repository
	articles ArticleSource
}

// WithArticleSource serves article reads from src and everything else from repo.
func WithArticleSource(repo Repository, src ArticleSource) Repository {
	if src == nil {
		return repo
	}
	return &articleOverlay{Repository: repo, articles: src}
}

func (o *articleOverlay) ListArticles(ctx context.Context, limit int) ([]models.CandidateArticle, error) {
	return o.articles.ListArticles(ctx, limit)
}

func (o *articleOverlay) GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error) {
	return o.articles.GetArticleByID(ctx, id)
}

// stringArray maps a JSONB array column to a string slice. Non-string
// elements are dropped.
type stringArray []string

func (a *stringArray) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = stringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("stringArray: unsupported source %T", src)
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("stringArray: %w", err)
	}
	out := make(stringArray, 0, len(items))
	for _, item := range items {
		if s, isStr := item.(string); isStr {
			out = append(out, s)
		}
	}
	*a = out
	return nil
}

func (a stringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultFetchLimit
	}
	return limit
}

func withDefaults(p models.UserProfile, email string) models.UserProfile {
	p.Email = orDefault(p.Email, email)
	p.CompanyName = orDefault(p.CompanyName, models.DefaultCompanyName)
	p.CompanyIndustry = orDefault(p.CompanyIndustry, models.DefaultCompanyIndustry)
	p.CompanyScale = orDefault(p.CompanyScale, models.DefaultCompanyScale)
	return p
}
