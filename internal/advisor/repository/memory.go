// internal/advisor/repository/memory.go
package repository

import (
	"context"
	"slices"
	"sync"

	"ai-advisor/internal/models"

	"github.com/google/uuid"
)

// Seed is the initial content of a MemoryRepository.
type Seed struct {
	Profile       models.UserProfile
	Models        []models.ModelDetail
	Articles      []models.ArticleDetail
	Favorites     models.Favorites
	Conversations []models.Conversation
}

// DemoSeed is the catalog served when no database is configured.
func DemoSeed(email string) Seed {
	return Seed{
		Profile: models.DefaultProfile(email),
		Models: []models.ModelDetail{
			{CandidateModel: models.CandidateModel{
				ID: "m-ark-1", Name: "Ark Enterprise Chat", Provider: "ByteDance Ark",
				Description:       "面向企业问答、分析与流程自动化的通用模型。",
				BusinessScenarios: []string{"决策辅助", "知识问答", "自动化工作流"},
				CostInput:         models.Float(3.2), CostOutput: models.Float(9.8),
			}},
			{CandidateModel: models.CandidateModel{
				ID: "m-vision-1", Name: "Vision Analyst", Provider: "OpenRouter",
				Description:       "图文多模态识别与报表摘要。",
				BusinessScenarios: []string{"数据分析", "多模态"},
				CostInput:         models.Float(4.8), CostOutput: models.Float(12.4),
			}},
			{CandidateModel: models.CandidateModel{
				ID: "m-code-1", Name: "Code Copilot Pro", Provider: "LiteLLM",
				Description:       "代码生成、审查与异常定位。",
				BusinessScenarios: []string{"代码辅助", "自动化工作流"},
				CostInput:         models.Float(2.9), CostOutput: models.Float(8.3),
			}},
		},
		Articles: []models.ArticleDetail{
			{CandidateArticle: models.CandidateArticle{
				ID: "a-1", Title: "AI Agent 在企业运营中的 ROI 实战", Source: "InfoQ 中国",
				Summary: "围绕销售、客服、运营三个场景给出落地指标与成本模型。",
				Tags:    []string{"决策辅助", "自动化工作流"},
			}},
			{CandidateArticle: models.CandidateArticle{
				ID: "a-2", Title: "多模态模型如何优化质检效率", Source: "机器之心",
				Summary: "制造与零售行业使用图像+文本模型的质量控制案例。",
				Tags:    []string{"图像处理", "数据分析"},
			}},
			{CandidateArticle: models.CandidateArticle{
				ID: "a-3", Title: "企业私有知识库问答的架构清单", Source: "量子位",
				Summary: "从数据清洗到检索增强的完整实施路径。",
				Tags:    []string{"知识问答", "文档处理"},
			}},
		},
		Favorites: models.Favorites{ModelIDs: []string{"m-ark-1"}, ArticleIDs: []string{"a-1"}},
		Conversations: []models.Conversation{
			{ID: "c-1", Title: "销售转化提升方案", UpdatedAt: "今天 11:30"},
			{ID: "c-2", Title: "客服自动化降本", UpdatedAt: "昨天 18:12"},
		},
	}
}

// MemoryRepository keeps everything in process. Safe for concurrent use.
type MemoryRepository struct {
	mu            sync.RWMutex
	profile       models.UserProfile
	models        []models.ModelDetail
	articles      []models.ArticleDetail
	favorites     models.Favorites
	conversations []models.Conversation
	messages      []models.Message
	solutions     []models.SolutionRecord
}

func NewMemoryRepository(seed Seed) *MemoryRepository {
	return &MemoryRepository{
		profile:       seed.Profile,
		models:        slices.Clone(seed.Models),
		articles:      slices.Clone(seed.Articles),
		favorites:     cloneFavorites(seed.Favorites),
		conversations: slices.Clone(seed.Conversations),
	}
}

func (r *MemoryRepository) GetProfile(_ context.Context) (models.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profile, nil
}

func (r *MemoryRepository) UpsertProfile(_ context.Context, profile models.UserProfile) (models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.Email == "" {
		profile.Email = r.profile.Email
	}
	r.profile = profile
	return r.profile, nil
}

func (r *MemoryRepository) ListModels(_ context.Context, limit int) ([]models.CandidateModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.CandidateModel, 0, len(r.models))
	for _, m := range r.models {
		if len(out) == normalizeLimit(limit) {
			break
		}
		out = append(out, m.CandidateModel)
	}
	return out, nil
}

func (r *MemoryRepository) ListArticles(_ context.Context, limit int) ([]models.CandidateArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.CandidateArticle, 0, len(r.articles))
	for _, a := range r.articles {
		if len(out) == normalizeLimit(limit) {
			break
		}
		out = append(out, a.CandidateArticle)
	}
	return out, nil
}

func (r *MemoryRepository) GetModelByID(_ context.Context, id string) (*models.ModelDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.models {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetArticleByID(_ context.Context, id string) (*models.ArticleDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.articles {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetFavorites(_ context.Context) (models.Favorites, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneFavorites(r.favorites), nil
}

func (r *MemoryRepository) AddFavorite(_ context.Context, target models.FavoriteTarget) (models.Favorites, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if target.ModelID != "" && !slices.Contains(r.favorites.ModelIDs, target.ModelID) {
		r.favorites.ModelIDs = append(r.favorites.ModelIDs, target.ModelID)
	}
	if target.ArticleID != "" && !slices.Contains(r.favorites.ArticleIDs, target.ArticleID) {
		r.favorites.ArticleIDs = append(r.favorites.ArticleIDs, target.ArticleID)
	}
	return cloneFavorites(r.favorites), nil
}

func (r *MemoryRepository) RemoveFavorite(_ context.Context, target models.FavoriteTarget) (models.Favorites, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if target.ModelID != "" {
		r.favorites.ModelIDs = slices.DeleteFunc(r.favorites.ModelIDs, func(id string) bool { return id == target.ModelID })
	}
	if target.ArticleID != "" {
		r.favorites.ArticleIDs = slices.DeleteFunc(r.favorites.ArticleIDs, func(id string) bool { return id == target.ArticleID })
	}
	return cloneFavorites(r.favorites), nil
}

func (r *MemoryRepository) GetConversations(_ context.Context) ([]models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := min(len(r.conversations), ConversationLimit)
	return slices.Clone(r.conversations[:n]), nil
}

// AppendConversation puts the new conversation first, as the most recent.
func (r *MemoryRepository) AppendConversation(_ context.Context, title string) (models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv := models.Conversation{
		ID:        uuid.NewString(),
		Title:     orDefault(title, DefaultConversationTitle),
		UpdatedAt: "刚刚",
	}
	r.conversations = slices.Insert(r.conversations, 0, conv)
	return conv, nil
}

func (r *MemoryRepository) PersistMessage(_ context.Context, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *MemoryRepository) PersistSolution(_ context.Context, record models.SolutionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Content = slices.Clone(record.Content)
	r.solutions = append(r.solutions, record)
	return nil
}

// Messages returns the persisted messages in write order.
func (r *MemoryRepository) Messages() []models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.messages)
}

// Solutions returns the persisted solution records in write order.
func (r *MemoryRepository) Solutions() []models.SolutionRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.solutions)
}

func cloneFavorites(f models.Favorites) models.Favorites {
	out := models.Favorites{
		ModelIDs:   slices.Clone(f.ModelIDs),
		ArticleIDs: slices.Clone(f.ArticleIDs),
	}
	if out.ModelIDs == nil {
		out.ModelIDs = []string{}
	}
	if out.ArticleIDs == nil {
		out.ArticleIDs = []string{}
	}
	return out
}
