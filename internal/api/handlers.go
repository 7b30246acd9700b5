// internal/api/handlers.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ai-advisor/internal/advisor/export"
	"ai-advisor/internal/advisor/service"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/validation"
	"ai-advisor/internal/models"
)

const DefaultConversationTitle = "新对话"

type okResponse struct {
	OK           bool                 `json:"ok"`
	Favorites    *models.Favorites    `json:"favorites,omitempty"`
	Profile      *models.UserProfile  `json:"profile,omitempty"`
	Conversation *models.Conversation `json:"conversation,omitempty"`
}

// ==========================
// Health
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ==========================
// Advisor
// ==========================

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in service.ChatInput
	if err := decodeBody(r, validation.ChatRequest, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.chat.HandleMessage(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	profile, err := s.repo.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	feed, err := s.feed.GetFeed(r.Context(), profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := s.dashboard.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ==========================
// Favorites
// ==========================

func (s *Server) handleGetFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.repo.GetFavorites(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, s.repo.AddFavorite)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, s.repo.RemoveFavorite)
}

func (s *Server) changeFavorite(w http.ResponseWriter, r *http.Request, apply func(context.Context, models.FavoriteTarget) (models.Favorites, error)) {
	var target models.FavoriteTarget
	if err := decodeBody(r, validation.FavoriteRequest, &target); err != nil {
		s.writeError(w, r, err)
		return
	}
	target.ModelID = strings.TrimSpace(target.ModelID)
	target.ArticleID = strings.TrimSpace(target.ArticleID)
	if !target.Valid() {
		s.writeError(w, r, apperrors.NewValidationError("exactly one of model_id or article_id is required"))
		return
	}

	favorites, err := apply(r.Context(), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Favorites: &favorites})
}

// ==========================
// Profile & conversations
// ==========================

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.repo.GetProfile(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var in models.UserProfile
	if err := decodeBody(r, validation.ProfileRequest, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	in.CompanyIndustry = strings.TrimSpace(in.CompanyIndustry)
	in.CompanyScale = strings.TrimSpace(in.CompanyScale)

	profile, err := s.repo.UpsertProfile(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Profile: &profile})
}

func (s *Server) handleGetConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.repo.GetConversations(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, validation.ConversationRequest, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultConversationTitle
	}

	conversation, err := s.repo.AppendConversation(r.Context(), title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true, Conversation: &conversation})
}

// ==========================
// Catalog
// ==========================

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		s.writeError(w, r, apperrors.NewValidationError("model id is required"))
		return
	}
	model, err := s.repo.GetModelByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if model == nil {
		s.writeError(w, r, apperrors.NewResourceNotFoundError("Model", id))
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		s.writeError(w, r, apperrors.NewValidationError("article id is required"))
		return
	}
	article, err := s.repo.GetArticleByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if article == nil {
		s.writeError(w, r, apperrors.NewResourceNotFoundError("Article", id))
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// ==========================
// Export & cost
// ==========================

type exportRequest struct {
	export.ExportInput
	Email string `json:"email"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var in exportRequest
	if err := decodeBody(r, validation.ExportRequest, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	md := export.RenderMarkdown(in.ExportInput)

	if email := strings.TrimSpace(in.Email); email != "" {
		if err := s.mailExport(r, email, in.Title, md); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=solution.html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(export.RenderHTML(md)))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=solution.md")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(md))
}

func (s *Server) mailExport(r *http.Request, to, title, md string) error {
	if s.mailer == nil {
		return apperrors.NewValidationError("email delivery is not enabled")
	}
	if !validation.ValidateEmail(to) {
		return apperrors.NewValidationError("email is not a valid address")
	}
	if strings.TrimSpace(title) == "" {
		title = export.DefaultTitle
	}

	messageID, err := s.mailer.SendEmail(r.Context(), to, "AI方案导出："+title, md, export.RenderHTML(md))
	if err != nil {
		return err
	}
	s.logger.Info("export mailed", map[string]interface{}{
		"requestId": requestIDFrom(r.Context()),
		"messageId": messageID,
	})
	return nil
}

func (s *Server) handleCostEstimate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Requests  float64 `json:"requests"`
		AvgTokens float64 `json:"avg_tokens"`
	}
	if err := decodeBody(r, validation.CostEstimateRequest, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"estimated_monthly_cost": export.EstimateMonthlyCost(in.Requests, in.AvgTokens),
	})
}
