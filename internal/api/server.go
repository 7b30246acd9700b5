// Package api exposes the advisor over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/advisor/service"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ChatHandler interface {
	HandleMessage(ctx context.Context, in service.ChatInput) (models.ChatResult, error)
}

type FeedProvider interface {
	GetFeed(ctx context.Context, profile models.UserProfile) (models.Feed, error)
}

type DashboardLoader interface {
	Load(ctx context.Context) (models.DashboardData, error)
}

// Mailer sends exported solutions, e.g. through SES.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, text, html string) (string, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Config struct {
	Address        string
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type Server struct {
	cfg       Config
	repo      repository.Repository
	chat      ChatHandler
	feed      FeedProvider
	dashboard DashboardLoader
	mailer    Mailer
	checks    map[string]ReadinessCheck
	logger    logger.Logger
	mux       *http.ServeMux
}

type Option func(*Server)

// WithMailer enables e-mail delivery on the export endpoint.
func WithMailer(m Mailer) Option {
	return func(s *Server) { s.mailer = m }
}

func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

func NewServer(cfg Config, repo repository.Repository, chat ChatHandler, feed FeedProvider, dashboard DashboardLoader, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		repo:      repo,
		chat:      chat,
		feed:      feed,
		dashboard: dashboard,
		checks:    map[string]ReadinessCheck{},
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
		mux:       http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /api/advisor/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/feed", s.handleFeed)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	s.mux.HandleFunc("GET /api/favorites", s.handleGetFavorites)
	s.mux.HandleFunc("POST /api/favorites", s.handleAddFavorite)
	s.mux.HandleFunc("DELETE /api/favorites", s.handleRemoveFavorite)

	s.mux.HandleFunc("GET /api/profile", s.handleGetProfile)
	s.mux.HandleFunc("POST /api/profile", s.handleUpsertProfile)

	s.mux.HandleFunc("GET /api/conversations", s.handleGetConversations)
	s.mux.HandleFunc("POST /api/conversations", s.handleCreateConversation)

	s.mux.HandleFunc("GET /api/models/{id}", s.handleGetModel)
	s.mux.HandleFunc("GET /api/articles/{id}", s.handleGetArticle)

	s.mux.HandleFunc("POST /api/solutions/export", s.handleExport)
	s.mux.HandleFunc("POST /api/cost/estimate", s.handleCostEstimate)
}

// Handler returns the mux wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, s.requestID, s.requestLogger, s.recoverer, s.timeout)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", map[string]interface{}{"address": s.cfg.Address})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.logger.Info("api shutting down", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
