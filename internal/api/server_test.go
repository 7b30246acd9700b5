package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/advisor/service"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	result models.ChatResult
	err    error
	got    []service.ChatInput
}

func (f *fakeChat) HandleMessage(_ context.Context, in service.ChatInput) (models.ChatResult, error) {
	f.got = append(f.got, in)
	return f.result, f.err
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, text, html string) (string, error) {
	args := m.Called(ctx, to, subject, text, html)
	return args.String(0), args.Error(1)
}

type testServer struct {
	handler http.Handler
	repo    *repository.MemoryRepository
	chat    *fakeChat
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	log := logger.NewTestLogger(t)
	repo := repository.NewMemoryRepository(repository.DemoSeed("demo@company.com"))
	feed := service.NewFeedService(repo, nil, service.FeedOptions{}, log)
	chat := &fakeChat{}
	srv := NewServer(Config{}, repo, chat, feed, service.NewDashboard(repo, feed), log, opts...)
	return &testServer{handler: srv.Handler(), repo: repo, chat: chat}
}

func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ==========================
// Health & middleware
// ==========================

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_IsPropagated(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestReady(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		ts := newTestServer(t, WithReadinessCheck("postgres", func(context.Context) error { return nil }))
		rec := ts.do(http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing check", func(t *testing.T) {
		ts := newTestServer(t, WithReadinessCheck("redis", func(context.Context) error { return errors.New("dial tcp: refused") }))
		rec := ts.do(http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "dial tcp: refused", body["failed"].(map[string]interface{})["redis"])
	})
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPut, "/api/profile", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==========================
// Advisor chat
// ==========================

func TestChat(t *testing.T) {
	ts := newTestServer(t)
	ts.chat.result = models.ChatResult{Type: models.ChatResultFollowUp, Content: "请补充行业", ConversationID: "c-9"}

	rec := ts.do(http.MethodPost, "/api/advisor/chat", `{"message":"我们想降本","conversation_title":"降本"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "follow_up", body["type"])
	assert.Equal(t, "c-9", body["conversation_id"])
	require.Len(t, ts.chat.got, 1)
	assert.Equal(t, "降本", ts.chat.got[0].ConversationTitle)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		retryable  bool
	}{
		{"missing message", `{}`, nil, http.StatusBadRequest, "VALIDATION_FAILED", false},
		{"blank message", `{"message":"   "}`, nil, http.StatusBadRequest, "VALIDATION_FAILED", false},
		{"not json", `{"message":`, nil, http.StatusBadRequest, "VALIDATION_FAILED", false},
		{"not configured", `{"message":"hi"}`, apperrors.NewConfigurationError("ARK_API_KEY"), http.StatusServiceUnavailable, "CONFIGURATION_ERROR", false},
		{"upstream parse", `{"message":"hi"}`, apperrors.NewUpstreamParseError(errors.New("bad json")), http.StatusBadGateway, "UPSTREAM_PARSE_ERROR", true},
		{"normalization", `{"message":"hi"}`, apperrors.NewNormalizationError("invalid solution payload"), http.StatusBadGateway, "NORMALIZATION_FAILED", false},
		{"plain error", `{"message":"hi"}`, errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.chat.err = tt.err

			rec := ts.do(http.MethodPost, "/api/advisor/chat", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["error"])
			if tt.retryable {
				assert.Equal(t, true, body["retryable"])
			} else {
				assert.Nil(t, body["retryable"])
			}
		})
	}
}

// ==========================
// Feed & dashboard
// ==========================

func TestFeed(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/feed", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var feed models.Feed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	require.Len(t, feed.Models, 3)
	assert.Equal(t, "m-ark-1", feed.Models[0].ID)
	assert.Equal(t, "a-1", feed.Articles[0].ID)
	assert.Equal(t, models.DefaultCompanyIndustry, feed.Query.Industry)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data models.DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, "demo@company.com", data.Profile.Email)
	assert.Len(t, data.Conversations, 2)
	assert.Equal(t, []string{"m-ark-1"}, data.Favorites.ModelIDs)
}

// ==========================
// Favorites
// ==========================

func TestFavorites(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/favorites", `{"model_id":"m-code-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var added okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.True(t, added.OK)
	assert.Equal(t, []string{"m-ark-1", "m-code-1"}, added.Favorites.ModelIDs)

	rec = ts.do(http.MethodDelete, "/api/favorites", `{"article_id":"a-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var removed okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
	assert.Empty(t, removed.Favorites.ArticleIDs)

	rec = ts.do(http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var favorites models.Favorites
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favorites))
	assert.Equal(t, []string{"m-ark-1", "m-code-1"}, favorites.ModelIDs)
}

func TestFavorites_RequireExactlyOneTarget(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
	}{
		{"none", http.MethodPost, `{}`},
		{"both", http.MethodPost, `{"model_id":"m-1","article_id":"a-1"}`},
		{"blank", http.MethodPost, `{"model_id":"  "}`},
		{"remove none", http.MethodDelete, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(tt.method, "/api/favorites", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// ==========================
// Profile & conversations
// ==========================

func TestProfile(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/profile", `{"company_name":"Acme","company_industry":"制造业","company_scale":"初创（<20人）"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "制造业", body["profile"].(map[string]interface{})["company_industry"])

	rec = ts.do(http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", decode(t, rec)["company_name"])
}

func TestProfile_RequiresIndustryAndScale(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing industry", `{"company_scale":"小型（20-100人）"}`},
		{"missing scale", `{"company_industry":"制造业"}`},
		{"blank industry", `{"company_industry":"","company_scale":"小型（20-100人）"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(http.MethodPost, "/api/profile", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestConversations(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/conversations", `{"title":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, DefaultConversationTitle, created.Conversation.Title)

	rec = ts.do(http.MethodPost, "/api/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Conversations, 4)
	assert.Equal(t, "c-1", list.Conversations[2].ID)
}

// ==========================
// Catalog
// ==========================

func TestCatalogDetail(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantError  string
	}{
		{"model", "/api/models/m-ark-1", http.StatusOK, ""},
		{"article", "/api/articles/a-3", http.StatusOK, ""},
		{"blank model id", "/api/models/%20", http.StatusBadRequest, "model id is required"},
		{"missing model", "/api/models/nope", http.StatusNotFound, "Model not found"},
		{"missing article", "/api/articles/nope", http.StatusNotFound, "Article not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := ts.do(http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode(t, rec)["error"])
			}
		})
	}
}

// ==========================
// Export & cost
// ==========================

func TestExport_Markdown(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/solutions/export", `{"title":"客服助手","estimated_monthly_cost":300,"risks":["幻觉"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=solution.md", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "# 客服助手\n\n## 月度成本估算\n300 CNY / 月\n\n## 风险提示\n- 幻觉", rec.Body.String())
}

func TestExport_HTML(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/solutions/export?format=html", `{"risks":["<script>x</script>"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "未命名方案")
	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestExport_Email(t *testing.T) {
	t.Run("sends markdown and html", func(t *testing.T) {
		mailer := new(mockMailer)
		mailer.On("SendEmail", mock.Anything, "cto@acme.com", "AI方案导出：方案A",
			mock.MatchedBy(func(text string) bool { return strings.HasPrefix(text, "# 方案A") }),
			mock.MatchedBy(func(html string) bool { return strings.Contains(html, "<h1") }),
		).Return("msg-1", nil)
		ts := newTestServer(t, WithMailer(mailer))

		rec := ts.do(http.MethodPost, "/api/solutions/export", `{"title":"方案A","email":"cto@acme.com"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		mailer.AssertExpectations(t)
	})

	t.Run("mailer disabled", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(http.MethodPost, "/api/solutions/export", `{"email":"cto@acme.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid address", func(t *testing.T) {
		ts := newTestServer(t, WithMailer(new(mockMailer)))
		rec := ts.do(http.MethodPost, "/api/solutions/export", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delivery failure", func(t *testing.T) {
		mailer := new(mockMailer)
		mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", apperrors.NewNotificationSendFailedError("ses", errors.New("throttled")))
		ts := newTestServer(t, WithMailer(mailer))

		rec := ts.do(http.MethodPost, "/api/solutions/export", `{"email":"cto@acme.com"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "NOTIFICATION_SEND_FAILED", decode(t, rec)["code"])
	})
}

func TestCostEstimate(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/cost/estimate", `{"requests":1000,"avg_tokens":1000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12.0, decode(t, rec)["estimated_monthly_cost"])

	rec = ts.do(http.MethodPost, "/api/cost/estimate", `{"requests":-1,"avg_tokens":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
