package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-advisor/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newESServer(t *testing.T, handler http.HandlerFunc) *ElasticsearchArticles {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewElasticsearchArticles(client, "articles", logger.NewNoOpLogger())
}

func TestElasticsearchArticles_ListArticles(t *testing.T) {
	var gotBody map[string]interface{}
	src := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/_search", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":2},"hits":[
			{"_id":"a-10","_source":{"id":"a-10","title":"客服升级","summary":"","source":"InfoQ 中国","tags":["智能客服","知识问答","智能客服"]}},
			{"_id":"doc-2","_source":{"title":"企业知识库建设","summary":"","source":"量子位","tags":[]}}
		]}}`))
	})

	got, err := src.ListArticles(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"客服对话", "知识问答"}, got[0].Tags)
	assert.Equal(t, "doc-2", got[1].ID)
	assert.Equal(t, []string{"知识问答"}, got[1].Tags)
	assert.EqualValues(t, 8, gotBody["size"])
}

func TestElasticsearchArticles_SearchError(t *testing.T) {
	src := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"parsing_exception"}}`))
	})

	_, err := src.ListArticles(context.Background(), 8)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "search_articles"))
}

func TestElasticsearchArticles_GetArticleByID(t *testing.T) {
	src := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/articles/_doc/a-1":
			_, _ = w.Write([]byte(`{"_id":"a-1","found":true,"_source":{"title":"ROI 实战","content":"正文","url":"https://example.com/a-1","tags":["决策辅助"],"published_at":"2025-08-01"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"_id":"missing","found":false}`))
		}
	})

	got, err := src.GetArticleByID(context.Background(), "a-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a-1", got.ID)
	assert.Equal(t, "正文", got.Content)
	assert.Equal(t, "2025-08-01", got.PublishedAt)

	missing, err := src.GetArticleByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
