// internal/advisor/repository/elasticsearch.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ai-advisor/internal/advisor/recommend"
	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/logger"
	"ai-advisor/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchArticles reads articles from a search index. Document tags
// are canonicalised, falling back to keywords in the title and summary.
type ElasticsearchArticles struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchArticles(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchArticles {
	return &ElasticsearchArticles{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "article-index", "index": index}),
	}
}

// ArticleIndexMapping is the index body for articleDoc documents.
const ArticleIndexMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "title":        {"type": "text"},
      "summary":      {"type": "text"},
      "content":      {"type": "text"},
      "source":       {"type": "keyword"},
      "url":          {"type": "keyword", "index": false},
      "tags":         {"type": "keyword"},
      "published_at": {"type": "date", "ignore_malformed": true}
    }
  }
}`

type articleDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	Tags        []string `json:"tags"`
	PublishedAt string   `json:"published_at"`
}

type articleHit struct {
	ID     string     `json:"_id"`
	Found  bool       `json:"found"`
	Source articleDoc `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []articleHit `json:"hits"`
	} `json:"hits"`
}

func (d articleDoc) detail(docID string) models.ArticleDetail {
	id := d.ID
	if id == "" {
		id = docID
	}
	return models.ArticleDetail{
		CandidateArticle: models.CandidateArticle{
			ID:      id,
			Title:   d.Title,
			Summary: d.Summary,
			Source:  d.Source,
			Tags:    recommend.CanonicalTags(d.Tags, d.Title+" "+d.Summary),
		},
		Content:     d.Content,
		URL:         d.URL,
		PublishedAt: d.PublishedAt,
	}
}

func (e *ElasticsearchArticles) ListArticles(ctx context.Context, limit int) ([]models.CandidateArticle, error) {
	body, err := json.Marshal(map[string]interface{}{
		"size":  normalizeLimit(limit),
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"published_at": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode article search: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("search_articles", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewDatabaseQueryFailedError("search_articles", fmt.Errorf("search failed: %s", res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("search_articles", err)
	}

	out := make([]models.CandidateArticle, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source.detail(hit.ID).CandidateArticle)
	}
	e.logger.Debug("articles searched", map[string]interface{}{"count": len(out)})
	return out, nil
}

func (e *ElasticsearchArticles) GetArticleByID(ctx context.Context, id string) (*models.ArticleDetail, error) {
	req := esapi.GetRequest{Index: e.index, DocumentID: id}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get_article", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, apperrors.NewDatabaseQueryFailedError("get_article", fmt.Errorf("get failed: %s", res.String()))
	}

	var hit articleHit
	if err := json.NewDecoder(res.Body).Decode(&hit); err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("get_article", err)
	}
	if !hit.Found {
		return nil, nil
	}
	detail := hit.Source.detail(hit.ID)
	return &detail, nil
}
