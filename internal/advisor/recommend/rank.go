// internal/advisor/recommend/rank.go
package recommend

import (
	"sort"
	"strings"

	"ai-advisor/internal/models"
)

// RankModels scores every candidate and orders them by descending score.
// Equal scores keep their input order. The input slice is not modified.
func RankModels(candidates []models.CandidateModel, profile FeedProfile) []models.RankedModel {
	preferred := DerivePreferredScenarios(profile)

	ranked := make([]models.RankedModel, len(candidates))
	for i, c := range candidates {
		ranked[i] = models.RankedModel{
			CandidateModel: c,
			Score:          ScoreModel(c, profile.CompanyIndustry, preferred),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ArticleScore is 20, plus 30 per tag in preferred, plus 5 for InfoQ sources.
func ArticleScore(article models.CandidateArticle, preferred map[string]struct{}) int {
	matched := 0
	for _, tag := range article.Tags {
		if _, ok := preferred[tag]; ok {
			matched++
		}
	}
	score := 20 + matched*30
	if strings.Contains(article.Source, "InfoQ") {
		score += 5
	}
	return score
}

// RankArticles orders articles by ArticleScore, ties by original index.
func RankArticles(candidates []models.CandidateArticle, profile FeedProfile) []models.CandidateArticle {
	preferred := make(map[string]struct{})
	for _, p := range DerivePreferredScenarios(profile) {
		preferred[p] = struct{}{}
	}

	type scored struct {
		article models.CandidateArticle
		index   int
		score   int
	}
	rows := make([]scored, len(candidates))
	for i, a := range candidates {
		rows[i] = scored{article: a, index: i, score: ArticleScore(a, preferred)}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score == rows[j].score {
			return rows[i].index < rows[j].index
		}
		return rows[i].score > rows[j].score
	})

	out := make([]models.CandidateArticle, len(rows))
	for i, r := range rows {
		out[i] = r.article
	}
	return out
}
