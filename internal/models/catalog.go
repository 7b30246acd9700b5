// internal/models/catalog.go
package models

// CandidateModel is a model card as listed in the feed. Costs are per
// million tokens; nil means unknown.
type CandidateModel struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Provider          string   `json:"provider"`
	Description       string   `json:"description"`
	BusinessScenarios []string `json:"business_scenarios"`
	CostInput         *float64 `json:"cost_input"`
	CostOutput        *float64 `json:"cost_output"`
}

type RankedModel struct {
	CandidateModel
	Score int `json:"score"`
}

// ModelRanking is the LLM's annotation of one ranked candidate.
type ModelRanking struct {
	ID                string `json:"id"`
	Group             string `json:"group"`
	CapabilityScore   int    `json:"capability_score"`
	DeliveryScore     int    `json:"delivery_score"`
	CompositeScore    int    `json:"composite_score"`
	BestFor           string `json:"best_for"`
	FitTeam           string `json:"fit_team"`
	BudgetTier        string `json:"budget_tier"`
	RolloutDifficulty string `json:"rollout_difficulty"`
	AvoidWhen         string `json:"avoid_when"`
}

const (
	GroupFeatured  = "featured"
	GroupPractical = "practical"
)

type CandidateArticle struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
}

type ModelDetail struct {
	CandidateModel
	APIURL      string `json:"api_url"`
	DocsURL     string `json:"docs_url"`
	SourceURL   string `json:"source_url"`
	ReleaseDate string `json:"release_date"`
}

type ArticleDetail struct {
	CandidateArticle
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// Float is a helper for building optional costs.
func Float(v float64) *float64 {
	return &v
}
