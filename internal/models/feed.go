// internal/models/feed.go
package models

type FeedQuery struct {
	Industry string `json:"industry"`
	Scale    string `json:"scale"`
	Limit    int    `json:"limit"`
}

// FeedModel is a ranked model, optionally annotated by the LLM ranking pass.
type FeedModel struct {
	RankedModel
	Ranking *ModelRanking `json:"ranking,omitempty"`
}

type Feed struct {
	Query    FeedQuery          `json:"query"`
	Models   []FeedModel        `json:"models"`
	Articles []CandidateArticle `json:"articles"`
}

type DashboardData struct {
	Profile       UserProfile        `json:"profile"`
	Models        []FeedModel        `json:"models"`
	Articles      []CandidateArticle `json:"articles"`
	Conversations []Conversation     `json:"conversations"`
	Favorites     Favorites          `json:"favorites"`
}
