// internal/models/profile.go
package models

// UserProfile is the company profile the feed and advisor personalise against.
type UserProfile struct {
	Email              string   `json:"email"`
	CompanyName        string   `json:"company_name"`
	CompanyIndustry    string   `json:"company_industry"`
	CompanyScale       string   `json:"company_scale"`
	PreferredScenarios []string `json:"preferred_scenarios,omitempty"`
}

const (
	DefaultCompanyName     = "Demo Corp"
	DefaultCompanyIndustry = "企业服务（SaaS）"
	DefaultCompanyScale    = "中型（100-500人）"
)

// DefaultProfile is the profile created for a user seen for the first time.
func DefaultProfile(email string) UserProfile {
	return UserProfile{
		Email:           email,
		CompanyName:     DefaultCompanyName,
		CompanyIndustry: DefaultCompanyIndustry,
		CompanyScale:    DefaultCompanyScale,
	}
}

type Favorites struct {
	ModelIDs   []string `json:"model_ids"`
	ArticleIDs []string `json:"article_ids"`
}

// FavoriteTarget names a model or an article. Exactly one must be set.
type FavoriteTarget struct {
	ModelID   string `json:"model_id,omitempty"`
	ArticleID string `json:"article_id,omitempty"`
}

func (f FavoriteTarget) Valid() bool {
	return (f.ModelID != "") != (f.ArticleID != "")
}
