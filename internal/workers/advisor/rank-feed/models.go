// internal/workers/advisor/rank-feed/models.go
package rankfeed

import "ai-advisor/internal/models"

// Input carries an optional profile. Without one the stored profile is ranked against.
type Input struct {
	Profile *models.UserProfile `json:"profile"`
}

// Output flattens the feed into query, models and articles variables.
type Output struct {
	models.Feed
}
