// internal/workers/advisor/analyze-demand/models.go
package analyzedemand

import "ai-advisor/internal/models"

type Input struct {
	Message string `json:"message"`
}

// Output is written back as process variables. Demand is absent when a
// follow-up question is needed.
type Output struct {
	NeedFollowUp     bool                     `json:"need_follow_up"`
	FollowUpQuestion string                   `json:"follow_up_question,omitempty"`
	Demand           *models.StructuredDemand `json:"demand,omitempty"`
}
