// internal/models/advisor.go
package models

type StructuredDemand struct {
	Industry   string   `json:"industry"`
	Scale      string   `json:"scale"`
	PainPoints []string `json:"pain_points"`
	Goals      []string `json:"goals"`
}

// DemandAnalysis either carries a demand or asks a follow-up question, never both.
type DemandAnalysis struct {
	NeedFollowUp     bool              `json:"need_follow_up"`
	FollowUpQuestion string            `json:"follow_up_question,omitempty"`
	Demand           *StructuredDemand `json:"demand,omitempty"`
}

type Solution struct {
	Title                string   `json:"title"`
	Architecture         string   `json:"architecture"`
	EstimatedMonthlyCost float64  `json:"estimated_monthly_cost"`
	ROIHypothesis        string   `json:"roi_hypothesis"`
	Risks                []string `json:"risks"`
}

const (
	ChatResultFollowUp = "follow_up"
	ChatResultSolution = "solution"
)

// ChatResult is one advisor turn. Content is the follow-up question or the solutions.
type ChatResult struct {
	Type           string      `json:"type"`
	Content        interface{} `json:"content"`
	ConversationID string      `json:"conversation_id"`
}
