// internal/models/conversation.go
package models

type Conversation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	AgentDemand   = "demand"
	AgentSolution = "solution"
)

type Message struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	AgentType      string `json:"agent_type,omitempty"`
}

type SolutionRecord struct {
	ConversationID string     `json:"conversation_id"`
	Title          string     `json:"title"`
	Content        []Solution `json:"content"`
}
