// Package conversation defines the conversation and message models and the
// persistence contract the workflow coordinator builds on.
package conversation

import "time"

// Conversation statuses for the listing surface.
const (
	StateActive   = "active"
	StateArchived = "archived"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Conversation is one content-generation session. WorkflowState is an opaque
// key-value blob owned by the coordinator; Summary is the running transcript
// summary used to head stage context.
type Conversation struct {
	ID            uint           `json:"-"`
	PublicID      string         `json:"id"`
	Title         string         `json:"title"`
	State         string         `json:"state"`
	WorkflowState map[string]any `json:"workflow_state,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Message is one append-only transcript entry. AgentRole records which
// generation stage produced an assistant message.
type Message struct {
	ID             uint           `json:"-"`
	PublicID       string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"`
	AgentRole      string         `json:"agent_role,omitempty"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Sequence       int64          `json:"sequence"`
	CreatedAt      time.Time      `json:"created_at"`
}

// NewMessage carries the fields for an append.
type NewMessage struct {
	Role      string
	AgentRole string
	Content   string
	Metadata  map[string]any
}
