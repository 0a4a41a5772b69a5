// Package requests holds the HTTP request payloads for the workflow API.
package requests

// StartWorkflowRequest starts the write-then-format pipeline.
type StartWorkflowRequest struct {
	// ConversationID resumes an existing conversation; empty starts a new one.
	ConversationID string `json:"conversation_id"`
	Request        string `json:"request" binding:"required"`
	// Background enqueues the work instead of running it inline.
	Background bool `json:"background"`
}

// ContinueRequest delivers user feedback on a waiting conversation.
type ContinueRequest struct {
	Feedback   string `json:"feedback" binding:"required"`
	Background bool   `json:"background"`
}

// GenerateIdeasRequest runs ideation over a source document.
type GenerateIdeasRequest struct {
	ConversationID string `json:"conversation_id"`
	// Source is a reading-list URL or a raw document id.
	Source     string `json:"source" binding:"required"`
	Background bool   `json:"background"`
}

// SelectIdeaRequest drafts a post from a previously generated idea.
type SelectIdeaRequest struct {
	IdeaIndex *int `json:"idea_index" binding:"required"`
	// TemplateID optionally pins a specific template.
	TemplateID string `json:"template_id"`
	Background bool   `json:"background"`
}

// CreateTemplateRequest registers a content template.
type CreateTemplateRequest struct {
	Title     string   `json:"title" binding:"required"`
	Content   string   `json:"content" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Format    string   `json:"format" binding:"required"`
	Author    string   `json:"author"`
	SourceURL string   `json:"source_url"`
	Tags      []string `json:"tags"`
}

// SetPromptRequest registers a system prompt version for a stage role.
type SetPromptRequest struct {
	Version string `json:"version" binding:"required"`
	Text    string `json:"text" binding:"required"`
	// Promote makes this version current.
	Promote bool `json:"promote"`
}
