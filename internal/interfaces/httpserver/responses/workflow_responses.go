package responses

import (
	"time"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/idea"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
)

// WorkflowResponse is the outcome of a synchronous workflow operation.
type WorkflowResponse struct {
	ConversationID string      `json:"conversation_id"`
	Status         string      `json:"status"`
	Output         string      `json:"output,omitempty"`
	Ideas          *idea.Batch `json:"ideas,omitempty"`
}

// FromResult maps a coordinator result.
func FromResult(r *workflow.Result) WorkflowResponse {
	return WorkflowResponse{
		ConversationID: r.ConversationID,
		Status:         string(r.Status),
		Output:         r.Output,
		Ideas:          r.Ideas,
	}
}

// JobAcceptedResponse acknowledges a background enqueue.
type JobAcceptedResponse struct {
	JobID          string `json:"job_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Status         string `json:"status"`
}

// FromJob maps an enqueued job.
func FromJob(job *queue.Job) JobAcceptedResponse {
	return JobAcceptedResponse{
		JobID:          job.PublicID,
		ConversationID: job.ConversationID,
		Status:         queue.StatusQueued,
	}
}

// JobResponse is the status of a background job.
type JobResponse struct {
	JobID          string     `json:"job_id"`
	Kind           string     `json:"kind"`
	ConversationID string     `json:"conversation_id"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	QueuedAt       time.Time  `json:"queued_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// FromJobStatus maps a stored job.
func FromJobStatus(job *queue.Job) JobResponse {
	return JobResponse{
		JobID:          job.PublicID,
		Kind:           job.Kind,
		ConversationID: job.ConversationID,
		Status:         job.Status,
		Error:          job.Error,
		QueuedAt:       job.QueuedAt,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
	}
}

// StateResponse exposes the workflow state of a conversation.
type StateResponse struct {
	ConversationID string          `json:"conversation_id"`
	State          *workflow.State `json:"state"`
	Complete       bool            `json:"complete"`
}

// ConversationResponse is one conversation in listing and detail views.
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromConversation maps a domain conversation.
func FromConversation(conv *conversation.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.PublicID,
		Title:     conv.Title,
		State:     conv.State,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

// MessageResponse is one transcript entry.
type MessageResponse struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	AgentRole string         `json:"agent_role,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Sequence  int64          `json:"sequence"`
	CreatedAt time.Time      `json:"created_at"`
}

// FromMessages maps transcript entries.
func FromMessages(messages []*conversation.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		out = append(out, MessageResponse{
			ID:        msg.PublicID,
			Role:      msg.Role,
			AgentRole: msg.AgentRole,
			Content:   msg.Content,
			Metadata:  msg.Metadata,
			Sequence:  msg.Sequence,
			CreatedAt: msg.CreatedAt,
		})
	}
	return out
}

// TemplateResponse is one stored template.
type TemplateResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Format    string    `json:"format"`
	Author    string    `json:"author,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromTemplate maps a domain template. includeContent controls whether the
// full template body is returned; listings omit it.
func FromTemplate(t *template.Template, includeContent bool) TemplateResponse {
	resp := TemplateResponse{
		ID:        t.ID.String(),
		Title:     t.Title,
		Category:  t.Category,
		Format:    t.Format,
		Author:    t.Author,
		SourceURL: t.SourceURL,
		Tags:      t.Tags,
		CreatedAt: t.CreatedAt,
	}
	if includeContent {
		resp.Content = t.Content
	}
	return resp
}
