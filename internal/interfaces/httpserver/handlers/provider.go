package handlers

import (
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Workflow     *WorkflowHandler
	Conversation *ConversationHandler
	Template     *TemplateHandler
	Prompt       *PromptHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	service workflow.Service,
	store conversation.Store,
	catalog template.Catalog,
	registry prompt.Registry,
	jobQueue queue.JobQueue,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Workflow:     NewWorkflowHandler(service, store, jobQueue, log),
		Conversation: NewConversationHandler(store, log),
		Template:     NewTemplateHandler(catalog, log),
		Prompt:       NewPromptHandler(registry, log),
	}
}
