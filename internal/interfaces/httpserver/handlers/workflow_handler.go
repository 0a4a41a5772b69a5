package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/conversation"
	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
	"contentpilot/workflow-api/internal/interfaces/httpserver/requests"
	"contentpilot/workflow-api/internal/interfaces/httpserver/responses"
)

// WorkflowHandler exposes the workflow operations over HTTP. Each operation
// runs inline by default; background requests are enqueued for the worker
// pool instead.
type WorkflowHandler struct {
	service workflow.Service
	store   conversation.Store
	queue   queue.JobQueue
	log     zerolog.Logger
}

// NewWorkflowHandler constructs the handler. jobQueue may be nil, which
// disables background execution.
func NewWorkflowHandler(service workflow.Service, store conversation.Store, jobQueue queue.JobQueue, log zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		store:   store,
		queue:   jobQueue,
		log:     log.With().Str("handler", "workflow").Logger(),
	}
}

// Start handles POST /v1/workflows/start.
func (h *WorkflowHandler) Start(c *gin.Context) {
	var req requests.StartWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Background {
		h.enqueue(c, req.ConversationID, req.Request, queue.KindProcessRequest,
			map[string]any{"request": req.Request})
		return
	}

	result, err := h.service.ProcessRequest(c.Request.Context(), req.ConversationID, req.Request)
	if err != nil {
		responses.HandleError(c, err, "failed to process request")
		return
	}
	c.JSON(http.StatusOK, responses.FromResult(result))
}

// Continue handles POST /v1/workflows/:conversation_id/continue.
func (h *WorkflowHandler) Continue(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req requests.ContinueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Background {
		h.enqueue(c, conversationID, "", queue.KindContinue,
			map[string]any{"feedback": req.Feedback})
		return
	}

	result, err := h.service.Continue(c.Request.Context(), conversationID, req.Feedback)
	if err != nil {
		responses.HandleError(c, err, "failed to continue workflow")
		return
	}
	c.JSON(http.StatusOK, responses.FromResult(result))
}

// GenerateIdeas handles POST /v1/workflows/ideas.
func (h *WorkflowHandler) GenerateIdeas(c *gin.Context) {
	var req requests.GenerateIdeasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Background {
		h.enqueue(c, req.ConversationID, "Content ideas", queue.KindGenerateIdeas,
			map[string]any{"source": req.Source})
		return
	}

	result, err := h.service.GenerateIdeas(c.Request.Context(), req.ConversationID, req.Source)
	if err != nil {
		responses.HandleError(c, err, "failed to generate ideas")
		return
	}
	c.JSON(http.StatusOK, responses.FromResult(result))
}

// SelectIdea handles POST /v1/workflows/:conversation_id/select.
func (h *WorkflowHandler) SelectIdea(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req requests.SelectIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Background {
		h.enqueue(c, conversationID, "", queue.KindGenerateFromIdea,
			map[string]any{"idea_index": *req.IdeaIndex, "template_id": req.TemplateID})
		return
	}

	result, err := h.service.GenerateFromIdea(c.Request.Context(), conversationID, *req.IdeaIndex, req.TemplateID)
	if err != nil {
		responses.HandleError(c, err, "failed to draft from idea")
		return
	}
	c.JSON(http.StatusOK, responses.FromResult(result))
}

// GetState handles GET /v1/workflows/:conversation_id.
func (h *WorkflowHandler) GetState(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	state, err := h.service.GetState(c.Request.Context(), conversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to get workflow state")
		return
	}

	c.JSON(http.StatusOK, responses.StateResponse{
		ConversationID: conversationID,
		State:          state,
		Complete:       state.IsComplete(),
	})
}

// GetJob handles GET /v1/jobs/:job_id.
func (h *WorkflowHandler) GetJob(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "background execution is not configured"})
		return
	}

	jobID := c.Param("job_id")
	job, err := h.queue.GetJob(c.Request.Context(), jobID)
	if err != nil {
		responses.HandleError(c, err, "failed to get job")
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found: " + jobID})
		return
	}
	c.JSON(http.StatusOK, responses.FromJobStatus(job))
}

// enqueue stores a background job and replies 202. A missing conversation is
// created up front so the client has an id to poll.
func (h *WorkflowHandler) enqueue(c *gin.Context, conversationID, title, kind string, payload map[string]any) {
	if h.queue == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "background execution is not configured"})
		return
	}

	if conversationID == "" {
		conv, err := h.store.Create(c.Request.Context(), truncateTitle(title))
		if err != nil {
			responses.HandleError(c, err, "failed to create conversation")
			return
		}
		conversationID = conv.PublicID
	}

	job := &queue.Job{
		Kind:           kind,
		ConversationID: conversationID,
		Payload:        payload,
	}
	if err := h.queue.Enqueue(c.Request.Context(), job); err != nil {
		responses.HandleError(c, err, "failed to enqueue job")
		return
	}

	h.log.Info().Str("job_id", job.PublicID).Str("kind", kind).
		Str("conversation_id", conversationID).Msg("background job enqueued")
	c.JSON(http.StatusAccepted, responses.FromJob(job))
}

func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) > 80 {
		return title[:80]
	}
	return title
}
