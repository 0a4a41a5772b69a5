package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/conversation"
	wferrors "contentpilot/workflow-api/internal/domain/errors"
	"contentpilot/workflow-api/internal/interfaces/httpserver/responses"
)

const defaultPageSize = 20

// ConversationHandler exposes conversation listing and transcript access.
type ConversationHandler struct {
	store conversation.Store
	log   zerolog.Logger
}

// NewConversationHandler constructs the handler.
func NewConversationHandler(store conversation.Store, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		store: store,
		log:   log.With().Str("handler", "conversation").Logger(),
	}
}

// List handles GET /v1/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", defaultPageSize)
	offset := intQuery(c, "offset", 0)
	state := c.Query("state")

	convs, err := h.store.List(c.Request.Context(), state, limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list conversations")
		return
	}

	out := make([]responses.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, responses.FromConversation(conv))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// Get handles GET /v1/conversations/:conversation_id.
func (h *ConversationHandler) Get(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	conv, err := h.store.FindByPublicID(c.Request.Context(), conversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to get conversation")
		return
	}
	if conv == nil {
		responses.HandleError(c,
			wferrors.NewPrecondition(wferrors.CodeConversationNotFound, "conversation not found"),
			"failed to get conversation")
		return
	}
	c.JSON(http.StatusOK, responses.FromConversation(conv))
}

// ListMessages handles GET /v1/conversations/:conversation_id/messages.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	limit := intQuery(c, "limit", 50)
	before := int64(intQuery(c, "before", 0))

	messages, err := h.store.ListMessages(c.Request.Context(), conversationID, limit, before)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": responses.FromMessages(messages)})
}

// Archive handles POST /v1/conversations/:conversation_id/archive.
func (h *ConversationHandler) Archive(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	if err := h.store.Archive(c.Request.Context(), conversationID); err != nil {
		responses.HandleError(c, err, "failed to archive conversation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": conversationID, "state": conversation.StateArchived})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
