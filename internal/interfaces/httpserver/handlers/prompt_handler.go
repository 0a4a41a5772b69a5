package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/prompt"
	"contentpilot/workflow-api/internal/domain/stage"
	"contentpilot/workflow-api/internal/interfaces/httpserver/requests"
	"contentpilot/workflow-api/internal/interfaces/httpserver/responses"
)

// PromptHandler exposes the versioned system prompt registry.
type PromptHandler struct {
	registry prompt.Registry
	log      zerolog.Logger
}

// NewPromptHandler constructs the handler.
func NewPromptHandler(registry prompt.Registry, log zerolog.Logger) *PromptHandler {
	return &PromptHandler{
		registry: registry,
		log:      log.With().Str("handler", "prompt").Logger(),
	}
}

var knownRoles = map[string]bool{
	stage.RoleWriter:     true,
	stage.RoleFormatter:  true,
	stage.RoleStrategist: true,
}

// GetCurrent handles GET /v1/prompts/:role.
func (h *PromptHandler) GetCurrent(c *gin.Context) {
	role := c.Param("role")
	if !knownRoles[role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage role"})
		return
	}

	current, err := h.registry.GetCurrent(c.Request.Context(), role)
	if err != nil {
		responses.HandleError(c, err, "failed to get prompt")
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prompt registered for role"})
		return
	}
	c.JSON(http.StatusOK, current)
}

// Set handles PUT /v1/prompts/:role.
func (h *PromptHandler) Set(c *gin.Context) {
	role := c.Param("role")
	if !knownRoles[role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage role"})
		return
	}

	var req requests.SetPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.registry.Set(c.Request.Context(), role, req.Version, req.Text, req.Promote)
	if err != nil {
		responses.HandleError(c, err, "failed to set prompt")
		return
	}

	h.log.Info().Str("role", role).Str("version", req.Version).
		Bool("promoted", req.Promote).Msg("prompt version registered")
	c.JSON(http.StatusOK, stored)
}

// ListVersions handles GET /v1/prompts/:role/versions.
func (h *PromptHandler) ListVersions(c *gin.Context) {
	role := c.Param("role")
	if !knownRoles[role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stage role"})
		return
	}

	versions, err := h.registry.ListVersions(c.Request.Context(), role)
	if err != nil {
		responses.HandleError(c, err, "failed to list prompt versions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": versions})
}
