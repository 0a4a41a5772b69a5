package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/label"
	"contentpilot/workflow-api/internal/domain/template"
	"contentpilot/workflow-api/internal/interfaces/httpserver/requests"
	"contentpilot/workflow-api/internal/interfaces/httpserver/responses"
)

// TemplateHandler exposes the content template catalog.
type TemplateHandler struct {
	catalog template.Catalog
	log     zerolog.Logger
}

// NewTemplateHandler constructs the handler.
func NewTemplateHandler(catalog template.Catalog, log zerolog.Logger) *TemplateHandler {
	return &TemplateHandler{
		catalog: catalog,
		log:     log.With().Str("handler", "template").Logger(),
	}
}

// Create handles POST /v1/templates. Category and format labels are
// normalized to their canonical tokens before storage.
func (h *TemplateHandler) Create(c *gin.Context) {
	var req requests.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), &template.Template{
		Title:     req.Title,
		Content:   req.Content,
		Category:  label.Normalize(req.Category),
		Format:    label.Normalize(req.Format),
		Author:    req.Author,
		SourceURL: req.SourceURL,
		Tags:      req.Tags,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create template")
		return
	}
	c.JSON(http.StatusCreated, responses.FromTemplate(created, true))
}

// Get handles GET /v1/templates/:template_id.
func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	tmpl, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get template")
		return
	}
	if tmpl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, responses.FromTemplate(tmpl, true))
}

// List handles GET /v1/templates.
func (h *TemplateHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", defaultPageSize)
	offset := intQuery(c, "offset", 0)
	category := label.Normalize(c.Query("category"))
	format := label.Normalize(c.Query("format"))

	templates, err := h.catalog.List(c.Request.Context(), category, format, limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list templates")
		return
	}

	out := make([]responses.TemplateResponse, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, responses.FromTemplate(tmpl, false))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// Delete handles DELETE /v1/templates/:template_id.
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete template")
		return
	}
	c.Status(http.StatusNoContent)
}
