package v1

import (
	"github.com/gin-gonic/gin"

	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

func registerTemplateRoutes(router gin.IRoutes, handler *handlers.TemplateHandler) {
	router.POST("/templates", handler.Create)
	router.GET("/templates", handler.List)
	router.GET("/templates/:template_id", handler.Get)
	router.DELETE("/templates/:template_id", handler.Delete)
}
