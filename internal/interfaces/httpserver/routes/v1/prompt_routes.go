package v1

import (
	"github.com/gin-gonic/gin"

	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

func registerPromptRoutes(router gin.IRoutes, handler *handlers.PromptHandler) {
	router.GET("/prompts/:role", handler.GetCurrent)
	router.PUT("/prompts/:role", handler.Set)
	router.GET("/prompts/:role/versions", handler.ListVersions)
}
