package v1

import (
	"github.com/gin-gonic/gin"

	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

func registerWorkflowRoutes(router gin.IRoutes, handler *handlers.WorkflowHandler) {
	router.POST("/workflows/start", handler.Start)
	router.POST("/workflows/ideas", handler.GenerateIdeas)
	router.POST("/workflows/:conversation_id/continue", handler.Continue)
	router.POST("/workflows/:conversation_id/select", handler.SelectIdea)
	router.GET("/workflows/:conversation_id", handler.GetState)
	router.GET("/jobs/:job_id", handler.GetJob)
}
