package v1

import (
	"github.com/gin-gonic/gin"

	"contentpilot/workflow-api/internal/interfaces/httpserver/handlers"
)

func registerConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.GET("/conversations", handler.List)
	router.GET("/conversations/:conversation_id", handler.Get)
	router.GET("/conversations/:conversation_id/messages", handler.ListMessages)
	router.POST("/conversations/:conversation_id/archive", handler.Archive)
}
