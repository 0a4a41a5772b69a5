// Package responses holds the HTTP response payloads and error mapping for
// the workflow API.
package responses

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	wferrors "contentpilot/workflow-api/internal/domain/errors"
)

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Code           string         `json:"code,omitempty"`
	Error          string         `json:"error"`
	Message        string         `json:"message,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

// HandleError maps domain errors onto HTTP responses. Precondition failures
// are client errors, configuration problems are server errors, stage failures
// surface as bad gateway, and budget overruns as gateway timeout.
func HandleError(c *gin.Context, err error, message string) {
	var wfErr *wferrors.WorkflowError
	if stderrors.As(err, &wfErr) {
		c.AbortWithStatusJSON(statusFor(wfErr), ErrorResponse{
			Code:           wfErr.Code,
			Error:          message,
			Message:        wfErr.Message,
			ConversationID: wfErr.ConversationID,
			Details:        wfErr.Details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   message,
		Message: err.Error(),
	})
}

func statusFor(err *wferrors.WorkflowError) int {
	switch err.Kind {
	case wferrors.KindPrecondition:
		switch err.Code {
		case wferrors.CodeNotWaitingForUser:
			return http.StatusConflict
		case wferrors.CodeConversationNotFound:
			return http.StatusNotFound
		default:
			return http.StatusBadRequest
		}
	case wferrors.KindConfiguration:
		return http.StatusInternalServerError
	case wferrors.KindStage:
		return http.StatusBadGateway
	case wferrors.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
