package controllers

import (
	"net/http"

	"journal-management-api/services"

	"github.com/gin-gonic/gin"
)

// statusForKind maps pipeline error kinds onto HTTP statuses.
func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindInvalidState:
		return http.StatusUnprocessableEntity
	case services.KindExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// renderPipeline writes a PipelineResponse. Partial success (success with an
// attached error) still renders 200 so callers can see both the committed
// data and the retryable failure.
func renderPipeline(c *gin.Context, response *services.PipelineResponse) {
	if response.Success {
		c.JSON(http.StatusOK, response)
		return
	}
	status := http.StatusInternalServerError
	if response.Error != nil {
		status = statusForKind(response.Error.Kind)
	}
	c.JSON(status, response)
}

// renderError writes a plain service error outside the pipeline wrapper.
func renderError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	c.JSON(statusForKind(kind), gin.H{
		"success": false,
		"error":   gin.H{"kind": kind, "message": err.Error()},
	})
}
