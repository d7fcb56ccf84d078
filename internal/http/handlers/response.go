// Package handlers provides the HTTP handler implementations for the public,
// account, and admin API surfaces.
//
// This file holds the shared response utilities. Every error response is an
// ErrorResponse envelope with a stable code; fail() centralizes the shaping
// and logs 5xx with the request-scoped logger. Some errors carry extra
// context fields (current vs attempted state on transition conflicts), which
// failWith() attaches beside the envelope.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alpmera/campaign-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"campaign not found"`
	// Optional machine-readable context (e.g. currentState, attemptedState)
	Context map[string]string `json:"context,omitempty"`
}

// fail aborts the request with a structured error. Server-side errors (>=500)
// are logged with request context before the response is written.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, code, msg, nil)
}

// failWith is fail with extra context fields attached to the envelope.
func failWith(c *gin.Context, status int, code, msg string, ctxFields map[string]string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Context:   ctxFields,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by router-level handlers
// (NoRoute, NoMethod) so they emit the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
