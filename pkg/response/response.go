package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamforge/backend/pkg/apperr"
)

// Body is the standard API response envelope. Kind and Details are set only
// on errors that carry structure (e.g. forbidden with required roles).
type Body struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err, Kind: string(apperr.KindBadRequest)})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err, Kind: string(apperr.KindUnauthorized)})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err, Kind: string(apperr.KindForbidden)})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err, Kind: string(apperr.KindNotFound)})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err, Kind: string(apperr.KindConflict)})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err, Kind: string(apperr.KindInternal)})
}

// statusForKind maps error kinds to HTTP statuses. Invariant violations share
// 409 with conflicts but keep a distinct kind in the envelope.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict, apperr.KindInvariantViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error sends a classified error. Internal causes are never leaked to the
// client; handlers log them separately.
func Error(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		Internal(c, "internal error")
		return
	}
	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		msg = "internal error"
	}
	c.JSON(statusForKind(ae.Kind), Body{
		Success: false,
		Error:   msg,
		Kind:    string(ae.Kind),
		Details: ae.Details,
	})
}
