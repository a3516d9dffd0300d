// README: Response envelope and service error mapping shared by all handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridehub/internal/http/middleware"
	"ridehub/internal/modules/driver"
	"ridehub/internal/modules/ride"
	"ridehub/internal/modules/user"
	"ridehub/internal/types"
)

type meta struct {
	Total int `json:"total"`
}

type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
	Meta       *meta  `json:"meta,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, StatusCode: status, Message: message, Data: data})
}

func respondList(c *gin.Context, message string, data any, total int) {
	c.JSON(http.StatusOK, envelope{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Meta:       &meta{Total: total},
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, envelope{Success: false, StatusCode: status, Message: message, Error: code})
}

// writeServiceError maps module sentinel errors to a status code plus a
// stable machine-readable kind. Unclassified errors never leak details.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrNotFound), errors.Is(err, user.ErrNotFound), errors.Is(err, driver.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ride.ErrForbidden), errors.Is(err, user.ErrForbidden), errors.Is(err, driver.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ride.ErrCapacityExceeded):
		respondError(c, http.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, ride.ErrConflict):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, user.ErrEmailTaken), errors.Is(err, driver.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ride.ErrInvalidTransition):
		respondError(c, http.StatusBadRequest, "invalid_transition", err.Error())
	case errors.Is(err, ride.ErrBadRequest), errors.Is(err, user.ErrBadRequest), errors.Is(err, driver.ErrBadRequest):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// callerIdentity pulls the authenticated identity; routes are always
// registered behind the auth middleware, so absence is a server bug.
func callerIdentity(c *gin.Context) (types.Identity, bool) {
	identity, ok := middleware.CallerIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
	}
	return identity, ok
}
