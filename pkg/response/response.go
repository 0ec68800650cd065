package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

// Envelope is the uniform response body returned by every endpoint.
type Envelope struct {
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{IsSuccess: true, Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{IsSuccess: true, Message: message, Data: data})
}

// Error maps err to an HTTP status and writes a failure envelope.
// Internal errors are logged and replaced with a generic message so no
// storage or database detail leaks to clients.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)
	msg := err.Error()

	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		msg = "internal server error"
	}

	c.JSON(code, Envelope{IsSuccess: false, Message: msg})
}

// GetUserID retrieves the authenticated user ID set by the auth middleware.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}
