package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/middleware"
)

// ErrorResponse represents an error response.
type ErrorResponse = middleware.ErrorBody

// MessageResponse is the body of simple acknowledgement responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserRequest identifies the user a request acts on.
type UserRequest struct {
	User string `json:"user" binding:"required,email,max=255"`
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	status, body := middleware.RenderError(c, err)
	c.JSON(status, body)
}

// bindJSON binds the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

// authorizeUser rejects a body user that differs from the session's e-mail.
// Requests without a session are allowed unless the session middleware
// requires one.
func authorizeUser(c *gin.Context, user string) error {
	email, ok := middleware.SessionEmail(c)
	if !ok {
		return nil
	}
	if !strings.EqualFold(strings.TrimSpace(user), email) {
		return apperrors.WithMessage(apperrors.ErrForbidden, "Session does not match the requested user")
	}
	return nil
}

// bindUserJSON binds req and checks its user against the session.
func bindUserJSON(c *gin.Context, req interface{}, user func() string) bool {
	if !bindJSON(c, req) {
		return false
	}
	if err := authorizeUser(c, user()); err != nil {
		respondWithError(c, err)
		return false
	}
	return true
}
