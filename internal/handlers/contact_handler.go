package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/mailer"
)

// ContactHandler forwards customer messages to the support inbox.
type ContactHandler struct {
	sender mailer.Sender
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(sender mailer.Sender) *ContactHandler {
	return &ContactHandler{sender: sender}
}

// SendEmailRequest is a customer message.
type SendEmailRequest struct {
	From    string `json:"from" binding:"required,email,max=255"`
	Message string `json:"message" binding:"required,max=5000"`
}

// SendEmail delivers a contact message.
// @Summary     Contact support
// @Tags        contact
// @Accept      json
// @Produce     json
// @Param       request body SendEmailRequest true "Message"
// @Success     200 {object} MessageResponse
// @Failure     500 {object} ErrorResponse "Email failed to send"
// @Router      /send-email [post]
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.sender.SendContact(c.Request.Context(), req.From, req.Message); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrEmailFailed, err))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Email Sent successfully"})
}
