package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vinvest/internal/services"
)

const (
	adviceGeneratedMessage = "New advice generated"
	adviceCachedMessage    = "Advice already generated. Wait for 24h to generate a new one."
	adviceFailedMessage    = "Advice could not be generated"
)

// AdvisorHandler serves the chatbot and the AI advisory endpoints.
type AdvisorHandler struct {
	chatService     services.ChatServicer
	advisoryService services.AdvisoryServicer
}

// NewAdvisorHandler creates a new AdvisorHandler.
func NewAdvisorHandler(chatService services.ChatServicer, advisoryService services.AdvisoryServicer) *AdvisorHandler {
	return &AdvisorHandler{chatService: chatService, advisoryService: advisoryService}
}

// ChatRequest is a chat message.
type ChatRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// ChatResponse is the bot's reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// AdviceResponse carries advice and whether it was generated by this call.
type AdviceResponse struct {
	Response  string `json:"response"`
	Generated bool   `json:"generated"`
	Message   string `json:"message"`
}

// RiskScoreResponse carries the model's raw answer and the parsed score.
type RiskScoreResponse struct {
	Response string `json:"response"`
	Score    *int   `json:"score"`
}

// Chat answers a chat message.
// @Summary     Chat with the assistant
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Param       request body ChatRequest true "Message"
// @Success     200 {object} ChatResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /chat [post]
func (h *AdvisorHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: h.chatService.Reply(c.Request.Context(), req.Text)})
}

// Advise returns portfolio advice, generating it at most once per 24 hours.
// @Summary     AI portfolio advice
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} AdviceResponse
// @Failure     502 {object} ErrorResponse "Market data unavailable"
// @Router      /ai_advise [post]
func (h *AdvisorHandler) Advise(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	advice, err := h.advisoryService.GetAdvice(c.Request.Context(), req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}

	message := adviceCachedMessage
	switch {
	case advice.Generated:
		message = adviceGeneratedMessage
	case advice.Failed:
		message = adviceFailedMessage
	}

	c.JSON(http.StatusOK, AdviceResponse{Response: advice.Advice, Generated: advice.Generated, Message: message})
}

// CalculateRisk asks the model for a 0-100 risk score of the portfolio.
// @Summary     AI risk score
// @Tags        advisor
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} RiskScoreResponse
// @Failure     502 {object} ErrorResponse "Market data unavailable"
// @Router      /calculate_risk [post]
func (h *AdvisorHandler) CalculateRisk(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	score, err := h.advisoryService.GetRiskScore(c.Request.Context(), req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RiskScoreResponse{Response: score.Response, Score: score.Score})
}
