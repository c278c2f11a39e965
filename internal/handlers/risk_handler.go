package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vinvest/internal/models"
	"vinvest/internal/services"
)

// RiskHandler handles the risk questionnaire.
type RiskHandler struct {
	riskService  services.RiskProfileServicer
	auditService services.AuditServicer
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(riskService services.RiskProfileServicer, auditService services.AuditServicer) *RiskHandler {
	return &RiskHandler{riskService: riskService, auditService: auditService}
}

// RiskAnswers are the nine questionnaire answers.
type RiskAnswers struct {
	Age                 string `json:"age" binding:"max=100"`
	InvestmentGoal      string `json:"investmentGoal" binding:"max=255"`
	InvestmentTime      string `json:"investmentTime" binding:"max=255"`
	ReactionToMarket    string `json:"reactionToMarket" binding:"max=255"`
	NetWorth            string `json:"netWorth" binding:"max=255"`
	FundAccess          string `json:"fundAccess" binding:"max=255"`
	EconomicOutlook     string `json:"economicOutlook" binding:"max=255"`
	FinancialSituation  string `json:"financialSituation" binding:"max=255"`
	FinancialObligation string `json:"financialObligation" binding:"max=255"`
}

// SaveRiskRequest stores a questionnaire.
type SaveRiskRequest struct {
	User     string      `json:"user" binding:"required,email,max=255"`
	Response RiskAnswers `json:"response"`
}

// SaveRiskResponse reports whether the questionnaire was added or replaced.
type SaveRiskResponse struct {
	Success string `json:"success"`
}

// RiskUpdatedResponse is true when the user still has to fill in the
// questionnaire.
type RiskUpdatedResponse struct {
	Risk bool `json:"risk"`
}

// SaveRisk creates or replaces the user's questionnaire.
// @Summary     Save risk questionnaire
// @Tags        risk
// @Accept      json
// @Produce     json
// @Param       request body SaveRiskRequest true "Answers"
// @Success     200 {object} SaveRiskResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /risk [post]
func (h *RiskHandler) SaveRisk(c *gin.Context) {
	var req SaveRiskRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	a := req.Response
	created, err := h.riskService.UpsertRiskProfile(req.User, models.RiskProfile{
		Age:                 a.Age,
		InvestmentGoal:      a.InvestmentGoal,
		InvestmentTime:      a.InvestmentTime,
		ReactionToMarket:    a.ReactionToMarket,
		NetWorth:            a.NetWorth,
		FundAccess:          a.FundAccess,
		EconomicOutlook:     a.EconomicOutlook,
		FinancialSituation:  a.FinancialSituation,
		FinancialObligation: a.FinancialObligation,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	message := "Updated successfully!"
	if created {
		message = "Added successfully!"
	}
	h.auditService.Log(services.AuditEvent{Email: strings.ToLower(req.User), Action: models.AuditSaveRiskProfile, ResourceType: "risk_profile", IPAddress: c.ClientIP()})
	c.JSON(http.StatusOK, SaveRiskResponse{Success: message})
}

// RiskUpdated reports whether the questionnaire is still missing.
// @Summary     Questionnaire status
// @Tags        risk
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} RiskUpdatedResponse
// @Router      /risk-updated [post]
func (h *RiskHandler) RiskUpdated(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	has, err := h.riskService.HasRiskProfile(req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RiskUpdatedResponse{Risk: !has})
}
