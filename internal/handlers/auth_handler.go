package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/identity"
	"vinvest/internal/logger"
	"vinvest/internal/middleware"
	"vinvest/internal/models"
	"vinvest/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	verifier     identity.Verifier
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, verifier identity.Verifier, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, verifier: verifier, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest carries the identity provider's ID token.
type LoginRequest struct {
	LoginEmail string `json:"loginEmail" binding:"required,email"`
	Token      string `json:"token" binding:"required"`
}

// LoginResponse represents the login response with a session token
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UsernameResponse is the body of a username lookup.
type UsernameResponse struct {
	Username string `json:"username"`
}

// Register handles user registration
// @Summary     Register a new user
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEvent{Email: user.Email, Action: models.AuditRegister, ResourceType: "user", ResourceID: user.ID, IPAddress: c.ClientIP()})
	c.JSON(http.StatusCreated, MessageResponse{Message: "Registered successfully"})
}

// Login handles user login
// @Summary     Login user
// @Description Verify an identity provider ID token and issue a session token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "ID token and expected e-mail"
// @Success     200 {object} LoginResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Router      /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email, err := h.verifier.VerifyIDToken(c.Request.Context(), req.Token)
	if err != nil {
		logger.Get().Warnw("id token verification failed", "error", err, "client_ip", c.ClientIP())
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if !strings.EqualFold(email, strings.TrimSpace(req.LoginEmail)) {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}

	token, err := middleware.GenerateSessionToken(strings.ToLower(email))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", Token: token})
}

// GetUsername returns the display name for an e-mail.
// @Summary     Get username
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} UsernameResponse
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /username [post]
func (h *AuthHandler) GetUsername(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	username, err := h.userService.GetUsername(req.User)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UsernameResponse{Username: username})
}

// Logout deletes the user's account and all portfolio data.
// @Summary     Logout and delete account data
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body UserRequest true "User"
// @Success     200 {object} MessageResponse
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req UserRequest
	if !bindUserJSON(c, &req, func() string { return req.User }) {
		return
	}

	if err := h.userService.DeleteUserData(req.User); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEvent{Email: strings.ToLower(req.User), Action: models.AuditDeleteAccount, ResourceType: "user", IPAddress: c.ClientIP()})
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
