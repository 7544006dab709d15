package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/digitalrehman/secure-todo-flow/internal/http/middleware"
	"github.com/digitalrehman/secure-todo-flow/internal/service"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Name, email and password are required."})
		return
	}

	result, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and password are required."})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": result.User, "token": result.Token})
}

// VerifyEmail handles POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Verification token is required."})
		return
	}

	if err := h.Auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully!"})
}

// SendVerification handles POST /auth/send-verification.
func (h *AuthHandler) SendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email is required."})
		return
	}

	if err := h.Auth.SendEmailVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent!"})
}

// SendPhoneVerification handles POST /auth/send-phone-verification. The
// generated code appears in the response only when code exposure is enabled.
func (h *AuthHandler) SendPhoneVerification(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		UserID      string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Phone number or user ID required."})
		return
	}

	code, err := h.Auth.SendPhoneVerification(c.Request.Context(), req.PhoneNumber, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"message": "Verification code sent!"}
	if code != "" {
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyPhone handles POST /auth/verify-phone.
func (h *AuthHandler) VerifyPhone(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Code        string `json:"code" binding:"required"`
		UserID      string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Verification code is required."})
		return
	}

	user, err := h.Auth.VerifyPhone(c.Request.Context(), req.PhoneNumber, req.UserID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phone number verified successfully!", "user": user})
}

// GoogleLogin handles POST /auth/google-login.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req struct {
		TokenID string `json:"tokenId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "tokenId is required."})
		return
	}

	result, err := h.Auth.GoogleLogin(c.Request.Context(), req.TokenID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": result.User, "token": result.Token})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
		return
	}

	user, err := h.Auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
