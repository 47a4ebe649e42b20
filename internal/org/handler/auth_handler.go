package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/service"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, tokens, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, gin.H{"user": user, "tokens": tokens})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "tokens": tokens})
}

// GoogleLogin GET /api/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := c.Query("state")
	Success(c, gin.H{"url": h.svc.GetGoogleLoginURL(state)})
}

// GoogleCallback GET /api/auth/google/callback?code=xxx
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		BadRequest(c, "missing authorization code")
		return
	}

	user, tokens, err := h.svc.HandleGoogleCallback(c.Request.Context(), code)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"user": user, "tokens": tokens})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		// an unknown or reused refresh token reads as unauthorized, not 500
		Unauthorized(c, err.Error())
		return
	}
	Success(c, gin.H{"tokens": tokens})
}
