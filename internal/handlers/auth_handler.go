package handlers

import (
	"net/http"

	"github.com/garjemarathi/community-agent/internal/auth"
	"github.com/garjemarathi/community-agent/internal/dtos"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth *auth.Service
}

func NewAuthHandler(a *auth.Service) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// Login is the POST /api/login endpoint. A valid access code gets a session
// cookie (and the token in the body for non-browser clients).
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'access_code' in request body"})
		return
	}

	if !h.Auth.CheckAccessCode(req.AccessCode) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access code"})
		return
	}

	token, expires, err := h.Auth.IssueToken(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session: " + err.Error()})
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(h.Auth.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, dtos.LoginResponse{Token: token, ExpiresAt: expires})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}
