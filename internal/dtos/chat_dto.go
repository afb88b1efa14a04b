package dtos

import "time"

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Model   string `json:"model"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

type LoginRequest struct {
	AccessCode string `json:"access_code" binding:"required"`

	// Optional, stamped into the session so logs show who asked what
	Email string `json:"email"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
