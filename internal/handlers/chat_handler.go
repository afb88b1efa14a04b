package handlers

import (
	"net/http"
	"strings"

	"github.com/garjemarathi/community-agent/internal/dtos"
	"github.com/garjemarathi/community-agent/internal/services"
	"github.com/gin-gonic/gin"
)

// ChatHandler owns the chat endpoints. The agent is injected so the handler
// stays a thin HTTP layer.
type ChatHandler struct {
	Agent        *services.AgentService
	DefaultModel string
}

func NewChatHandler(agent *services.AgentService, defaultModel string) *ChatHandler {
	return &ChatHandler{Agent: agent, DefaultModel: defaultModel}
}

// Chat is the POST /api/chat endpoint
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dtos.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'message' in request body"})
		return
	}

	model := req.Model
	if model == "" {
		model = h.DefaultModel
	} else if !services.IsValidModel(model) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid model. Available: " + strings.Join(services.ValidModels, ", "),
		})
		return
	}

	answer := h.Agent.Answer(c.Request.Context(), req.Message, req.Model)

	c.JSON(http.StatusOK, dtos.ChatResponse{
		Response: answer,
		Model:    model,
	})
}

// HealthCheck is the GET /api/health endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Root serves the API info block for clients hitting the bare host.
// Browsers get sent to the chat UI instead.
func Root(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, "/chat")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        "Garje Marathi AI API",
		"version":     "1.0.0",
		"description": "AI Assistant for Garje Marathi Community",
		"endpoints": gin.H{
			"/api/chat":   "POST - Send a message to the AI",
			"/api/health": "GET - Health check",
		},
	})
}

// ChatPage renders the chat UI.
func (h *ChatHandler) ChatPage(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", gin.H{
		"Community": h.Agent.Community,
	})
}
