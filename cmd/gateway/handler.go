package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/anuraag-b/voice-gateway/internal/chat"
	"github.com/anuraag-b/voice-gateway/internal/llm"
	"github.com/anuraag-b/voice-gateway/internal/speech"
	"github.com/anuraag-b/voice-gateway/internal/spotify"
	"github.com/anuraag-b/voice-gateway/internal/tools"

	"github.com/gin-gonic/gin"
)

// ChatService is the orchestrator surface the transport depends on.
// *chat.Service satisfies it; handler tests substitute a stub.
type ChatService interface {
	ProcessMessage(ctx context.Context, message string, history []llm.Message) chat.Response
}

// GatewayHandler carries the HTTP endpoints. It is deliberately thin: every
// handler binds the request, delegates, and shapes the response. No tool or
// model logic lives here.
type GatewayHandler struct {
	chat        ChatService
	registry    *tools.Registry
	transcriber speech.Transcriber
	spotify     *spotify.Client
	config      *AppConfig
}

func NewGatewayHandler(chatService ChatService, registry *tools.Registry, transcriber speech.Transcriber, spotifyClient *spotify.Client, cfg *AppConfig) *GatewayHandler {
	return &GatewayHandler{
		chat:        chatService,
		registry:    registry,
		transcriber: transcriber,
		spotify:     spotifyClient,
		config:      cfg,
	}
}

// ChatRequest is the body of POST /chat/message.
type ChatRequest struct {
	Message string        `json:"message" binding:"required,min=1,max=5000"`
	History []llm.Message `json:"history"`
}

// SpeakResponse is the body of POST /chat/speak.
type SpeakResponse struct {
	Success         bool           `json:"success"`
	TranscribedText string         `json:"transcribed_text,omitempty"`
	Language        string         `json:"language,omitempty"`
	Response        string         `json:"response,omitempty"`
	ToolResults     []tools.Result `json:"tool_results,omitempty"`
	Error           string         `json:"error,omitempty"`
}

// HandleChatMessage sends a text message to the model and returns its reply
// plus any tool results.
func (h *GatewayHandler) HandleChatMessage(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return
	}

	resp := h.chat.ProcessMessage(c.Request.Context(), req.Message, req.History)
	if !resp.Success {
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleListTools lists the tools the model may call. These are the only
// actions the gateway will ever dispatch.
func (h *GatewayHandler) HandleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"available_tools": h.registry.Names(),
		"count":           h.registry.Count(),
	})
}

// HandleSpeak records and transcribes speech via the transcription
// collaborator, then runs the text through the orchestrator.
func (h *GatewayHandler) HandleSpeak(c *gin.Context) {
	duration := queryInt(c, "duration", 5)
	if duration < 1 || duration > 60 {
		c.JSON(http.StatusBadRequest, SpeakResponse{Error: "duration must be between 1 and 60 seconds"})
		return
	}
	language := c.DefaultQuery("language", h.config.SpeechLanguage)

	ctx, cancel := context.WithTimeout(c.Request.Context(), speech.ContextTimeout(duration))
	defer cancel()

	transcription, err := h.transcriber.Transcribe(ctx, duration, language)
	if err != nil {
		c.JSON(http.StatusBadRequest, SpeakResponse{Error: err.Error()})
		return
	}

	resp := h.chat.ProcessMessage(c.Request.Context(), transcription.Text, nil)
	c.JSON(http.StatusOK, SpeakResponse{
		Success:         resp.Success,
		TranscribedText: transcription.Text,
		Language:        transcription.Language,
		Response:        resp.Response,
		ToolResults:     resp.ToolResults,
		Error:           resp.Error,
	})
}

// HandleSpotifyLogin redirects the user to Spotify's consent page.
func (h *GatewayHandler) HandleSpotifyLogin(c *gin.Context) {
	if !h.spotify.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Spotify credentials not configured"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.spotify.AuthURL())
}

// HandleSpotifyCallback completes the authorization-code flow.
func (h *GatewayHandler) HandleSpotifyCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'code' query parameter"})
		return
	}

	tokenData, err := h.spotify.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tokenData)
}

// HandleHealthz reports build information and the registered tool count.
func (h *GatewayHandler) HandleHealthz(c *gin.Context) {
	info := GetBuildInfo()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    info.Version,
		"git_commit": info.GitCommit,
		"go_version": info.GoVersion,
		"tools":      h.registry.Count(),
	})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1 // out of range, rejected by the caller's bounds check
	}
	return n
}
