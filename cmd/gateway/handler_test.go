package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anuraag-b/voice-gateway/internal/audit"
	"github.com/anuraag-b/voice-gateway/internal/chat"
	"github.com/anuraag-b/voice-gateway/internal/llm"
	"github.com/anuraag-b/voice-gateway/internal/speech"
	"github.com/anuraag-b/voice-gateway/internal/spotify"
	"github.com/anuraag-b/voice-gateway/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	resp       chat.Response
	gotMessage string
	gotHistory []llm.Message
	callCount  int
}

func (s *stubChatService) ProcessMessage(ctx context.Context, message string, history []llm.Message) chat.Response {
	s.callCount++
	s.gotMessage = message
	s.gotHistory = history
	return s.resp
}

type stubTranscriber struct {
	result *speech.Transcription
	err    error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, durationSeconds int, language string) (*speech.Transcription, error) {
	return s.result, s.err
}

func testRouter(t *testing.T, svc ChatService, transcriber speech.Transcriber) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	trail := audit.NewTrail(false, audit.NewLogSink(io.Discard))
	trail.SetSecurityOutput(io.Discard)
	registry := tools.NewRegistry(trail)
	for _, name := range tools.AllToolNames() {
		registry.Register(name, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{}, nil
		})
	}

	cfg := &AppConfig{SpeechLanguage: "en"}
	handler := NewGatewayHandler(svc, registry, transcriber, spotify.New("", "", ""), cfg)

	engine := gin.New()
	engine.POST("/chat/message", handler.HandleChatMessage)
	engine.GET("/chat/tools", handler.HandleListTools)
	engine.POST("/chat/speak", handler.HandleSpeak)
	engine.GET("/spotify/login", handler.HandleSpotifyLogin)
	engine.GET("/healthz", handler.HandleHealthz)
	return engine
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleChatMessage(t *testing.T) {
	svc := &stubChatService{resp: chat.Response{
		Success:  true,
		Response: "Now playing Yesterday.",
		ToolResults: []tools.Result{
			{Success: true, Tool: "play_song", Result: map[string]any{"status": "playing"}},
		},
	}}
	router := testRouter(t, svc, &stubTranscriber{})

	w := postJSON(router, "/chat/message", gin.H{
		"message": "play Yesterday",
		"history": []gin.H{{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "play Yesterday", svc.gotMessage)
	require.Len(t, svc.gotHistory, 2)
	assert.Equal(t, llm.RoleAssistant, svc.gotHistory[1].Role)

	var resp chat.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Now playing Yesterday.", resp.Response)
	require.Len(t, resp.ToolResults, 1)
	assert.Equal(t, "play_song", resp.ToolResults[0].Tool)
}

func TestHandleChatMessageValidation(t *testing.T) {
	svc := &stubChatService{}
	router := testRouter(t, svc, &stubTranscriber{})

	tests := []struct {
		name string
		body any
	}{
		{"missing message", gin.H{}},
		{"empty message", gin.H{"message": ""}},
		{"not json", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/chat/message", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Zero(t, svc.callCount, "invalid requests must not reach the orchestrator")
}

func TestHandleChatMessageModelFailure(t *testing.T) {
	svc := &stubChatService{resp: chat.Response{
		Success: false,
		Error:   "Could not connect to the language model server. Check that it is running and reachable.",
	}}
	router := testRouter(t, svc, &stubTranscriber{})

	w := postJSON(router, "/chat/message", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "language model server")
}

func TestHandleListTools(t *testing.T) {
	router := testRouter(t, &stubChatService{}, &stubTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/chat/tools", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AvailableTools []string `json:"available_tools"`
		Count          int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(tools.AllToolNames()), resp.Count)
	assert.Contains(t, resp.AvailableTools, "play_song")
	assert.Contains(t, resp.AvailableTools, "get_wiki_summary")
}

func TestHandleSpeak(t *testing.T) {
	svc := &stubChatService{resp: chat.Response{Success: true, Response: "Sunny, 21 degrees."}}
	transcriber := &stubTranscriber{result: &speech.Transcription{
		Text:     "what's the weather in Oslo",
		Language: "en",
	}}
	router := testRouter(t, svc, transcriber)

	w := postJSON(router, "/chat/speak?duration=7", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "what's the weather in Oslo", svc.gotMessage)

	var resp SpeakResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "what's the weather in Oslo", resp.TranscribedText)
	assert.Equal(t, "Sunny, 21 degrees.", resp.Response)
}

func TestHandleSpeakDurationBounds(t *testing.T) {
	svc := &stubChatService{}
	router := testRouter(t, svc, &stubTranscriber{})

	for _, query := range []string{"duration=0", "duration=61", "duration=abc"} {
		w := postJSON(router, "/chat/speak?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
	assert.Zero(t, svc.callCount)
}

func TestHandleSpeakTranscriptionError(t *testing.T) {
	svc := &stubChatService{}
	transcriber := &stubTranscriber{err: errors.New("transcription produced no text")}
	router := testRouter(t, svc, transcriber)

	w := postJSON(router, "/chat/speak", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no text")
	assert.Zero(t, svc.callCount)
}

func TestHandleSpotifyLoginUnconfigured(t *testing.T) {
	router := testRouter(t, &stubChatService{}, &stubTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/spotify/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleHealthz(t *testing.T) {
	router := testRouter(t, &stubChatService{}, &stubTranscriber{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
