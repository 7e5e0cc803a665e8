package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopassist/internal/logger"
	syncer "shopassist/internal/sync"
)

// aiModel is the fixed model selector forwarded with every chat request.
const aiModel = "openai"

// Messenger is the outbound surface the chat relay needs.
type Messenger interface {
	Send(endpoint string, payload map[string]interface{}) (map[string]interface{}, error)
	Stream(endpoint string, payload map[string]interface{}, sink syncer.StreamSink)
	StoreURL() string
}

// ChatToggle reports whether the chat surface is enabled by the operator.
type ChatToggle interface {
	Enabled() bool
}

type ChatHandler struct {
	messenger Messenger
	toggle    ChatToggle
	logger    *logger.Logger
}

func NewChatHandler(messenger Messenger, toggle ChatToggle, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{
		messenger: messenger,
		toggle:    toggle,
		logger:    logger,
	}
}

type chatRequest struct {
	Message   string `json:"message" form:"message"`
	SessionID string `json:"session_id" form:"session_id"`
}

// Chat forwards one message to the assistant and relays the response as a
// single JSON body.
func (h *ChatHandler) Chat(c *gin.Context) {
	if !h.toggle.Enabled() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Chat is disabled"})
		return
	}

	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	resp, err := h.messenger.Send("/chat", map[string]interface{}{
		"store_url":  h.messenger.StoreURL(),
		"message":    req.Message,
		"session_id": req.SessionID,
		"ai_model":   aiModel,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChatStream forwards one message and relays the assistant's event stream to
// the client verbatim.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	if !h.toggle.Enabled() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Chat is disabled"})
		return
	}

	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if req.Message == "" {
		syncer.WriteSSEError(c.Writer, "Message is required")
		return
	}

	if _, ok := c.Writer.(http.Flusher); !ok {
		syncer.WriteSSEError(c.Writer, "Streaming is not supported")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	h.messenger.Stream("/chat/stream", map[string]interface{}{
		"store_url":  h.messenger.StoreURL(),
		"message":    req.Message,
		"session_id": req.SessionID,
		"ai_model":   aiModel,
	}, c.Writer)
}

// History fetches the stored conversation for a session from the assistant.
func (h *ChatHandler) History(c *gin.Context) {
	if !h.toggle.Enabled() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Chat is disabled"})
		return
	}

	var req chatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Session ID is required"})
		return
	}

	resp, err := h.messenger.Send("/chat/history", map[string]interface{}{
		"store_url":  h.messenger.StoreURL(),
		"session_id": req.SessionID,
	})
	if err != nil || resp == nil {
		// A garbled or empty upstream body is surfaced the same as no
		// history at all.
		if err == nil || errors.Is(err, syncer.ErrInvalidResponse) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve chat history"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
