package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxbuddy-backend/internal/auth"
	"taxbuddy-backend/internal/engine"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/service"
	"taxbuddy-backend/pkg/logger"
)

// ChatHandler 会话生命周期接口
type ChatHandler struct {
	chatService *service.ChatService
	authService *auth.Service
	manager     *engine.Manager
	hub         *Hub
}

func NewChatHandler(chatService *service.ChatService, authService *auth.Service, manager *engine.Manager, hub *Hub) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		authService: authService,
		manager:     manager,
		hub:         hub,
	}
}

// CreateSession 创建会话并启动对应的交互状态机
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user *model.User
	if req.UserID == "" {
		user = h.authService.LoginAsGuest()
	} else {
		var err error
		user, err = h.authService.GetUser(req.UserID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
	}

	interaction, err := h.manager.Start(*user)
	if err != nil {
		logger.Errorf("Failed to start interaction: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	h.hub.Bind(interaction)

	session := interaction.Session()
	c.JSON(http.StatusOK, gin.H{
		"session": sessionResponse(&session),
		"user":    user,
	})
}

// GetSession 查询会话
func (h *ChatHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.chatService.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetMessages 查询会话消息
func (h *ChatHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.History(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
		"count":      len(messages),
	})
}

// GetSessionList 列出全部会话
func (h *ChatHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		logger.Errorf("Failed to list sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]*model.SessionResponse, len(sessions))
	for i, s := range sessions {
		list[i] = sessionResponse(s)
	}

	c.JSON(http.StatusOK, gin.H{"sessions": list, "count": len(list)})
}

// DeleteSession 删除会话和状态机
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	h.manager.Remove(sessionID)

	if err := h.chatService.Delete(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

// ClearAllSessions 删除全部会话
func (h *ChatHandler) ClearAllSessions(c *gin.Context) {
	h.manager.Close()

	if err := h.chatService.ClearAll(); err != nil {
		logger.Errorf("Failed to clear sessions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all sessions cleared"})
}

func sessionResponse(s *model.Session) *model.SessionResponse {
	return &model.SessionResponse{
		SessionID:    s.ID,
		Title:        s.Title,
		CurrentTopic: s.CurrentTopic,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

func interactionStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInteractionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrResponsePending):
		return http.StatusConflict
	case errors.Is(err, engine.ErrEmptyMessage),
		errors.Is(err, engine.ErrMessageTooLong),
		errors.Is(err, engine.ErrModeNotSelected),
		errors.Is(err, engine.ErrModeAlreadySet),
		errors.Is(err, engine.ErrInvalidLanguage),
		errors.Is(err, engine.ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrMessageNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
