package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taxbuddy-backend/internal/config"
	"taxbuddy-backend/internal/intent"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/storage"
	"taxbuddy-backend/pkg/logger"
)

// ChatService 会话存取服务：打开、记录、导出、清空，外加过期清理
type ChatService struct {
	storage storage.Storage
	config  *config.SessionConfig
	stop    chan struct{}
}

func NewChatService(cfg *config.Config) *ChatService {
	var store storage.Storage

	switch cfg.Storage.Type {
	case "disk":
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	case "sqlite":
		store = storage.NewSQLiteStorage(cfg.Storage.DataDir)
	default:
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		store.Init()
	}

	cs := &ChatService{
		storage: store,
		config:  &cfg.Session,
		stop:    make(chan struct{}),
	}

	go cs.cleanupOldSessions()

	return cs
}

// NewChatServiceWithStorage 注入存储实例，测试用
func NewChatServiceWithStorage(store storage.Storage, cfg *config.Config) *ChatService {
	return &ChatService{
		storage: store,
		config:  &cfg.Session,
		stop:    make(chan struct{}),
	}
}

// Open 为用户打开一个新会话
func (s *ChatService) Open(userID string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:           fmt.Sprintf("session_%s_%d", userID, now.UnixNano()),
		UserID:       userID,
		Title:        "Tax Consultation " + now.Format("2006-01-02 15:04"),
		Messages:     make([]model.Message, 0),
		CurrentTopic: string(intent.TopicGeneral),
		StartTime:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (s *ChatService) Get(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("session not found: %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// Record 追加一条消息并同步更新会话话题和最近意图。
// 取会话、追加、更新作为一次存储写入完成，对外表现为单个逻辑步骤。
func (s *ChatService) Record(sessionID string, message *model.Message, topic, lastIntent string) error {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return fmt.Errorf("session not found: %s: %w", sessionID, err)
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	message.SessionID = sessionID
	session.Messages = append(session.Messages, *message)

	if topic != "" {
		session.CurrentTopic = topic
	}
	if lastIntent != "" {
		session.State.LastIntent = lastIntent
	}

	// 第一条用户消息作为会话标题
	if message.Role == model.RoleUser && strings.HasPrefix(session.Title, "Tax Consultation") {
		session.Title = truncateString(message.Content, 30)
	}

	session.UpdatedAt = time.Now()

	if err := s.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}

	return nil
}

func (s *ChatService) History(sessionID string) ([]model.Message, error) {
	messages, err := s.storage.GetMessages(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("session not found: %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	result := make([]model.Message, len(messages))
	for i, msg := range messages {
		result[i] = *msg
	}

	return result, nil
}

// Clear 丢弃现有会话并为同一用户重新打开新会话
func (s *ChatService) Clear(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("session not found: %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID := session.UserID

	if err := s.storage.DeleteSession(sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	return s.Open(userID)
}

// Export 生成只读导出文档
func (s *ChatService) Export(sessionID, userName string) (*model.ExportDocument, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]model.ExportedMessage, len(session.Messages))
	for i, msg := range session.Messages {
		messages[i] = model.ExportedMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}

	return &model.ExportDocument{
		SessionID:    session.ID,
		UserName:     userName,
		ExportedAt:   time.Now(),
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

func (s *ChatService) ListSessions() ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

func (s *ChatService) Delete(sessionID string) error {
	if err := s.storage.DeleteSession(sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return fmt.Errorf("session not found: %s: %w", sessionID, err)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (s *ChatService) ClearAll() error {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, session := range sessions {
		if err := s.storage.DeleteSession(session.ID); err != nil {
			logger.Errorf("Failed to delete session %s: %v", session.ID, err)
		}
	}

	return nil
}

func (s *ChatService) cleanupOldSessions() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sessions, err := s.storage.ListSessions()
			if err != nil {
				logger.Errorf("Failed to list sessions for cleanup: %v", err)
				continue
			}

			cutoff := time.Now().Add(-s.config.TTL)
			for _, session := range sessions {
				if session.UpdatedAt.Before(cutoff) {
					if err := s.storage.DeleteSession(session.ID); err != nil {
						logger.Errorf("Failed to delete expired session %s: %v", session.ID, err)
					} else {
						logger.Infof("Cleaned up expired session: %s", session.ID)
					}
				}
			}
		case <-s.stop:
			return
		}
	}
}

// Stop 停止后台清理
func (s *ChatService) Stop() {
	close(s.stop)
}

// GetStorage 返回存储实例，供需要共享存储的组件使用
func (s *ChatService) GetStorage() storage.Storage {
	return s.storage
}

func truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}
