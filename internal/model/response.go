package model

import "time"

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	CurrentTopic string    `json:"current_topic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// InteractionStateResponse 当前交互状态快照，供前端恢复界面
type InteractionStateResponse struct {
	SessionID       string          `json:"session_id"`
	Mode            InteractionMode `json:"mode"`
	PendingResponse bool            `json:"pending_response"`
	Calculating     bool            `json:"calculating"`
	MessageCount    int             `json:"message_count"`
	Voice           VoiceSession    `json:"voice"`
}

// ExportedMessage 导出文档中的单条消息
type ExportedMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportDocument 会话导出文档，只读、单向导出
type ExportDocument struct {
	SessionID    string            `json:"session_id"`
	UserName     string            `json:"user_name"`
	ExportedAt   time.Time         `json:"exported_at"`
	MessageCount int               `json:"message_count"`
	Messages     []ExportedMessage `json:"messages"`
}
