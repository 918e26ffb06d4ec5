package model

import "time"

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// InteractionMode 交互模式：文字聊天或语音对话，二者互斥
type InteractionMode string

const (
	ModeUnset InteractionMode = "unset"
	ModeChat  InteractionMode = "chat"
	ModeVoice InteractionMode = "voice"
)

// Valid 判断是否为可选择的模式（unset 不可主动选择）
func (m InteractionMode) Valid() bool {
	return m == ModeChat || m == ModeVoice
}

// 语音识别支持的语言
const (
	LanguageEnglish = "en-US"
	LanguageHindi   = "hi-IN"
)

// Action 消息附带的操作入口，点击时以 Label 文本重新提交
type Action struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type Message struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Topic       string    `json:"topic,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Actions     []Action  `json:"actions,omitempty"`
	Confidence  float64   `json:"confidence,omitempty"`
	Sources     []string  `json:"sources,omitempty"`
	IsError     bool      `json:"is_error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationState 会话内的对话状态
type ConversationState struct {
	LastIntent      string `json:"last_intent,omitempty"`
	FollowUpContext string `json:"follow_up_context,omitempty"`
}

type Session struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Title        string            `json:"title"`
	Messages     []Message         `json:"messages"`
	CurrentTopic string            `json:"current_topic"`
	State        ConversationState `json:"conversation_state"`
	StartTime    time.Time         `json:"start_time"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// VoiceSession 语音会话状态，仅在语音模式下有效；会话结束时整体清零
type VoiceSession struct {
	Active         bool   `json:"active"`
	Recording      bool   `json:"recording"`
	Speaking       bool   `json:"speaking"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	InterimText    string `json:"interim_text,omitempty"`
	Language       string `json:"language"`
	LastError      string `json:"last_error,omitempty"`
}

// Preferences 用户偏好设置
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	AutoSave      bool   `json:"auto_save"`
}

// User 模拟用户，身份仅用于标记会话和问候语
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	FilingStatus string      `json:"filing_status"`
	IsGuest      bool        `json:"is_guest"`
	Preferences  Preferences `json:"preferences"`
	LastLogin    time.Time   `json:"last_login"`
}
