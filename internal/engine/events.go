package engine

import "taxbuddy-backend/internal/model"

// EventType 交互事件类型
type EventType string

const (
	// EventMessage 会话新增一条消息
	EventMessage EventType = "message"
	// EventTyping 正在生成回复的指示开或关
	EventTyping EventType = "typing"
	// EventCalculating 计算类请求的额外等待期开或关
	EventCalculating EventType = "calculating"
	// EventModeChanged 交互模式变化
	EventModeChanged EventType = "mode_changed"
	// EventVoiceState 语音会话状态快照
	EventVoiceState EventType = "voice_state"
	// EventSessionReset 会话被清空并重建
	EventSessionReset EventType = "session_reset"
	// EventSpeak 一段文本开始朗读
	EventSpeak EventType = "speak"
)

// Event 交互状态变化的对外通知
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"session_id"`
	Message   *model.Message        `json:"message,omitempty"`
	Mode      model.InteractionMode `json:"mode,omitempty"`
	Active    bool                  `json:"active,omitempty"`
	Voice     *model.VoiceSession   `json:"voice,omitempty"`
	Text      string                `json:"text,omitempty"`
}

// Listener 事件回调。在引擎锁内按发生顺序调用，
// 回调内不要再调用引擎方法，耗时处理应转发到自己的通道
type Listener func(Event)
