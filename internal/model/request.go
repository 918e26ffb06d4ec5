package model

type CreateSessionRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

type SubmitRequest struct {
	Message string `json:"message" binding:"required"`
}

// SelectModeRequest 选择交互模式，mode 取值 chat 或 voice
type SelectModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// ClearRequest 清空历史需要显式确认，confirmed=false 时不执行
type ClearRequest struct {
	Confirmed bool `json:"confirmed"`
}

type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

type SpeakRequest struct {
	MessageID string `json:"message_id" binding:"required"`
}

type UploadRequest struct {
	FileName  string `json:"file_name" binding:"required"`
	SizeBytes int64  `json:"size_bytes"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password"`
	FilingStatus string `json:"filing_status"`
}

// UserTypeRequest 演示入口按预设用户类型登录
type UserTypeRequest struct {
	UserType string `json:"user_type" binding:"required"`
}
