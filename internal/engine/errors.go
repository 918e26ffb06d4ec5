package engine

import "errors"

var (
	// ErrEmptyMessage 提交内容为空白
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong 提交内容超过长度上限
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	// ErrResponsePending 上一条回复尚未完成
	ErrResponsePending = errors.New("a response is already pending")
	// ErrModeNotSelected 尚未选择交互模式
	ErrModeNotSelected = errors.New("interaction mode not selected")
	// ErrModeAlreadySet 已经处于某个交互模式
	ErrModeAlreadySet = errors.New("interaction mode already selected")
	// ErrNotConfirmed 清空历史未经确认
	ErrNotConfirmed = errors.New("clear not confirmed")
	// ErrInvalidLanguage 不支持的识别语言
	ErrInvalidLanguage = errors.New("unsupported voice language")
	// ErrMessageNotFound 指定消息不存在
	ErrMessageNotFound = errors.New("message not found")
)
