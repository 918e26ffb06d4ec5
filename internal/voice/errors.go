package voice

import (
	"errors"
	"fmt"
)

// 采集失败原因，与识别设备上报的错误码对应
type ErrorKind string

const (
	ErrorNoSpeech         ErrorKind = "no-speech"
	ErrorPermissionDenied ErrorKind = "permission-denied"
	ErrorNetwork          ErrorKind = "network"
	ErrorUnknown          ErrorKind = "unknown"
)

// CaptureError 采集异常终止的原因
type CaptureError struct {
	Kind    ErrorKind
	Message string
}

func (e *CaptureError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf 提取错误分类，未知错误归为 ErrorUnknown
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorUnknown
	}
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrorUnknown
}

// ParseKind 把设备上报的错误码归一化
func ParseKind(code string) ErrorKind {
	switch code {
	case "no-speech":
		return ErrorNoSpeech
	case "not-allowed", "permission-denied", "service-not-allowed":
		return ErrorPermissionDenied
	case "network":
		return ErrorNetwork
	default:
		return ErrorUnknown
	}
}
