package voice

import "errors"

// ErrUnavailable 当前连接没有可用的语音能力
var ErrUnavailable = errors.New("speech capability not available")

// Handler 接收语音识别回调
type Handler interface {
	// OnResult 识别到文本。final 为 false 表示中间结果
	OnResult(text string, final bool)
	// OnEnd 一次采集结束。err 非空表示异常终止
	OnEnd(err error)
}

// Playback 接收语音播放回调
type Playback interface {
	OnStart()
	OnEnd()
	OnError(err error)
}

// Capability 语音能力边界。识别和播放由外部设备提供，
// 引擎只通过该接口交互,能力缺失时降级为纯文本
type Capability interface {
	Available() bool
	// StartCapture 以指定语言开始采集。回调在采集结束前有效
	StartCapture(language string, h Handler) error
	StopCapture()
	// Speak 播放一段文本
	Speak(text string, p Playback) error
	CancelSpeech()
}

type unavailable struct{}

// Unavailable 返回无语音设备时的空实现
func Unavailable() Capability {
	return unavailable{}
}

func (unavailable) Available() bool { return false }

func (unavailable) StartCapture(language string, h Handler) error {
	return ErrUnavailable
}

func (unavailable) StopCapture() {}

func (unavailable) Speak(text string, p Playback) error {
	return ErrUnavailable
}

func (unavailable) CancelSpeech() {}
