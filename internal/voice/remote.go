package voice

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"taxbuddy-backend/pkg/logger"
)

// remoteFrame 浏览器与服务端之间的语音帧。
// 服务端下行: "start_capture", "stop_capture", "speak", "cancel_speech"
// 客户端上行: "result", "capture_end", "speech_started", "speech_ended", "speech_error"
type remoteFrame struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Final    bool   `json:"final,omitempty"`
	Language string `json:"language,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Remote 把浏览器端的语音识别和播放桥接为 Capability。
// 每个 WebSocket 连接对应一个实例,连接断开后能力失效
type Remote struct {
	conn *websocket.Conn

	mu       sync.Mutex
	handler  Handler
	playback Playback
	closed   bool
}

func NewRemote(conn *websocket.Conn) *Remote {
	return &Remote{conn: conn}
}

func (r *Remote) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *Remote) StartCapture(language string, h Handler) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrUnavailable
	}
	r.handler = h
	r.mu.Unlock()

	return r.write(remoteFrame{Type: "start_capture", Language: language})
}

func (r *Remote) StopCapture() {
	if err := r.write(remoteFrame{Type: "stop_capture"}); err != nil {
		logger.Debugf("Voice bridge stop_capture write failed: %v", err)
	}
}

func (r *Remote) Speak(text string, p Playback) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrUnavailable
	}
	r.playback = p
	r.mu.Unlock()

	return r.write(remoteFrame{Type: "speak", Text: text})
}

func (r *Remote) CancelSpeech() {
	if err := r.write(remoteFrame{Type: "cancel_speech"}); err != nil {
		logger.Debugf("Voice bridge cancel_speech write failed: %v", err)
	}
}

func (r *Remote) write(frame remoteFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrUnavailable
	}
	return r.conn.WriteJSON(frame)
}

// ReadLoop 读取客户端上行帧并分发回调,连接断开时返回。
// 退出前把最后一次采集标记为结束,避免引擎悬在录音状态
func (r *Remote) ReadLoop() {
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			break
		}

		var frame remoteFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Debugf("Voice bridge invalid frame: %v", err)
			continue
		}

		r.dispatch(frame)
	}

	r.mu.Lock()
	r.closed = true
	handler := r.handler
	r.handler = nil
	r.playback = nil
	r.mu.Unlock()

	if handler != nil {
		handler.OnEnd(nil)
	}
}

func (r *Remote) dispatch(frame remoteFrame) {
	r.mu.Lock()
	handler := r.handler
	playback := r.playback
	r.mu.Unlock()

	switch frame.Type {
	case "result":
		if handler != nil {
			handler.OnResult(frame.Text, frame.Final)
		}
	case "capture_end":
		r.mu.Lock()
		r.handler = nil
		r.mu.Unlock()
		if handler != nil {
			if frame.Error != "" {
				handler.OnEnd(&CaptureError{Kind: ParseKind(frame.Error), Message: frame.Error})
			} else {
				handler.OnEnd(nil)
			}
		}
	case "speech_started":
		if playback != nil {
			playback.OnStart()
		}
	case "speech_ended":
		r.mu.Lock()
		r.playback = nil
		r.mu.Unlock()
		if playback != nil {
			playback.OnEnd()
		}
	case "speech_error":
		r.mu.Lock()
		r.playback = nil
		r.mu.Unlock()
		if playback != nil {
			playback.OnError(&CaptureError{Kind: ErrorUnknown, Message: frame.Error})
		}
	default:
		logger.Debugf("Voice bridge unknown frame type: %s", frame.Type)
	}
}

// Close 主动关闭底层连接
func (r *Remote) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.conn.Close()
}
