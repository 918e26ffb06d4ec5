package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"taxbuddy-backend/internal/engine"
	"taxbuddy-backend/internal/voice"
	"taxbuddy-backend/pkg/logger"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// 演示用途放开同源限制
		return true
	},
}

// VoiceHandler 语音桥接接口。浏览器通过 WebSocket 把识别结果
// 送上来，并接收采集和朗读指令
type VoiceHandler struct {
	manager *engine.Manager
}

func NewVoiceHandler(manager *engine.Manager) *VoiceHandler {
	return &VoiceHandler{manager: manager}
}

// Serve 升级连接并把远端语音设备绑定到状态机，连接断开后解绑
func (h *VoiceHandler) Serve(c *gin.Context) {
	i, err := h.manager.Get(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interaction not found"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Voice bridge upgrade failed: %v", err)
		return
	}

	remote := voice.NewRemote(conn)
	i.AttachCapability(remote)
	logger.Infof("Voice bridge connected for session %s", c.Param("session_id"))

	remote.ReadLoop()

	i.DetachCapability()
	remote.Close()
	logger.Infof("Voice bridge disconnected for session %s", c.Param("session_id"))
}
