package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxbuddy-backend/internal/engine"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/utils"
	"taxbuddy-backend/pkg/logger"
)

// InteractHandler 交互状态机接口
type InteractHandler struct {
	manager *engine.Manager
	hub     *Hub
}

func NewInteractHandler(manager *engine.Manager, hub *Hub) *InteractHandler {
	return &InteractHandler{manager: manager, hub: hub}
}

func (h *InteractHandler) interaction(c *gin.Context) (*engine.Interaction, bool) {
	i, err := h.manager.Get(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interaction not found"})
		return nil, false
	}
	return i, true
}

// SelectMode 选择交互模式
func (h *InteractHandler) SelectMode(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.SelectModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch model.InteractionMode(req.Mode) {
	case model.ModeChat:
		err = i.StartChat()
	case model.ModeVoice:
		err = i.StartVoice()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be chat or voice"})
		return
	}

	if err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// Message 提交用户输入，以 SSE 流式返回本轮事件直到回复完成
func (h *InteractHandler) Message(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 先订阅再提交，本轮事件一条不漏
	events := h.hub.Subscribe(i)
	defer h.hub.Unsubscribe(i, events)

	if err := i.Submit(req.Message); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}

	sseWriter := utils.NewSSEWriter(c.Writer)

	// 回复链路最长是计算等待加打字延迟，留足余量
	timeout := time.NewTimer(30 * time.Second)
	defer timeout.Stop()

	for {
		select {
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				logger.Errorf("Failed to marshal event: %v", err)
				continue
			}
			if err := sseWriter.Write(string(e.Type), string(data)); err != nil {
				logger.Errorf("Failed to write SSE: %v", err)
				return
			}
			// 打字指示关闭即本轮结束
			if e.Type == engine.EventTyping && !e.Active {
				sseWriter.Close()
				return
			}
		case <-timeout.C:
			logger.Warn("Message stream timed out waiting for response")
			sseWriter.Close()
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// Events 持续订阅状态机事件，供前端刷新界面状态
func (h *InteractHandler) Events(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	events := h.hub.Subscribe(i)
	defer h.hub.Unsubscribe(i, events)

	sseWriter := utils.NewSSEWriter(c.Writer)

	for {
		select {
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				logger.Errorf("Failed to marshal event: %v", err)
				continue
			}
			if err := sseWriter.Write(string(e.Type), string(data)); err != nil {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

// State 返回交互状态快照
func (h *InteractHandler) State(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// Home 返回首页：语音会话进行中等价于结束语音，否则清空重建
func (h *InteractHandler) Home(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	oldID := c.Param("session_id")
	if err := i.NavigateHome(); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.manager.Rebind(oldID, i)

	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// Clear 清空历史，必须显式确认
func (h *InteractHandler) Clear(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oldID := c.Param("session_id")
	if err := i.ClearHistory(req.Confirmed); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.manager.Rebind(oldID, i)

	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// EndVoice 结束语音会话
func (h *InteractHandler) EndVoice(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	i.EndVoice()
	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// Language 切换语音识别语言
func (h *InteractHandler) Language(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := i.SetLanguage(req.Language); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": i.State()})
}

// Speak 重新朗读一条助手消息
func (h *InteractHandler) Speak(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := i.SpeakMessage(req.MessageID); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "speaking"})
}

// Upload 模拟文档上传
func (h *InteractHandler) Upload(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	var req model.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := i.Upload(req.FileName, req.SizeBytes); err != nil {
		c.JSON(interactionStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "upload accepted"})
}

// Export 导出会话为 JSON 附件
func (h *InteractHandler) Export(c *gin.Context) {
	i, ok := h.interaction(c)
	if !ok {
		return
	}

	doc, err := i.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("taxbuddy-chat-%d.json", time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.JSON(http.StatusOK, doc)
}
