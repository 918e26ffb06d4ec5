package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"taxbuddy-backend/internal/config"
	"taxbuddy-backend/internal/intent"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/responder"
	"taxbuddy-backend/internal/service"
	"taxbuddy-backend/internal/voice"
	"taxbuddy-backend/pkg/logger"
)

// 回答默认附带的参考来源
var defaultSources = []string{
	"IRS Publication 17",
	"Tax Code Section 62",
	"Form 1040 Instructions",
}

// 语音模式下拦截的结束指令
var endSessionCommands = []string{"end session", "stop session", "end voice"}

// 非语音模式下的唤醒词
const wakePhrase = "talk to buddy"

// Interaction 单个会话的交互状态机。
// 所有状态在互斥锁下变更；延时行为全部经由 Scheduler 排期，
// 过期任务用代番号短路：voiceEpoch 随语音会话结束递增，
// convEpoch 随历史清空递增。
type Interaction struct {
	mu sync.Mutex

	svc   *service.ChatService
	gen   *responder.Generator
	sched Scheduler
	cfg   *config.Config
	cap   voice.Capability

	user    model.User
	session *model.Session

	mode        model.InteractionMode
	pending     bool
	calculating bool
	voice       model.VoiceSession

	voiceEpoch uint64
	convEpoch  uint64

	pendingTask  Task
	calcTask     Task
	warmupTask   Task
	restartTask  Task
	errClearTask Task
	speakTask    Task
	tick         Task

	listener Listener
	closed   bool
}

// New 打开会话并返回初始状态机（模式未选定）
func New(svc *service.ChatService, gen *responder.Generator, sched Scheduler, cfg *config.Config, user model.User) (*Interaction, error) {
	session, err := svc.Open(user.ID)
	if err != nil {
		return nil, err
	}

	return &Interaction{
		svc:     svc,
		gen:     gen,
		sched:   sched,
		cfg:     cfg,
		cap:     voice.Unavailable(),
		user:    user,
		session: session,
		mode:    model.ModeUnset,
		voice:   model.VoiceSession{Language: cfg.Voice.DefaultLanguage},
	}, nil
}

func (i *Interaction) SetListener(l Listener) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.listener = l
}

// AttachCapability 绑定语音设备，通常在语音桥接连接建立时调用
func (i *Interaction) AttachCapability(c voice.Capability) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cap = c
}

// DetachCapability 解绑语音设备。采集中的话当作一次正常结束
func (i *Interaction) DetachCapability() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cap = voice.Unavailable()
	if i.voice.Recording {
		i.voice.Recording = false
		i.voice.InterimText = ""
		i.emitVoiceState()
	}
}

// Session 返回当前会话快照
func (i *Interaction) Session() model.Session {
	i.mu.Lock()
	defer i.mu.Unlock()
	return *i.session
}

// State 返回交互状态快照
func (i *Interaction) State() model.InteractionStateResponse {
	i.mu.Lock()
	defer i.mu.Unlock()
	return model.InteractionStateResponse{
		SessionID:       i.session.ID,
		Mode:            i.mode,
		PendingResponse: i.pending,
		Calculating:     i.calculating,
		MessageCount:    len(i.session.Messages),
		Voice:           i.voice,
	}
}

// Export 导出当前会话
func (i *Interaction) Export() (*model.ExportDocument, error) {
	i.mu.Lock()
	sessionID := i.session.ID
	userName := i.user.Name
	i.mu.Unlock()
	return i.svc.Export(sessionID, userName)
}

// StartChat 进入文字聊天模式并播种问候消息
func (i *Interaction) StartChat() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.mode != model.ModeUnset {
		return ErrModeAlreadySet
	}

	i.mode = model.ModeChat
	i.emit(Event{Type: EventModeChanged, Mode: i.mode})

	greeting := fmt.Sprintf("Hello %s! I'm TaxBuddy, your AI tax assistant. I'm here to help you with tax questions, deductions, filing guidance, and more. How can I assist you today?", i.user.Name)
	i.appendLocked(&model.Message{
		ID:        messageID("welcome"),
		Role:      model.RoleAssistant,
		Content:   greeting,
		Topic:     "welcome",
		Timestamp: time.Now(),
	}, "", "")

	return nil
}

// StartVoice 进入语音模式：播种语音问候、排期问候语朗读、
// 启动计时、预热期结束后开始采集。已在语音模式时无效果
func (i *Interaction) StartVoice() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.startVoiceLocked()
}

func (i *Interaction) startVoiceLocked() error {
	if i.mode == model.ModeVoice {
		return ErrModeAlreadySet
	}

	i.mode = model.ModeVoice
	i.voice.Active = true
	i.voice.ElapsedSeconds = 0
	i.emit(Event{Type: EventModeChanged, Mode: i.mode})
	i.emitVoiceState()

	greeting := fmt.Sprintf(`Hello %s! I'm TaxBuddy, your AI tax assistant. You can speak to me naturally, and I'll respond with voice. Say "end session" to stop. How can I assist you today?`, i.user.Name)
	i.appendLocked(&model.Message{
		ID:        messageID("welcome"),
		Role:      model.RoleAssistant,
		Content:   greeting,
		Topic:     "welcome",
		Timestamp: time.Now(),
	}, "", "")

	epoch := i.voiceEpoch

	i.tick = i.sched.Every(time.Second, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.voiceEpoch || !i.voice.Active {
			return
		}
		i.voice.ElapsedSeconds++
		i.emitVoiceState()
	})

	i.speakTask = i.sched.After(i.cfg.Voice.SpeakLeadDelay, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.voiceEpoch {
			return
		}
		i.speakLocked(greeting)
	})

	if !i.cap.Available() {
		i.voiceErrorLocked("Speech recognition not supported in this browser. Please use Chrome or Edge.", i.cfg.Voice.ErrorClearDelay)
		return nil
	}

	i.warmupTask = i.sched.After(i.cfg.Voice.WarmupDelay, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.voiceEpoch || !i.voice.Active {
			return
		}
		i.startCaptureLocked()
	})

	return nil
}

// StartCapture 手动开始一次语音采集。能力缺失时只记录错误，
// 文字输入不受影响
func (i *Interaction) StartCapture() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.cap.Available() {
		i.voiceErrorLocked("Speech recognition not supported in this browser. Please use Chrome or Edge.", i.cfg.Voice.ErrorClearDelay)
		return nil
	}

	i.voice.LastError = ""
	i.startCaptureLocked()
	return nil
}

// StopCapture 手动停止采集
func (i *Interaction) StopCapture() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cap.StopCapture()
	if i.voice.Recording {
		i.voice.Recording = false
		i.emitVoiceState()
	}
}

func (i *Interaction) startCaptureLocked() {
	handler := captureHandler{i: i, epoch: i.voiceEpoch}
	if err := i.cap.StartCapture(i.voice.Language, handler); err != nil {
		logger.Warnf("Voice capture start failed: %v", err)
		i.voiceErrorLocked("Failed to start voice recognition. Please check microphone permissions.", i.cfg.Voice.ErrorClearDelay)
		return
	}
	i.voice.Recording = true
	i.emitVoiceState()
}

// Submit 提交一段用户输入（打字或语音转写走同一条路径）
func (i *Interaction) Submit(text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.mode == model.ModeUnset {
		return ErrModeNotSelected
	}

	return i.submitLocked(text)
}

func (i *Interaction) submitLocked(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	if len(trimmed) > i.cfg.Chat.MaxMessageLength {
		return ErrMessageTooLong
	}
	if i.pending {
		return ErrResponsePending
	}

	i.appendLocked(&model.Message{
		ID:        messageID("user"),
		Role:      model.RoleUser,
		Content:   trimmed,
		Timestamp: time.Now(),
	}, "", "")

	i.pending = true
	i.emit(Event{Type: EventTyping, Active: true})

	epoch := i.convEpoch

	lower := strings.ToLower(trimmed)
	isComplex := strings.Contains(lower, "calculate") ||
		strings.Contains(lower, "estimate") ||
		strings.Contains(lower, "how much")

	if isComplex {
		i.calculating = true
		i.emit(Event{Type: EventCalculating, Active: true})
		i.calcTask = i.sched.After(i.cfg.Chat.CalculatingDelay, func() {
			i.mu.Lock()
			defer i.mu.Unlock()
			if epoch != i.convEpoch || !i.pending {
				return
			}
			i.calculating = false
			i.emit(Event{Type: EventCalculating, Active: false})
			i.scheduleResponseLocked(epoch, trimmed)
		})
		return nil
	}

	i.scheduleResponseLocked(epoch, trimmed)
	return nil
}

func (i *Interaction) scheduleResponseLocked(epoch uint64, text string) {
	i.pendingTask = i.sched.After(i.cfg.Chat.TypingIndicatorDelay, func() {
		i.finishResponse(epoch, text)
	})
}

func (i *Interaction) finishResponse(epoch uint64, text string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if epoch != i.convEpoch || !i.pending {
		return
	}

	topic, ok := intent.Classify(text)
	if !ok {
		// 未识别时沿用会话当前话题
		topic = intent.Topic(i.session.CurrentTopic)
		if topic == "" {
			topic = intent.TopicGeneral
		}
	}

	resp := i.gen.Generate(topic, text, i.session)

	confidence := resp.Confidence
	if confidence == 0 {
		confidence = 0.95
	}

	message := &model.Message{
		ID:          messageID("ai"),
		Role:        model.RoleAssistant,
		Content:     resp.Message,
		Topic:       string(resp.Topic),
		Suggestions: resp.Suggestions,
		Actions:     resp.Actions,
		Confidence:  confidence,
		Sources:     defaultSources,
		Timestamp:   time.Now(),
	}

	if err := i.appendLocked(message, string(resp.Topic), string(resp.Topic)); err != nil {
		logger.Errorf("Response generation failed: %v", err)
		i.appendLocked(&model.Message{
			ID:        messageID("error"),
			Role:      model.RoleAssistant,
			Content:   "I apologize, but I encountered an error processing your message. Please try again.",
			IsError:   true,
			Timestamp: time.Now(),
		}, "", "")
		i.pending = false
		i.emit(Event{Type: EventTyping, Active: false})
		return
	}

	i.pending = false
	i.emit(Event{Type: EventTyping, Active: false})

	if i.mode == model.ModeVoice {
		voiceEpoch := i.voiceEpoch
		content := resp.Message
		i.speakTask = i.sched.After(i.cfg.Voice.SpeakLeadDelay, func() {
			i.mu.Lock()
			defer i.mu.Unlock()
			if voiceEpoch != i.voiceEpoch {
				return
			}
			i.speakLocked(content)
		})
	}
}

// EndVoice 结束语音会话：停止采集和朗读，语音状态整体清零，
// 回到模式选择。无语音会话时无效果
func (i *Interaction) EndVoice() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.endVoiceLocked()
}

func (i *Interaction) endVoiceLocked() {
	if i.mode != model.ModeVoice && !i.voice.Active {
		return
	}

	i.voiceEpoch++
	cancelAll(i.warmupTask, i.restartTask, i.errClearTask, i.speakTask, i.tick)
	i.warmupTask, i.restartTask, i.errClearTask, i.speakTask, i.tick = nil, nil, nil, nil, nil

	i.cap.StopCapture()
	i.cap.CancelSpeech()

	i.voice = model.VoiceSession{Language: i.cfg.Voice.DefaultLanguage}
	i.mode = model.ModeUnset

	i.emitVoiceState()
	i.emit(Event{Type: EventModeChanged, Mode: i.mode})
}

// NavigateHome 返回首页。语音会话进行中等价于结束语音会话；
// 否则清空历史、话题归位并回到模式选择
func (i *Interaction) NavigateHome() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.voice.Active {
		i.endVoiceLocked()
		return nil
	}

	if err := i.resetSessionLocked(); err != nil {
		return err
	}
	i.mode = model.ModeUnset
	i.emit(Event{Type: EventSessionReset, Mode: i.mode})
	return nil
}

// ClearHistory 清空会话历史并重建会话，交互模式保持不变。
// 未经确认时不做任何事
func (i *Interaction) ClearHistory(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.resetSessionLocked(); err != nil {
		return err
	}
	i.emit(Event{Type: EventSessionReset, Mode: i.mode})
	return nil
}

func (i *Interaction) resetSessionLocked() error {
	i.convEpoch++
	cancelAll(i.pendingTask, i.calcTask)
	i.pendingTask, i.calcTask = nil, nil

	if i.pending {
		i.pending = false
		i.emit(Event{Type: EventTyping, Active: false})
	}
	if i.calculating {
		i.calculating = false
		i.emit(Event{Type: EventCalculating, Active: false})
	}

	session, err := i.svc.Clear(i.session.ID)
	if err != nil {
		return err
	}
	i.session = session
	return nil
}

// SetLanguage 切换识别语言，下次采集启动时生效
func (i *Interaction) SetLanguage(lang string) error {
	if lang != model.LanguageEnglish && lang != model.LanguageHindi {
		return ErrInvalidLanguage
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.voice.Language = lang
	i.emitVoiceState()
	return nil
}

// SpeakMessage 重新朗读一条助手消息
func (i *Interaction) SpeakMessage(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	for idx := range i.session.Messages {
		msg := &i.session.Messages[idx]
		if msg.ID == id && msg.Role == model.RoleAssistant {
			i.speakLocked(msg.Content)
			return nil
		}
	}
	return ErrMessageNotFound
}

// Upload 模拟文档上传，处理完成后追加一条系统消息
func (i *Interaction) Upload(fileName string, sizeBytes int64) error {
	if strings.TrimSpace(fileName) == "" {
		return ErrEmptyMessage
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	epoch := i.convEpoch
	i.sched.After(i.cfg.Upload.ProcessingDelay, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.convEpoch {
			return
		}
		content := fmt.Sprintf("📄 Document uploaded: %s (%.1fKB)\n✅ Document processed and analyzed", fileName, float64(sizeBytes)/1024)
		i.appendLocked(&model.Message{
			ID:        messageID("system"),
			Role:      model.RoleSystem,
			Content:   content,
			Timestamp: time.Now(),
		}, "", "")
	})

	return nil
}

// Close 释放状态机持有的全部定时任务
func (i *Interaction) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return
	}
	i.closed = true
	i.voiceEpoch++
	i.convEpoch++
	cancelAll(i.pendingTask, i.calcTask, i.warmupTask, i.restartTask, i.errClearTask, i.speakTask, i.tick)
	i.cap.StopCapture()
	i.cap.CancelSpeech()
}

// captureResult 处理识别结果。指令在进入历史前拦截：
// 结束指令只在语音模式生效，唤醒词只在语音模式之外生效，
// 其余非语音模式下的转写直接丢弃
func (i *Interaction) captureResult(epoch uint64, text string, final bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if epoch != i.voiceEpoch {
		return
	}

	if !final {
		i.voice.InterimText = text
		i.emitVoiceState()
		return
	}

	command := strings.ToLower(strings.TrimSpace(text))

	if i.mode == model.ModeVoice {
		for _, c := range endSessionCommands {
			if strings.Contains(command, c) {
				i.endVoiceLocked()
				return
			}
		}
	}

	if i.mode != model.ModeVoice && strings.Contains(command, wakePhrase) {
		if err := i.startVoiceLocked(); err != nil {
			logger.Warnf("Wake phrase ignored: %v", err)
		}
		return
	}

	if i.mode != model.ModeVoice {
		i.voice.InterimText = ""
		i.emitVoiceState()
		return
	}

	i.voice.InterimText = ""
	i.emitVoiceState()
	if err := i.submitLocked(text); err != nil {
		logger.Debugf("Voice transcript rejected: %v", err)
	}
}

// captureEnded 一次采集结束。异常原因按类别提示并自动清除；
// 语音会话仍在进行时经过缓冲间隔自动重启采集
func (i *Interaction) captureEnded(epoch uint64, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if epoch != i.voiceEpoch {
		return
	}

	i.voice.Recording = false
	i.voice.InterimText = ""
	i.emitVoiceState()

	if err != nil {
		switch voice.KindOf(err) {
		case voice.ErrorNoSpeech:
			i.voiceErrorLocked("No speech detected. Please try again.", i.cfg.Voice.ErrorClearDelay)
		case voice.ErrorPermissionDenied:
			i.voiceErrorLocked("Microphone access denied. Please allow microphone access and try again.", i.cfg.Voice.PermissionClearDelay)
		case voice.ErrorNetwork:
			i.voiceErrorLocked("Network error. Please check your internet connection.", i.cfg.Voice.ErrorClearDelay)
		default:
			i.voiceErrorLocked(fmt.Sprintf("Voice recognition error: %v", err), i.cfg.Voice.ErrorClearDelay)
		}
	}

	if !i.voice.Active || i.mode != model.ModeVoice {
		return
	}

	i.restartTask = i.sched.After(i.cfg.Voice.RestartGraceDelay, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.voiceEpoch || !i.voice.Active {
			return
		}
		handler := captureHandler{i: i, epoch: epoch}
		if serr := i.cap.StartCapture(i.voice.Language, handler); serr != nil {
			logger.Warnf("Voice capture restart failed: %v", serr)
			i.voiceErrorLocked("Voice recognition stopped. Click the microphone to restart.", i.cfg.Voice.ErrorClearDelay)
			return
		}
		i.voice.Recording = true
		i.emitVoiceState()
	})
}

func (i *Interaction) speakLocked(text string) {
	if !i.cap.Available() {
		logger.Warn("Speech synthesis not available, skipping playback")
		return
	}

	i.cap.CancelSpeech()
	i.emit(Event{Type: EventSpeak, Text: text})

	playback := speechPlayback{i: i, epoch: i.voiceEpoch}
	if err := i.cap.Speak(text, playback); err != nil {
		logger.Warnf("Speech playback failed: %v", err)
	}
}

func (i *Interaction) setSpeaking(epoch uint64, speaking bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if epoch != i.voiceEpoch {
		return
	}
	i.voice.Speaking = speaking
	i.emitVoiceState()
}

// voiceErrorLocked 记录一条语音错误并排期自动清除
func (i *Interaction) voiceErrorLocked(msg string, clearAfter time.Duration) {
	i.voice.LastError = msg
	i.emitVoiceState()

	cancelAll(i.errClearTask)
	epoch := i.voiceEpoch
	i.errClearTask = i.sched.After(clearAfter, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if epoch != i.voiceEpoch || i.voice.LastError != msg {
			return
		}
		i.voice.LastError = ""
		i.emitVoiceState()
	})
}

// appendLocked 持久化一条消息并刷新本地会话副本
func (i *Interaction) appendLocked(msg *model.Message, topic, lastIntent string) error {
	if err := i.svc.Record(i.session.ID, msg, topic, lastIntent); err != nil {
		return err
	}

	session, err := i.svc.Get(i.session.ID)
	if err != nil {
		return err
	}
	i.session = session

	i.emit(Event{Type: EventMessage, Message: msg})
	return nil
}

func (i *Interaction) emit(e Event) {
	if i.listener == nil {
		return
	}
	e.SessionID = i.session.ID
	i.listener(e)
}

func (i *Interaction) emitVoiceState() {
	v := i.voice
	i.emit(Event{Type: EventVoiceState, Voice: &v})
}

func cancelAll(tasks ...Task) {
	for _, t := range tasks {
		if t != nil {
			t.Cancel()
		}
	}
}

func messageID(suffix string) string {
	return fmt.Sprintf("msg_%d_%s", time.Now().UnixNano(), suffix)
}

type captureHandler struct {
	i     *Interaction
	epoch uint64
}

func (h captureHandler) OnResult(text string, final bool) {
	h.i.captureResult(h.epoch, text, final)
}

func (h captureHandler) OnEnd(err error) {
	h.i.captureEnded(h.epoch, err)
}

type speechPlayback struct {
	i     *Interaction
	epoch uint64
}

func (p speechPlayback) OnStart() { p.i.setSpeaking(p.epoch, true) }
func (p speechPlayback) OnEnd()   { p.i.setSpeaking(p.epoch, false) }
func (p speechPlayback) OnError(err error) {
	logger.Debugf("Speech playback error: %v", err)
	p.i.setSpeaking(p.epoch, false)
}
