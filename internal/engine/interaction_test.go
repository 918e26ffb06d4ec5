package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"taxbuddy-backend/internal/config"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/responder"
	"taxbuddy-backend/internal/service"
	"taxbuddy-backend/internal/storage"
	"taxbuddy-backend/internal/voice"
)

// fakeScheduler 用虚拟时钟驱动排期任务
type fakeScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*fakeTask
}

type fakeTask struct {
	at        time.Duration
	interval  time.Duration
	fn        func()
	cancelled bool
}

func (t *fakeTask) Cancel() { t.cancelled = true }

func newFakeScheduler() *fakeScheduler { return &fakeScheduler{} }

func (s *fakeScheduler) After(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &fakeTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &fakeTask{at: s.now + d, interval: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance 推进虚拟时间，按到期顺序执行任务。
// 任务回调在锁外执行，可以再排期新任务
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeTask
		for _, t := range s.tasks {
			if t.cancelled || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		if next.interval > 0 {
			next.at += next.interval
		} else {
			next.cancelled = true
		}
		fn := next.fn
		s.mu.Unlock()

		fn()
	}
}

// fakeCapability 可脚本化的语音设备
type fakeCapability struct {
	mu        sync.Mutex
	available bool
	startErr  error
	handler   voice.Handler
	captures  []string
	stops     int
	spoken    []string
	cancels   int
	playback  voice.Playback
}

func newFakeCapability() *fakeCapability { return &fakeCapability{available: true} }

func (f *fakeCapability) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeCapability) StartCapture(language string, h voice.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.handler = h
	f.captures = append(f.captures, language)
	return nil
}

func (f *fakeCapability) StopCapture() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.handler = nil
}

func (f *fakeCapability) Speak(text string, p voice.Playback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.playback = p
	return nil
}

func (f *fakeCapability) CancelSpeech() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

// Result 模拟一条识别结果
func (f *fakeCapability) Result(text string, final bool) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h.OnResult(text, final)
	}
}

// End 模拟一次采集结束
func (f *fakeCapability) End(err error) {
	f.mu.Lock()
	h := f.handler
	f.handler = nil
	f.mu.Unlock()
	if h != nil {
		h.OnEnd(err)
	}
}

func (f *fakeCapability) captureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.captures)
}

func (f *fakeCapability) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	copy(out, f.spoken)
	return out
}

func testUser() model.User {
	return model.User{ID: "user_001", Name: "John Taxpayer", Email: "john.taxpayer@example.com"}
}

func newTestInteraction(t *testing.T) (*Interaction, *fakeScheduler, *fakeCapability) {
	t.Helper()

	store := storage.NewMemoryStorage()
	if err := store.Init(); err != nil {
		t.Fatalf("storage init: %v", err)
	}
	svc := service.NewChatServiceWithStorage(store, config.Default())
	sched := newFakeScheduler()
	cap := newFakeCapability()

	i, err := New(svc, responder.New(1), sched, config.Default(), testUser())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	i.AttachCapability(cap)
	return i, sched, cap
}

func TestStartChatSeedsGreeting(t *testing.T) {
	i, _, _ := newTestInteraction(t)

	if err := i.StartChat(); err != nil {
		t.Fatalf("StartChat: %v", err)
	}

	state := i.State()
	if state.Mode != model.ModeChat {
		t.Errorf("mode = %s, want chat", state.Mode)
	}
	if state.MessageCount != 1 {
		t.Fatalf("message count = %d, want 1", state.MessageCount)
	}

	session := i.Session()
	greeting := session.Messages[0]
	if greeting.Role != model.RoleAssistant {
		t.Errorf("greeting role = %s, want assistant", greeting.Role)
	}
	if !strings.Contains(greeting.Content, "Hello John Taxpayer!") {
		t.Errorf("greeting missing user name: %q", greeting.Content)
	}

	if err := i.StartChat(); !errors.Is(err, ErrModeAlreadySet) {
		t.Errorf("second StartChat err = %v, want ErrModeAlreadySet", err)
	}
}

func TestSubmitLifecycle(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()

	if err := i.Submit("What deductions can I claim?"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	state := i.State()
	if !state.PendingResponse {
		t.Fatalf("pending = false right after submit")
	}
	if state.MessageCount != 2 {
		t.Fatalf("message count = %d, want 2 (greeting + user)", state.MessageCount)
	}

	sched.Advance(1500 * time.Millisecond)

	state = i.State()
	if state.PendingResponse {
		t.Fatalf("pending still true after typing delay")
	}
	if state.MessageCount != 3 {
		t.Fatalf("message count = %d, want 3", state.MessageCount)
	}

	session := i.Session()
	reply := session.Messages[2]
	if reply.Role != model.RoleAssistant {
		t.Errorf("reply role = %s, want assistant", reply.Role)
	}
	if reply.Topic != "deductions" {
		t.Errorf("reply topic = %s, want deductions", reply.Topic)
	}
	if reply.Confidence != 0.9 {
		t.Errorf("reply confidence = %v, want 0.9", reply.Confidence)
	}
	if len(reply.Sources) != 3 || reply.Sources[0] != "IRS Publication 17" {
		t.Errorf("reply sources = %v", reply.Sources)
	}
	if session.CurrentTopic != "deductions" {
		t.Errorf("session topic = %s, want deductions", session.CurrentTopic)
	}
}

func TestSubmitRejections(t *testing.T) {
	i, sched, _ := newTestInteraction(t)

	if err := i.Submit("hello"); !errors.Is(err, ErrModeNotSelected) {
		t.Errorf("submit before mode err = %v, want ErrModeNotSelected", err)
	}

	i.StartChat()

	if err := i.Submit("   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank submit err = %v, want ErrEmptyMessage", err)
	}

	oversized := strings.Repeat("a", 10001)
	if err := i.Submit(oversized); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("oversized submit err = %v, want ErrMessageTooLong", err)
	}

	if err := i.Submit("first question about filing"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := i.Submit("second question"); !errors.Is(err, ErrResponsePending) {
		t.Errorf("submit while pending err = %v, want ErrResponsePending", err)
	}

	// 被拒绝的输入不进入历史
	if got := i.State().MessageCount; got != 2 {
		t.Errorf("message count = %d, want 2", got)
	}

	sched.Advance(2 * time.Second)
	if err := i.Submit("second question"); err != nil {
		t.Errorf("submit after settle err = %v", err)
	}
}

func TestCalculatingPath(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()

	if err := i.Submit("calculate my refund"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	state := i.State()
	if !state.Calculating || !state.PendingResponse {
		t.Fatalf("calculating=%v pending=%v, want both true", state.Calculating, state.PendingResponse)
	}

	// 计算等待期结束，进入打字延迟
	sched.Advance(2 * time.Second)
	state = i.State()
	if state.Calculating {
		t.Fatalf("calculating still true after delay")
	}
	if !state.PendingResponse {
		t.Fatalf("pending cleared before typing delay elapsed")
	}

	sched.Advance(1500 * time.Millisecond)
	state = i.State()
	if state.PendingResponse {
		t.Fatalf("pending still true after full pipeline")
	}
	if state.MessageCount != 3 {
		t.Fatalf("message count = %d, want 3", state.MessageCount)
	}
}

func TestVoiceStartFlow(t *testing.T) {
	i, sched, cap := newTestInteraction(t)

	if err := i.StartVoice(); err != nil {
		t.Fatalf("StartVoice: %v", err)
	}

	state := i.State()
	if state.Mode != model.ModeVoice || !state.Voice.Active {
		t.Fatalf("mode=%s active=%v, want voice/true", state.Mode, state.Voice.Active)
	}
	if state.MessageCount != 1 {
		t.Fatalf("message count = %d, want 1 (voice greeting)", state.MessageCount)
	}
	if !strings.Contains(i.Session().Messages[0].Content, `Say "end session" to stop`) {
		t.Errorf("voice greeting missing end-session hint")
	}

	// 预热期内未开始采集
	if cap.captureCount() != 0 {
		t.Fatalf("capture started before warm-up elapsed")
	}

	// 问候语先被朗读
	sched.Advance(500 * time.Millisecond)
	spoken := cap.spokenTexts()
	if len(spoken) != 1 || !strings.Contains(spoken[0], "Hello John Taxpayer!") {
		t.Fatalf("greeting not spoken: %v", spoken)
	}

	sched.Advance(2500 * time.Millisecond)
	if cap.captureCount() != 1 {
		t.Fatalf("capture count = %d after warm-up, want 1", cap.captureCount())
	}
	if !i.State().Voice.Recording {
		t.Errorf("recording = false after capture start")
	}
}

func TestVoiceElapsedTicker(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartVoice()

	sched.Advance(5 * time.Second)
	if got := i.State().Voice.ElapsedSeconds; got != 5 {
		t.Fatalf("elapsed = %d, want 5", got)
	}

	i.EndVoice()
	if got := i.State().Voice.ElapsedSeconds; got != 0 {
		t.Fatalf("elapsed = %d after end, want 0", got)
	}

	// 计时器已撤销，时间继续流逝也不再累计
	sched.Advance(10 * time.Second)
	if got := i.State().Voice.ElapsedSeconds; got != 0 {
		t.Fatalf("elapsed = %d after teardown, want 0", got)
	}
}

func TestVoiceTranscriptSubmits(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	cap.Result("what can I claim", false)
	if got := i.State().Voice.InterimText; got != "what can I claim" {
		t.Fatalf("interim = %q", got)
	}

	cap.Result("what deductions can I claim", true)

	state := i.State()
	if state.Voice.InterimText != "" {
		t.Errorf("interim not cleared on final result")
	}
	if !state.PendingResponse {
		t.Fatalf("pending = false after final transcript")
	}
	if state.MessageCount != 2 {
		t.Fatalf("message count = %d, want 2", state.MessageCount)
	}

	sched.Advance(1500 * time.Millisecond)
	if i.State().MessageCount != 3 {
		t.Fatalf("no reply after typing delay")
	}

	// 语音模式下回复会被朗读
	sched.Advance(500 * time.Millisecond)
	spoken := cap.spokenTexts()
	last := spoken[len(spoken)-1]
	if !strings.Contains(last, "deduction") && !strings.Contains(last, "Deduction") {
		t.Errorf("reply not spoken, last spoken: %q", last)
	}
}

func TestEndSessionUtteranceSuppressed(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	before := i.State().MessageCount
	cap.Result("please end session now", true)

	state := i.State()
	if state.Mode != model.ModeUnset {
		t.Fatalf("mode = %s after end command, want unset", state.Mode)
	}
	if state.Voice.Active || state.Voice.Recording || state.Voice.InterimText != "" || state.Voice.LastError != "" {
		t.Errorf("voice state not reset: %+v", state.Voice)
	}
	if state.MessageCount != before {
		t.Errorf("end-session utterance entered history: %d -> %d", before, state.MessageCount)
	}

	// 再次结束无效果
	i.EndVoice()
	if i.State().Mode != model.ModeUnset {
		t.Errorf("EndVoice not idempotent")
	}
}

func TestWakePhraseStartsVoice(t *testing.T) {
	i, _, cap := newTestInteraction(t)
	i.StartChat()
	i.StartCapture()

	cap.Result("hey taxbuddy, talk to buddy please", true)

	state := i.State()
	if state.Mode != model.ModeVoice || !state.Voice.Active {
		t.Fatalf("wake phrase did not start voice mode: mode=%s", state.Mode)
	}
}

func TestSpeechDiscardedOutsideVoiceMode(t *testing.T) {
	i, _, cap := newTestInteraction(t)
	i.StartChat()
	i.StartCapture()

	before := i.State().MessageCount
	cap.Result("what deductions can I claim", true)

	state := i.State()
	if state.MessageCount != before {
		t.Errorf("chat-mode speech entered history")
	}
	if state.PendingResponse {
		t.Errorf("chat-mode speech triggered a response")
	}
	if state.Voice.InterimText != "" {
		t.Errorf("interim not cleared after discard")
	}
}

func TestCaptureAutoRestart(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	if cap.captureCount() != 1 {
		t.Fatalf("capture count = %d, want 1", cap.captureCount())
	}

	cap.End(nil)
	if i.State().Voice.Recording {
		t.Fatalf("recording = true after capture end")
	}

	sched.Advance(100 * time.Millisecond)
	if cap.captureCount() != 2 {
		t.Fatalf("capture count = %d after grace delay, want 2", cap.captureCount())
	}
	if !i.State().Voice.Recording {
		t.Errorf("recording = false after restart")
	}
}

func TestCaptureRestartFailure(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	cap.mu.Lock()
	cap.startErr = errors.New("device busy")
	cap.mu.Unlock()

	cap.End(nil)
	sched.Advance(100 * time.Millisecond)

	if got := i.State().Voice.LastError; got != "Voice recognition stopped. Click the microphone to restart." {
		t.Fatalf("LastError = %q", got)
	}

	// 错误提示到期自动清除
	sched.Advance(5 * time.Second)
	if got := i.State().Voice.LastError; got != "" {
		t.Errorf("LastError not cleared: %q", got)
	}
}

func TestCaptureErrorClassification(t *testing.T) {
	cases := []struct {
		kind  voice.ErrorKind
		want  string
		clear time.Duration
	}{
		{voice.ErrorNoSpeech, "No speech detected. Please try again.", 5 * time.Second},
		{voice.ErrorPermissionDenied, "Microphone access denied. Please allow microphone access and try again.", 8 * time.Second},
		{voice.ErrorNetwork, "Network error. Please check your internet connection.", 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			i, sched, cap := newTestInteraction(t)
			i.StartVoice()
			sched.Advance(3 * time.Second)

			cap.End(&voice.CaptureError{Kind: tc.kind})

			if got := i.State().Voice.LastError; got != tc.want {
				t.Fatalf("LastError = %q, want %q", got, tc.want)
			}

			// 自动重启不受错误影响
			sched.Advance(100 * time.Millisecond)
			if cap.captureCount() != 2 {
				t.Errorf("capture count = %d, want 2", cap.captureCount())
			}

			sched.Advance(tc.clear)
			if got := i.State().Voice.LastError; got != "" {
				t.Errorf("LastError not cleared after %v: %q", tc.clear, got)
			}
		})
	}
}

func TestPermissionErrorOutlastsDefaultClear(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	cap.End(&voice.CaptureError{Kind: voice.ErrorPermissionDenied})

	sched.Advance(5 * time.Second)
	if got := i.State().Voice.LastError; got == "" {
		t.Fatalf("permission error cleared too early")
	}
	sched.Advance(3 * time.Second)
	if got := i.State().Voice.LastError; got != "" {
		t.Fatalf("permission error not cleared after 8s: %q", got)
	}
}

func TestCapabilityAbsentDegradesToText(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.AttachCapability(voice.Unavailable())

	if err := i.StartVoice(); err != nil {
		t.Fatalf("StartVoice: %v", err)
	}

	state := i.State()
	if state.Mode != model.ModeVoice {
		t.Fatalf("mode = %s, want voice", state.Mode)
	}
	if !strings.Contains(state.Voice.LastError, "Speech recognition not supported") {
		t.Fatalf("LastError = %q", state.Voice.LastError)
	}

	// 文字输入照常工作
	if err := i.Submit("what deductions can I claim"); err != nil {
		t.Fatalf("Submit with absent capability: %v", err)
	}
	sched.Advance(1500 * time.Millisecond)
	if i.State().MessageCount != 3 {
		t.Fatalf("message count = %d, want 3", i.State().MessageCount)
	}
}

func TestClearHistoryConfirmationGate(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()
	i.Submit("what deductions can I claim")
	sched.Advance(1500 * time.Millisecond)

	oldID := i.Session().ID
	if err := i.ClearHistory(false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("unconfirmed clear err = %v, want ErrNotConfirmed", err)
	}
	if i.State().MessageCount != 3 {
		t.Fatalf("unconfirmed clear changed history")
	}
	if i.Session().ID != oldID {
		t.Fatalf("unconfirmed clear replaced session")
	}

	if err := i.ClearHistory(true); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	state := i.State()
	if state.MessageCount != 0 {
		t.Errorf("message count = %d after clear, want 0", state.MessageCount)
	}
	if state.Mode != model.ModeChat {
		t.Errorf("mode = %s after clear, want chat (unchanged)", state.Mode)
	}
	if i.Session().ID == oldID {
		t.Errorf("session not reinitialized")
	}
	if i.Session().CurrentTopic != "general" {
		t.Errorf("topic = %s after clear, want general", i.Session().CurrentTopic)
	}
}

func TestNavigateHome(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()
	i.Submit("hello there")
	sched.Advance(1500 * time.Millisecond)

	oldID := i.Session().ID
	if err := i.NavigateHome(); err != nil {
		t.Fatalf("NavigateHome: %v", err)
	}

	state := i.State()
	if state.Mode != model.ModeUnset {
		t.Errorf("mode = %s, want unset", state.Mode)
	}
	if state.MessageCount != 0 {
		t.Errorf("message count = %d, want 0", state.MessageCount)
	}
	if i.Session().ID == oldID {
		t.Errorf("session not reinitialized")
	}
}

// 语音会话进行中返回首页等价于结束语音，历史保留
func TestNavigateHomeDuringVoice(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(3 * time.Second)

	oldID := i.Session().ID
	before := i.State().MessageCount
	if err := i.NavigateHome(); err != nil {
		t.Fatalf("NavigateHome: %v", err)
	}

	state := i.State()
	if state.Mode != model.ModeUnset {
		t.Errorf("mode = %s, want unset", state.Mode)
	}
	if state.Voice.Active {
		t.Errorf("voice still active")
	}
	if i.Session().ID != oldID {
		t.Errorf("voice-mode home replaced the session")
	}
	if state.MessageCount != before {
		t.Errorf("voice-mode home dropped history")
	}
}

func TestNavigateHomeCancelsPendingResponse(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()
	i.Submit("what deductions can I claim")

	if err := i.NavigateHome(); err != nil {
		t.Fatalf("NavigateHome: %v", err)
	}

	sched.Advance(5 * time.Second)
	state := i.State()
	if state.MessageCount != 0 {
		t.Errorf("stale response landed in fresh session: count = %d", state.MessageCount)
	}
	if state.PendingResponse {
		t.Errorf("pending survived home navigation")
	}
}

func TestLanguageSwitchAppliesNextCapture(t *testing.T) {
	i, sched, cap := newTestInteraction(t)

	if err := i.SetLanguage("fr-FR"); !errors.Is(err, ErrInvalidLanguage) {
		t.Fatalf("invalid language err = %v, want ErrInvalidLanguage", err)
	}

	i.StartVoice()
	sched.Advance(3 * time.Second)

	cap.mu.Lock()
	first := cap.captures[0]
	cap.mu.Unlock()
	if first != "en-US" {
		t.Fatalf("first capture language = %s, want en-US", first)
	}

	if err := i.SetLanguage("hi-IN"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	cap.End(nil)
	sched.Advance(100 * time.Millisecond)

	cap.mu.Lock()
	second := cap.captures[1]
	cap.mu.Unlock()
	if second != "hi-IN" {
		t.Fatalf("capture after switch = %s, want hi-IN", second)
	}
}

func TestSpeakMessage(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartChat()
	i.Submit("what deductions can I claim")
	sched.Advance(1500 * time.Millisecond)

	session := i.Session()
	reply := session.Messages[2]

	if err := i.SpeakMessage(reply.ID); err != nil {
		t.Fatalf("SpeakMessage: %v", err)
	}
	spoken := cap.spokenTexts()
	if len(spoken) == 0 || spoken[len(spoken)-1] != reply.Content {
		t.Errorf("reply not spoken")
	}

	if err := i.SpeakMessage("msg_missing"); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("unknown message err = %v, want ErrMessageNotFound", err)
	}

	// 用户消息不可朗读
	userMsg := session.Messages[1]
	if err := i.SpeakMessage(userMsg.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("user message speak err = %v, want ErrMessageNotFound", err)
	}
}

func TestUploadAppendsSystemMessage(t *testing.T) {
	i, sched, _ := newTestInteraction(t)
	i.StartChat()

	if err := i.Upload("w2-2024.pdf", 2048); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// 处理延迟内还没有系统消息
	if i.State().MessageCount != 1 {
		t.Fatalf("system message appeared before processing delay")
	}

	sched.Advance(time.Second)

	session := i.Session()
	if len(session.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(session.Messages))
	}
	sys := session.Messages[1]
	if sys.Role != model.RoleSystem {
		t.Errorf("upload message role = %s, want system", sys.Role)
	}
	if !strings.Contains(sys.Content, "w2-2024.pdf") || !strings.Contains(sys.Content, "2.0KB") {
		t.Errorf("upload message content = %q", sys.Content)
	}
	if !strings.Contains(sys.Content, "processed and analyzed") {
		t.Errorf("upload message missing processed line: %q", sys.Content)
	}
}

func TestSpeakingStateFollowsPlayback(t *testing.T) {
	i, sched, cap := newTestInteraction(t)
	i.StartVoice()
	sched.Advance(500 * time.Millisecond)

	cap.mu.Lock()
	p := cap.playback
	cap.mu.Unlock()
	if p == nil {
		t.Fatalf("no playback registered")
	}

	p.OnStart()
	if !i.State().Voice.Speaking {
		t.Fatalf("speaking = false during playback")
	}
	p.OnEnd()
	if i.State().Voice.Speaking {
		t.Fatalf("speaking = true after playback end")
	}
}

func TestEventOrdering(t *testing.T) {
	i, sched, _ := newTestInteraction(t)

	var mu sync.Mutex
	var events []EventType
	i.SetListener(func(e Event) {
		mu.Lock()
		events = append(events, e.Type)
		mu.Unlock()
	})

	i.StartChat()
	i.Submit("what deductions can I claim")
	sched.Advance(1500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	want := []EventType{
		EventModeChanged, // chat
		EventMessage,     // greeting
		EventMessage,     // user
		EventTyping,      // on
		EventMessage,     // reply
		EventTyping,      // off
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for idx := range want {
		if events[idx] != want[idx] {
			t.Errorf("event[%d] = %s, want %s", idx, events[idx], want[idx])
		}
	}
}
