package handler

import (
	"sync"

	"taxbuddy-backend/internal/engine"
)

// Hub 把状态机事件扇出给若干订阅者（SSE 连接）。
// 发布在引擎锁内进行，因此只做非阻塞投递，慢消费者丢事件
type Hub struct {
	mu   sync.Mutex
	subs map[*engine.Interaction]map[chan engine.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*engine.Interaction]map[chan engine.Event]struct{})}
}

// Bind 把状态机的事件接入 Hub
func (h *Hub) Bind(i *engine.Interaction) {
	i.SetListener(func(e engine.Event) {
		h.publish(i, e)
	})
}

func (h *Hub) publish(i *engine.Interaction, e engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[i] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe 订阅一个状态机的事件流
func (h *Hub) Subscribe(i *engine.Interaction) chan engine.Event {
	ch := make(chan engine.Event, 64)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[i] == nil {
		h.subs[i] = make(map[chan engine.Event]struct{})
	}
	h.subs[i][ch] = struct{}{}

	return ch
}

// Unsubscribe 退订。通道由订阅者停止读取后在这里安全移除
func (h *Hub) Unsubscribe(i *engine.Interaction, ch chan engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[i]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subs, i)
		}
	}
}
