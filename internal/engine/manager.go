package engine

import (
	"errors"
	"sync"

	"taxbuddy-backend/internal/config"
	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/internal/responder"
	"taxbuddy-backend/internal/service"
)

// ErrInteractionNotFound 会话对应的状态机不存在
var ErrInteractionNotFound = errors.New("interaction not found")

// Manager 按会话 ID 管理交互状态机
type Manager struct {
	mu           sync.RWMutex
	interactions map[string]*Interaction

	svc   *service.ChatService
	gen   *responder.Generator
	sched Scheduler
	cfg   *config.Config
}

func NewManager(svc *service.ChatService, gen *responder.Generator, sched Scheduler, cfg *config.Config) *Manager {
	return &Manager{
		interactions: make(map[string]*Interaction),
		svc:          svc,
		gen:          gen,
		sched:        sched,
		cfg:          cfg,
	}
}

// Start 为用户创建新会话和状态机
func (m *Manager) Start(user model.User) (*Interaction, error) {
	i, err := New(m.svc, m.gen, m.sched, m.cfg, user)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.interactions[i.Session().ID] = i
	m.mu.Unlock()

	return i, nil
}

func (m *Manager) Get(sessionID string) (*Interaction, error) {
	m.mu.RLock()
	i, ok := m.interactions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrInteractionNotFound
	}
	return i, nil
}

// Rebind 会话被清空重建后换绑新的会话 ID
func (m *Manager) Rebind(oldID string, i *Interaction) {
	m.mu.Lock()
	delete(m.interactions, oldID)
	m.interactions[i.Session().ID] = i
	m.mu.Unlock()
}

// Remove 关闭并移除状态机
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	i, ok := m.interactions[sessionID]
	delete(m.interactions, sessionID)
	m.mu.Unlock()

	if ok {
		i.Close()
	}
}

// Close 关闭全部状态机
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, i := range m.interactions {
		i.Close()
		delete(m.interactions, id)
	}
}
