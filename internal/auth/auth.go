package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"taxbuddy-backend/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailRegistered = errors.New("email already registered")
	ErrInvalidUserType = errors.New("invalid user type")
)

// Service 模拟认证服务。用户是演示数据，任意密码都能登录
type Service struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func NewService() *Service {
	s := &Service{users: make(map[string]*model.User)}
	s.seedUsers()
	return s
}

func (s *Service) seedUsers() {
	seeded := []*model.User{
		{
			ID:           "user_001",
			Name:         "John Taxpayer",
			Email:        "john.taxpayer@example.com",
			FilingStatus: "single",
			LastLogin:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Preferences:  model.Preferences{Theme: "light", Notifications: true, AutoSave: true},
		},
		{
			ID:           "user_002",
			Name:         "Sarah Business",
			Email:        "sarah.business@example.com",
			FilingStatus: "married_jointly",
			LastLogin:    time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Preferences:  model.Preferences{Theme: "dark", Notifications: true, AutoSave: false},
		},
		{
			ID:           "user_003",
			Name:         "Demo User",
			Email:        "demo@taxbuddy.com",
			FilingStatus: "single",
			LastLogin:    time.Now(),
			Preferences:  model.Preferences{Theme: "light", Notifications: false, AutoSave: true},
		},
	}

	for _, u := range seeded {
		s.users[u.ID] = u
	}
}

// LoginAsGuest 创建一次性访客用户
func (s *Service) LoginAsGuest() *model.User {
	guest := &model.User{
		ID:           fmt.Sprintf("guest_%s", uuid.New().String()),
		Name:         "Guest User",
		Email:        "guest@demo.com",
		FilingStatus: "unknown",
		IsGuest:      true,
		LastLogin:    time.Now(),
		Preferences:  model.Preferences{Theme: "light", Notifications: false, AutoSave: true},
	}

	s.mu.Lock()
	s.users[guest.ID] = guest
	s.mu.Unlock()

	return guest
}

// Login 按邮箱登录。演示用途，不校验密码
func (s *Service) Login(email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			u.LastLogin = time.Now()
			copied := *u
			return &copied, nil
		}
	}

	return nil, ErrUserNotFound
}

// Register 注册新用户，邮箱不可重复
func (s *Service) Register(name, email, filingStatus string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, ErrEmailRegistered
		}
	}

	if filingStatus == "" {
		filingStatus = "single"
	}

	user := &model.User{
		ID:           fmt.Sprintf("user_%s", uuid.New().String()),
		Name:         name,
		Email:        email,
		FilingStatus: filingStatus,
		LastLogin:    time.Now(),
		Preferences:  model.Preferences{Theme: "light", Notifications: true, AutoSave: true},
	}

	s.users[user.ID] = user
	copied := *user
	return &copied, nil
}

// GetUser 按 ID 查询用户
func (s *Service) GetUser(userID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// UpdatePreferences 更新用户偏好
func (s *Service) UpdatePreferences(userID string, prefs model.Preferences) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	u.Preferences = prefs
	copied := *u
	return &copied, nil
}

// LoginAsUserType 按预设用户类型登录，演示入口
func (s *Service) LoginAsUserType(userType string) (*model.User, error) {
	typeMap := map[string]string{
		"first_timer":    "user_001",
		"business_owner": "user_002",
		"demo":           "user_003",
	}

	id, ok := typeMap[userType]
	if !ok {
		return nil, ErrInvalidUserType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	u.LastLogin = time.Now()
	copied := *u
	return &copied, nil
}
