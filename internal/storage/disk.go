package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/pkg/logger"
)

type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	cache     map[string]*model.Session
	cacheSize int
}

type SessionIndex struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CurrentTopic string    `json:"current_topic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	return &DiskStorage{
		dataDir:   dataDir,
		cache:     make(map[string]*model.Session),
		cacheSize: cacheSize,
	}
}

func (d *DiskStorage) Init() error {
	if err := d.createDirectories(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	if err := d.loadSessions(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Info("Disk storage initialized successfully")
	return nil
}

func (d *DiskStorage) createDirectories() error {
	dirs := []string{
		d.dataDir,
		filepath.Join(d.dataDir, "sessions"),
		filepath.Join(d.dataDir, "messages"),
		filepath.Join(d.dataDir, "backup"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiskStorage) loadSessions() error {
	indexPath := filepath.Join(d.dataDir, "sessions.json")

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		return d.saveSessionIndex([]*SessionIndex{})
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return err
	}

	var indexes []*SessionIndex
	if err := json.Unmarshal(data, &indexes); err != nil {
		return err
	}

	for _, index := range indexes {
		if len(d.cache) >= d.cacheSize {
			break
		}

		session, err := d.loadSessionFromFile(index.ID)
		if err != nil {
			logger.Errorf("Failed to load session %s: %v", index.ID, err)
			continue
		}

		d.cache[index.ID] = session
	}

	return nil
}

func (d *DiskStorage) loadSessionFromFile(sessionID string) (*model.Session, error) {
	sessionPath := filepath.Join(d.dataDir, "sessions", sessionID+".json")

	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}

	messages, err := d.loadMessagesFromFile(sessionID)
	if err != nil {
		logger.Errorf("Failed to load messages for session %s: %v", sessionID, err)
		messages = []model.Message{}
	}

	session.Messages = messages
	return &session, nil
}

func (d *DiskStorage) loadMessagesFromFile(sessionID string) ([]model.Message, error) {
	messagesPath := filepath.Join(d.dataDir, "messages", sessionID+".json")

	if _, err := os.Stat(messagesPath); os.IsNotExist(err) {
		return []model.Message{}, nil
	}

	data, err := os.ReadFile(messagesPath)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (d *DiskStorage) saveSessionIndex(indexes []*SessionIndex) error {
	indexPath := filepath.Join(d.dataDir, "sessions.json")
	tempPath := indexPath + ".tmp"

	data, err := json.MarshalIndent(indexes, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, indexPath)
}

func (d *DiskStorage) saveSessionToFile(session *model.Session) error {
	sessionPath := filepath.Join(d.dataDir, "sessions", session.ID+".json")
	tempPath := sessionPath + ".tmp"

	// 消息单独存文件，会话文件里不重复保存
	sessionData := *session
	sessionData.Messages = nil

	data, err := json.MarshalIndent(sessionData, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, sessionPath)
}

func (d *DiskStorage) saveMessagesToFile(sessionID string, messages []model.Message) error {
	messagesPath := filepath.Join(d.dataDir, "messages", sessionID+".json")
	tempPath := messagesPath + ".tmp"

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, messagesPath)
}

func (d *DiskStorage) CreateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.saveSessionToFile(session); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.saveMessagesToFile(session.ID, session.Messages); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.updateSessionIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.cache[session.ID] = session
	d.evictCache()

	return nil
}

func (d *DiskStorage) GetSession(sessionID string) (*model.Session, error) {
	d.mu.RLock()
	if session, exists := d.cache[sessionID]; exists {
		d.mu.RUnlock()
		return session, nil
	}
	d.mu.RUnlock()

	session, err := d.loadSessionFromFile(sessionID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.mu.Lock()
	d.cache[sessionID] = session
	d.evictCache()
	d.mu.Unlock()

	return session, nil
}

func (d *DiskStorage) UpdateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := os.Stat(filepath.Join(d.dataDir, "sessions", session.ID+".json")); os.IsNotExist(err) {
		return ErrSessionNotFound
	}

	if err := d.saveSessionToFile(session); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.saveMessagesToFile(session.ID, session.Messages); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if err := d.updateSessionIndex(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	d.cache[session.ID] = session

	return nil
}

func (d *DiskStorage) DeleteSession(sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessionPath := filepath.Join(d.dataDir, "sessions", sessionID+".json")
	messagesPath := filepath.Join(d.dataDir, "messages", sessionID+".json")

	if _, err := os.Stat(sessionPath); os.IsNotExist(err) {
		return ErrSessionNotFound
	}

	if err := os.Remove(sessionPath); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	if _, err := os.Stat(messagesPath); err == nil {
		if err := os.Remove(messagesPath); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
	}

	delete(d.cache, sessionID)

	return d.updateSessionIndex()
}

func (d *DiskStorage) ListSessions() ([]*model.Session, error) {
	indexPath := filepath.Join(d.dataDir, "sessions.json")

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	var indexes []*SessionIndex
	if err := json.Unmarshal(data, &indexes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	sessions := make([]*model.Session, 0, len(indexes))
	for _, index := range indexes {
		sessions = append(sessions, &model.Session{
			ID:           index.ID,
			Title:        index.Title,
			CurrentTopic: index.CurrentTopic,
			CreatedAt:    index.CreatedAt,
			UpdatedAt:    index.UpdatedAt,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}

func (d *DiskStorage) AddMessage(sessionID string, message *model.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, exists := d.cache[sessionID]
	if !exists {
		loaded, err := d.loadSessionFromFile(sessionID)
		if err != nil {
			if os.IsNotExist(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: %v", ErrFileOperation, err)
		}
		session = loaded
		d.cache[sessionID] = session
	}

	session.Messages = append(session.Messages, *message)
	session.UpdatedAt = time.Now()

	if err := d.saveMessagesToFile(sessionID, session.Messages); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	return nil
}

func (d *DiskStorage) GetMessages(sessionID string) ([]*model.Message, error) {
	session, err := d.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	messages := make([]*model.Message, len(session.Messages))
	for i := range session.Messages {
		messages[i] = &session.Messages[i]
	}

	return messages, nil
}

func (d *DiskStorage) updateSessionIndex() error {
	sessionsDir := filepath.Join(d.dataDir, "sessions")

	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		return err
	}

	indexes := make([]*SessionIndex, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		sessionID := entry.Name()[:len(entry.Name())-len(".json")]
		data, err := os.ReadFile(filepath.Join(sessionsDir, entry.Name()))
		if err != nil {
			logger.Errorf("Failed to read session file %s: %v", entry.Name(), err)
			continue
		}

		var session model.Session
		if err := json.Unmarshal(data, &session); err != nil {
			logger.Errorf("Failed to parse session file %s: %v", entry.Name(), err)
			continue
		}

		indexes = append(indexes, &SessionIndex{
			ID:           sessionID,
			Title:        session.Title,
			CurrentTopic: session.CurrentTopic,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		})
	}

	return d.saveSessionIndex(indexes)
}

func (d *DiskStorage) evictCache() {
	if len(d.cache) <= d.cacheSize {
		return
	}

	// 淘汰最久未更新的会话
	var oldestID string
	var oldestTime time.Time
	for id, session := range d.cache {
		if oldestID == "" || session.UpdatedAt.Before(oldestTime) {
			oldestID = id
			oldestTime = session.UpdatedAt
		}
	}

	if oldestID != "" {
		delete(d.cache, oldestID)
	}
}

func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupPath := filepath.Join(d.dataDir, "backup", fmt.Sprintf("sessions-%d.json", time.Now().Unix()))

	sessions := make([]*model.Session, 0, len(d.cache))
	for _, session := range d.cache {
		sessions = append(sessions, session)
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrFileOperation, err)
	}

	logger.Infof("Backed up %d sessions to %s", len(sessions), backupPath)
	return nil
}

func (d *DiskStorage) Close() error {
	return nil
}
