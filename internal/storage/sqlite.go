package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taxbuddy-backend/internal/model"
	"taxbuddy-backend/pkg/logger"

	_ "modernc.org/sqlite"
)

// SQLiteStorage 基于 SQLite 的会话存储，单表键值结构，消息以 JSON 列保存
type SQLiteStorage struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteStorage(dataDir string) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath: filepath.Join(dataDir, "sessions.db"),
	}
}

func (s *SQLiteStorage) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	// WAL 模式，避免读写互相阻塞
	dsn := s.dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	s.db = db

	if err := s.initSchema(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	logger.Info("SQLite storage initialized successfully")
	return nil
}

func (s *SQLiteStorage) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		current_topic TEXT NOT NULL DEFAULT 'general',
		state_json TEXT,
		messages_json TEXT,
		start_time INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) CreateSession(session *model.Session) error {
	stateJSON, messagesJSON, err := encodeSession(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (session_id, user_id, title, current_topic, state_json, messages_json, start_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			title = excluded.title,
			current_topic = excluded.current_topic,
			state_json = excluded.state_json,
			messages_json = excluded.messages_json,
			updated_at = excluded.updated_at`

	_, err = s.db.Exec(query,
		session.ID, session.UserID, session.Title, session.CurrentTopic,
		stateJSON, messagesJSON,
		session.StartTime.Unix(), session.CreatedAt.Unix(), session.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetSession(sessionID string) (*model.Session, error) {
	query := `
		SELECT session_id, user_id, title, current_topic, state_json, messages_json, start_time, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	return scanSession(s.db.QueryRow(query, sessionID))
}

func (s *SQLiteStorage) UpdateSession(session *model.Session) error {
	stateJSON, messagesJSON, err := encodeSession(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE sessions
		SET title = ?, current_topic = ?, state_json = ?, messages_json = ?, updated_at = ?
		WHERE session_id = ?`

	res, err := s.db.Exec(query,
		session.Title, session.CurrentTopic, stateJSON, messagesJSON,
		session.UpdatedAt.Unix(), session.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteSession(sessionID string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStorage) ListSessions() ([]*model.Session, error) {
	query := `
		SELECT session_id, user_id, title, current_topic, state_json, messages_json, start_time, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStorage) AddMessage(sessionID string, message *model.Message) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	session.Messages = append(session.Messages, *message)
	session.UpdatedAt = time.Now()

	return s.UpdateSession(session)
}

func (s *SQLiteStorage) GetMessages(sessionID string) ([]*model.Message, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, len(session.Messages))
	for i := range session.Messages {
		messages[i] = &session.Messages[i]
	}
	return messages, nil
}

func (s *SQLiteStorage) Backup() error {
	// WAL 检查点即备份，数据库本身就是单文件
	_, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
	if err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func encodeSession(session *model.Session) (string, string, error) {
	stateJSON, err := json.Marshal(session.State)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return string(stateJSON), string(messagesJSON), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var session model.Session
	var stateJSON, messagesJSON sql.NullString
	var startTime, createdAt, updatedAt int64

	err := row.Scan(&session.ID, &session.UserID, &session.Title, &session.CurrentTopic,
		&stateJSON, &messagesJSON, &startTime, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if stateJSON.Valid && stateJSON.String != "" {
		if err := json.Unmarshal([]byte(stateJSON.String), &session.State); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}
	if messagesJSON.Valid && messagesJSON.String != "" {
		if err := json.Unmarshal([]byte(messagesJSON.String), &session.Messages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
	}

	session.StartTime = time.Unix(startTime, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)
	return &session, nil
}
