package game

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"photo-hunt/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionManager resolves the live session by name. Callers thread the
// returned id through every other operation.
type SessionManager struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionManager(conn *gorm.DB) *SessionManager {
	return &SessionManager{db: conn, now: timeNowUTC}
}

// EnsureExists returns the session called name, creating it on first use.
// Concurrent first callers converge on one row through the unique index on name.
func (m *SessionManager) EnsureExists(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, invalid("name", "is required")
	}
	var record db.Session
	err := m.db.WithContext(ctx).Where("name = ?", name).First(&record).Error
	if err == nil {
		return sessionFromRecord(record), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, storageErr("load session", err)
	}

	record = db.Session{ID: newID(), Name: name, CreatedAt: m.now()}
	if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			return Session{}, storageErr("create session", err)
		}
		if err := m.db.WithContext(ctx).Where("name = ?", name).First(&record).Error; err != nil {
			return Session{}, storageErr("load session", err)
		}
		return sessionFromRecord(record), nil
	}
	log.Printf("session created session_id=%s name=%q", record.ID, record.Name)
	return sessionFromRecord(record), nil
}

func (m *SessionManager) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	if err := requireID("sessionId", id); err != nil {
		return Session{}, err
	}
	var record db.Session
	if err := m.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return Session{}, lookupErr("session", id, err)
	}
	return sessionFromRecord(record), nil
}
