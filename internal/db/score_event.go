package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ScoreOutcomePending   = "pending"
	ScoreOutcomeApplied   = "applied"
	ScoreOutcomeDiscarded = "discarded"
)

// ScoreEvent is the outbox row written with a photo approval. The scorer
// moves it out of pending exactly once.
type ScoreEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID      `gorm:"type:uuid;index;not null"`
	PhotoID   uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	TeamID    uuid.UUID      `gorm:"type:uuid;index;not null"`
	Points    int            `gorm:"not null;default:1"`
	Outcome   string         `gorm:"size:16;index;not null"`
	Attempts  int            `gorm:"not null;default:0"`
	LastError string         `gorm:"size:512;not null;default:''"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null;index"`
	AppliedAt *time.Time
}
