package db

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name       string          `gorm:"size:50;not null"`
	Role       string          `gorm:"size:16;not null"`
	CreatedAt  time.Time       `gorm:"not null;index"`
	Assignment *TeamAssignment `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE"`
}
