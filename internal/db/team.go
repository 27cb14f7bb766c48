package db

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID        `gorm:"type:uuid;index;not null"`
	Name        string           `gorm:"size:50;not null"`
	Color       string           `gorm:"size:16;not null"`
	Points      int              `gorm:"not null;default:0"`
	CreatedAt   time.Time        `gorm:"not null;index"`
	Assignments []TeamAssignment `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// TeamAssignment is keyed by player, so a player has at most one team edge.
type TeamAssignment struct {
	PlayerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID     uuid.UUID `gorm:"type:uuid;index;not null"`
	AssignedAt time.Time `gorm:"not null"`
	Team       *Team     `gorm:"foreignKey:TeamID"`
}
